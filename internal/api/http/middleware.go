package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/auth"
	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/observability"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// ChangesetHeader carries the id of the changeset a write produced.
const ChangesetHeader = "X-Changeset-ID"

// MiddlewareConfig bundles the global middleware dependencies.
type MiddlewareConfig struct {
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Timeout       time.Duration
	Auth          *auth.AuthMiddleware
	Lifecycle     *changeset.Lifecycle
	CommentHeader string
}

// RegisterMiddlewares attaches global middlewares. The changeset lifecycle
// runs innermost so it sees the handler's final status.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics))
	if cfg.Auth != nil {
		app.Use(cfg.Auth.Optional)
	}
	if cfg.Lifecycle != nil {
		app.Use(changesetMiddleware(cfg.Lifecycle, cfg.CommentHeader))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func mutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

// changesetMiddleware runs every write request as one unit of work. A handler
// error or an error status discards all of its writes.
func changesetMiddleware(lifecycle *changeset.Lifecycle, commentHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !mutating(c.Method()) {
			return c.Next()
		}

		info := changeset.RequestInfo{RequestID: observability.RequestID(c)}
		if commentHeader != "" {
			info.Comment = c.Get(commentHeader)
		}
		if principal, ok := auth.PrincipalFromContext(c); ok {
			info.Author = principal.Author
		}

		parent := c.UserContext()
		cs, err := lifecycle.Run(parent, info, func(ctx context.Context) error {
			c.SetUserContext(ctx)
			if err := c.Next(); err != nil {
				return err
			}
			if c.Response().StatusCode() >= fiber.StatusBadRequest {
				return changeset.ErrRollback
			}
			return nil
		})
		c.SetUserContext(parent)

		if errors.Is(err, changeset.ErrRollback) {
			return nil
		}
		if err != nil {
			return err
		}
		if cs != nil {
			c.Set(ChangesetHeader, strconv.FormatInt(cs.ID, 10))
		}
		return nil
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := "HTTP_ERROR"
		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			code = apperrors.CodeValidation
		case fiber.StatusUnauthorized:
			code = apperrors.CodeUnauthorized
		case fiber.StatusNotFound:
			code = apperrors.CodeNotFound
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}
