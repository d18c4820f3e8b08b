package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/api/http/handlers"
	"github.com/spec-kit/pdc-service/internal/auth"
	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/config"
	"github.com/spec-kit/pdc-service/internal/messaging"
	"github.com/spec-kit/pdc-service/internal/observability"
	"github.com/spec-kit/pdc-service/internal/repository/memory"
	"github.com/spec-kit/pdc-service/internal/service"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
	bus   *messaging.MemoryBus
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()
	bus := messaging.NewMemoryBus()

	notifier := service.NewChangesetNotifier(bus, nil, "pdc.changes", time.Second, logger, metrics)
	aggregator := changeset.NewAggregator(store.Changesets, nil, changeset.AggregatorConfig{
		Clock: testclock.NewClock(time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)),
	}, logger, metrics)
	lifecycle := changeset.NewLifecycle(store.DB, aggregator, notifier, logger, metrics)

	services := service.NewServices(service.Dependencies{
		Products:     store.Products,
		Releases:     store.Releases,
		Components:   store.Components,
		Repos:        store.Repos,
		RPMs:         store.RPMs,
		Contacts:     store.Contacts,
		RoleContacts: store.RoleContacts,
		Changesets:   store.Changesets,
	})

	tokens := auth.NewTokenManager("test-secret", 5)
	token, _, err := tokens.GenerateToken("releng", true)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:        logger,
		Metrics:       metrics,
		Auth:          auth.NewAuthMiddleware(tokens),
		Lifecycle:     lifecycle,
		CommentHeader: "PDC-Change-Comment",
	})
	RegisterRoutes(app, RouteConfig{
		Health:     handlers.NewHealthHandler("pdc-service", "test", nil),
		Auth:       handlers.NewAuthHandler(service.NewAuthService(config.AuthConfig{}, tokens)),
		Products:   handlers.NewProductsHandler(services.Products, services.Releases),
		Components: handlers.NewComponentsHandler(services.Components),
		Content:    handlers.NewContentHandler(services.Repos, services.RPMs),
		Contacts:   handlers.NewContactsHandler(services.Contacts),
		Changesets: handlers.NewChangesetsHandler(services.Changesets),
		Metrics:    metrics,
	})

	return &testServer{app: app, store: store, bus: bus, token: token}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *nethttp.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) authed(extra map[string]string) map[string]string {
	headers := map[string]string{fiber.HeaderAuthorization: "Bearer " + s.token}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

func decode(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type changesetEnvelope struct {
	Data struct {
		ID      int64  `json:"id"`
		Author  string `json:"author"`
		Comment string `json:"comment"`
		Changes []struct {
			Resource string          `json:"resource"`
			ObjectID int64           `json:"object_id"`
			OldValue json.RawMessage `json:"old_value"`
			NewValue json.RawMessage `json:"new_value"`
		} `json:"changes"`
	} `json:"data"`
}

func TestWriteRequest_CommitsChangeset(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodPost, "/products", `{"short":"rhel","name":"Red Hat Enterprise Linux"}`,
		s.authed(map[string]string{"PDC-Change-Comment": "initial import"}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := resp.Header.Get(ChangesetHeader)
	require.Equal(t, "1", id)

	var got changesetEnvelope
	decode(t, s.do(t, fiber.MethodGet, "/changesets/"+id, "", nil), &got)
	assert.Equal(t, "releng", got.Data.Author)
	assert.Equal(t, "initial import", got.Data.Comment)
	require.Len(t, got.Data.Changes, 1)
	assert.Equal(t, "product", got.Data.Changes[0].Resource)
	assert.JSONEq(t, `null`, string(got.Data.Changes[0].OldValue))
	assert.JSONEq(t, `{"id":1,"short":"rhel","name":"Red Hat Enterprise Linux"}`, string(got.Data.Changes[0].NewValue))

	require.Len(t, s.bus.Messages(), 1)
}

func TestWriteRequest_ErrorLeavesNoTrace(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodPost, "/releases", `{"short":"rhel","version":"9","name":"RHEL 9","product_id":42}`, s.authed(nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(ChangesetHeader))

	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	decode(t, s.do(t, fiber.MethodGet, "/changesets", "", nil), &list)
	assert.Empty(t, list.Data)
	assert.Empty(t, s.bus.Messages())
}

func TestWriteRequest_RequiresAuthor(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodPost, "/products", `{"short":"rhel","name":"RHEL"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, fiber.MethodPost, "/products", `{"short":"rhel","name":"RHEL"}`,
		map[string]string{fiber.HeaderAuthorization: "Bearer garbage"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	products, err := s.store.Products.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestReadRequest_OpensNoChangeset(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/products", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(ChangesetHeader))
}

func TestChangesetsList_FiltersAndHistory(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodPost, "/products", `{"short":"rhel","name":"RHEL"}`, s.authed(nil))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = s.do(t, fiber.MethodPatch, "/products/1", `{"name":"Red Hat Enterprise Linux"}`, s.authed(nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "2", resp.Header.Get(ChangesetHeader))

	var list struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	decode(t, s.do(t, fiber.MethodGet, "/changesets?ordering=committed_at&resource=product", "", nil), &list)
	require.Len(t, list.Data, 2)
	assert.Equal(t, int64(1), list.Data[0].ID)

	decode(t, s.do(t, fiber.MethodGet, "/changesets?author=someone-else", "", nil), &list)
	assert.Empty(t, list.Data)

	resp = s.do(t, fiber.MethodGet, "/changesets?ordering=author", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = s.do(t, fiber.MethodGet, "/changesets?changed_since=yesterday", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var history struct {
		Data []struct {
			ChangesetID int64           `json:"changeset_id"`
			OldValue    json.RawMessage `json:"old_value"`
		} `json:"data"`
	}
	decode(t, s.do(t, fiber.MethodGet, "/changesets/history/product/1", "", nil), &history)
	require.Len(t, history.Data, 2)
	assert.JSONEq(t, `{"id":1,"short":"rhel","name":"RHEL"}`, string(history.Data[1].OldValue))
}

func TestPatch_EmptyBodyRejected(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodPost, "/products", `{"short":"rhel","name":"RHEL"}`, s.authed(nil))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	for _, body := range []string{`{}`, ""} {
		resp = s.do(t, fiber.MethodPatch, "/products/1", body, s.authed(nil))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.Empty(t, resp.Header.Get(ChangesetHeader))
	}

	resp = s.do(t, fiber.MethodPut, "/products/1", `{"name":"Red Hat Enterprise Linux"}`, s.authed(nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	decode(t, s.do(t, fiber.MethodGet, "/changesets", "", nil), &list)
	assert.Len(t, list.Data, 2)
}

func TestChangesetGet_NotFound(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/changesets/99", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pdc_")
}
