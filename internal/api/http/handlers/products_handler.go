package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/service"
)

// ProductsHandler exposes product and release endpoints.
type ProductsHandler struct {
	products *service.ProductService
	releases *service.ReleaseService
}

func NewProductsHandler(products *service.ProductService, releases *service.ReleaseService) *ProductsHandler {
	return &ProductsHandler{products: products, releases: releases}
}

// ListProducts handles GET /products.
func (h *ProductsHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(products, dto.NewProductResponse)})
}

// GetProduct handles GET /products/:id.
func (h *ProductsHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(*product)})
}

// CreateProduct handles POST /products.
func (h *ProductsHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), service.ProductInput{Short: req.Short, Name: req.Name})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(*product)})
}

// UpdateProduct handles PUT and PATCH /products/:id.
func (h *ProductsHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), id, service.ProductInput{Short: req.Short, Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(*product)})
}

// DeleteProduct handles DELETE /products/:id.
func (h *ProductsHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListReleases handles GET /releases.
func (h *ProductsHandler) ListReleases(c *fiber.Ctx) error {
	releases, err := h.releases.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(releases, dto.NewReleaseResponse)})
}

// GetRelease handles GET /releases/:release_id.
func (h *ProductsHandler) GetRelease(c *fiber.Ctx) error {
	release, err := h.releases.Get(c.UserContext(), c.Params("release_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReleaseResponse(*release)})
}

// CreateRelease handles POST /releases.
func (h *ProductsHandler) CreateRelease(c *fiber.Ctx) error {
	var req dto.ReleaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	release, err := h.releases.Create(c.UserContext(), releaseInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewReleaseResponse(*release)})
}

// UpdateRelease handles PUT and PATCH /releases/:release_id.
func (h *ProductsHandler) UpdateRelease(c *fiber.Ctx) error {
	var req dto.ReleaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	release, err := h.releases.Update(c.UserContext(), c.Params("release_id"), releaseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReleaseResponse(*release)})
}

// DeleteRelease handles DELETE /releases/:release_id.
func (h *ProductsHandler) DeleteRelease(c *fiber.Ctx) error {
	if err := h.releases.Delete(c.UserContext(), c.Params("release_id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func releaseInput(req dto.ReleaseRequest) service.ReleaseInput {
	return service.ReleaseInput{
		Short:       req.Short,
		Version:     req.Version,
		Name:        req.Name,
		ReleaseType: req.ReleaseType,
		ProductID:   req.ProductID,
		Active:      req.Active,
	}
}
