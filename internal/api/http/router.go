package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/pdc-service/internal/api/http/handlers"
	"github.com/spec-kit/pdc-service/internal/auth"
	"github.com/spec-kit/pdc-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Products   *handlers.ProductsHandler
	Components *handlers.ComponentsHandler
	Content    *handlers.ContentHandler
	Contacts   *handlers.ContactsHandler
	Changesets *handlers.ChangesetsHandler
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Reads are public; writes need a bearer
// token whose subject becomes the changeset author.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/token", cfg.Auth.Token)

	write := auth.RequireAuthor()

	products := app.Group("/products")
	products.Get("/", cfg.Products.ListProducts)
	products.Get("/:id", cfg.Products.GetProduct)
	products.Post("/", write, cfg.Products.CreateProduct)
	products.Put("/:id", write, cfg.Products.UpdateProduct)
	products.Patch("/:id", write, cfg.Products.UpdateProduct)
	products.Delete("/:id", write, cfg.Products.DeleteProduct)

	releases := app.Group("/releases")
	releases.Get("/", cfg.Products.ListReleases)
	releases.Get("/:release_id", cfg.Products.GetRelease)
	releases.Post("/", write, cfg.Products.CreateRelease)
	releases.Put("/:release_id", write, cfg.Products.UpdateRelease)
	releases.Patch("/:release_id", write, cfg.Products.UpdateRelease)
	releases.Delete("/:release_id", write, cfg.Products.DeleteRelease)

	components := app.Group("/global-components")
	components.Get("/", cfg.Components.List)
	components.Get("/:id", cfg.Components.Get)
	components.Post("/", write, cfg.Components.Create)
	components.Put("/:id", write, cfg.Components.Update)
	components.Patch("/:id", write, cfg.Components.Update)
	components.Delete("/:id", write, cfg.Components.Delete)

	repos := app.Group("/repos")
	repos.Get("/", cfg.Content.ListRepos)
	repos.Get("/:id", cfg.Content.GetRepo)
	repos.Post("/", write, cfg.Content.CreateRepos)
	repos.Delete("/:id", write, cfg.Content.DeleteRepo)

	rpms := app.Group("/rpms")
	rpms.Get("/", cfg.Content.ListRPMs)
	rpms.Get("/:id", cfg.Content.GetRPM)
	rpms.Post("/", write, cfg.Content.ImportRPMs)
	rpms.Delete("/:id", write, cfg.Content.DeleteRPM)

	persons := app.Group("/persons")
	persons.Get("/", cfg.Contacts.ListPersons)
	persons.Get("/:id", cfg.Contacts.GetPerson)
	persons.Post("/", write, cfg.Contacts.CreatePerson)
	persons.Put("/:id", write, cfg.Contacts.UpdatePerson)
	persons.Patch("/:id", write, cfg.Contacts.UpdatePerson)
	persons.Delete("/:id", write, cfg.Contacts.DeletePerson)

	maillists := app.Group("/maillists")
	maillists.Get("/", cfg.Contacts.ListMaillists)
	maillists.Get("/:id", cfg.Contacts.GetMaillist)
	maillists.Post("/", write, cfg.Contacts.CreateMaillist)
	maillists.Put("/:id", write, cfg.Contacts.UpdateMaillist)
	maillists.Patch("/:id", write, cfg.Contacts.UpdateMaillist)
	maillists.Delete("/:id", write, cfg.Contacts.DeleteMaillist)

	roles := app.Group("/contact-roles")
	roles.Get("/", cfg.Contacts.ListRoles)
	roles.Post("/", write, cfg.Contacts.CreateRole)
	roles.Delete("/:name", write, cfg.Contacts.DeleteRole)

	roleContacts := app.Group("/role-contacts")
	roleContacts.Get("/", cfg.Contacts.ListRoleContacts)
	roleContacts.Get("/:id", cfg.Contacts.GetRoleContact)
	roleContacts.Post("/", write, cfg.Contacts.CreateRoleContact)
	roleContacts.Put("/:id", write, cfg.Contacts.UpdateRoleContact)
	roleContacts.Patch("/:id", write, cfg.Contacts.UpdateRoleContact)
	roleContacts.Delete("/:id", write, cfg.Contacts.DeleteRoleContact)

	changesets := app.Group("/changesets")
	changesets.Get("/", cfg.Changesets.List)
	changesets.Get("/history/:model/:id", cfg.Changesets.History)
	changesets.Get("/:id", cfg.Changesets.Get)
}
