package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docsai/internal/completion"
	"docsai/internal/service"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Storage   Pinger
	Documents service.DocumentService
	Sessions  *service.SessionRegistry
	Gateway   completion.Gateway
	Logger    *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/health", HealthCheck(deps.Storage))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Post("/generate", Generate(deps.Gateway))
	api.Get("/test-openai", OpenAIStatus(deps.Gateway))
	api.Post("/prompt/expand", ExpandPrompt(deps.Documents))

	docs := app.Group("/documents")
	docs.Get("/", ListDocuments(deps.Documents))
	docs.Post("/", CreateDocument(deps.Documents))
	docs.Get("/:id", GetDocument(deps.Documents))
	docs.Patch("/:id", UpdateDocument(deps.Documents))
	docs.Delete("/:id", DeleteDocument(deps.Sessions))

	reg := deps.Sessions
	sessions := app.Group("/sessions")
	sessions.Post("/", CreateSession(reg))
	sessions.Get("/:sid", GetSession(reg))
	sessions.Delete("/:sid", DeleteSession(reg))
	sessions.Get("/:sid/events", Events(reg, log))

	sessions.Post("/:sid/load/:id", LoadDocument(reg))
	sessions.Post("/:sid/new", NewDocument(reg))
	sessions.Put("/:sid/content", UpdateContent(reg))
	sessions.Post("/:sid/save", SaveDocument(reg))
	sessions.Post("/:sid/navigate", Navigate(reg))
	sessions.Put("/:sid/documents/:id/title", RenameDocument(reg))
	sessions.Delete("/:sid/documents/:id", DeleteSessionDocument(reg))

	sessions.Get("/:sid/elements", ListElements(reg))
	sessions.Post("/:sid/elements", InsertElement(reg))
	sessions.Post("/:sid/elements/reorder", ReorderElements(reg))
	sessions.Put("/:sid/elements/:eid", UpdateElement(reg))
	sessions.Delete("/:sid/elements/:eid", DeleteElement(reg))

	sessions.Post("/:sid/assist", Assist(reg))
}
