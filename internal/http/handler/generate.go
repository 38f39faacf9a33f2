package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docsai/internal/completion"
	"docsai/internal/prompt"
	"docsai/internal/service"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

type generateError struct {
	Error string `json:"error"`
}

type expandResponse struct {
	Prompt   string   `json:"prompt"`
	Mentions []string `json:"mentions"`
}

// Generate godoc
// @Summary Forward a prompt to the completion API
// @Description Errors use the flat {"error": "..."} body the editor expects.
// @Tags ai
// @Accept json
// @Produce json
// @Success 200 {object} generateResponse
// @Failure 500 {object} generateError
// @Router /api/generate [post]
func Generate(gw completion.Gateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promptRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(generateError{Error: "invalid request body"})
		}
		if strings.TrimSpace(req.Prompt) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(generateError{Error: "prompt is required"})
		}

		text, err := gw.Generate(c.UserContext(), req.Prompt)
		if err != nil {
			return c.Status(completion.StatusCode(err)).JSON(generateError{Error: err.Error()})
		}
		return c.JSON(generateResponse{Text: text})
	}
}

// OpenAIStatus godoc
// @Summary Report whether an API key is configured
// @Tags ai
// @Produce json
// @Success 200 {object} completion.KeyStatus
// @Router /api/test-openai [get]
func OpenAIStatus(gw completion.Gateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(gw.Status())
	}
}

// ExpandPrompt godoc
// @Summary Expand @title mentions against the stored documents
// @Tags ai
// @Accept json
// @Produce json
// @Success 200 {object} expandResponse
// @Router /api/prompt/expand [post]
func ExpandPrompt(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promptRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		all, err := docs.List(c.UserContext())
		if err != nil {
			return internalError(c)
		}
		mentions := prompt.Mentions(req.Prompt)
		if mentions == nil {
			mentions = []string{}
		}
		return c.JSON(expandResponse{
			Prompt:   prompt.Expand(req.Prompt, prompt.FromDocuments(all)),
			Mentions: mentions,
		})
	}
}
