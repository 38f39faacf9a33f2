package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"docsai/internal/completion"
	"docsai/internal/model"
	"docsai/internal/service"
)

type sessionView struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"createdAt"`
	State     service.TrackerState      `json:"state"`
	Elements  []service.RenderedElement `json:"elements"`
	Panel     service.PanelState        `json:"panel"`
}

func viewSession(c *fiber.Ctx, s *service.Session) sessionView {
	return sessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		State:     s.Tracker.State(c.UserContext()),
		Elements:  renderAll(s.Elements.List()),
		Panel:     s.Panel.State(),
	}
}

func renderAll(els []model.Element) []service.RenderedElement {
	out := make([]service.RenderedElement, len(els))
	for i, el := range els {
		out[i] = service.RenderElement(el)
	}
	return out
}

// withSession resolves :sid before calling fn.
func withSession(reg *service.SessionRegistry, fn func(c *fiber.Ctx, s *service.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := reg.Get(c.Params("sid"))
		if err != nil {
			return writeError(c, fiber.StatusNotFound, codeSessionMissing, "session not found")
		}
		return fn(c, s)
	}
}

// serviceError maps service and model errors onto the error envelope.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, codeNotFound, "document not found")
	case errors.Is(err, service.ErrInvalidLocation):
		return writeError(c, fiber.StatusBadRequest, "INVALID_LOCATION", "invalid document location")
	case errors.Is(err, service.ErrIndexOutOfRange):
		return writeError(c, fiber.StatusBadRequest, "INDEX_OUT_OF_RANGE", "index out of range")
	case errors.Is(err, model.ErrUnknownElementType):
		return writeError(c, fiber.StatusBadRequest, "UNKNOWN_ELEMENT_TYPE", "unknown element type")
	case errors.Is(err, service.ErrPromptRequired):
		return writeError(c, fiber.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required")
	case errors.Is(err, service.ErrBusy):
		return writeError(c, fiber.StatusConflict, "BUSY", "a response is already being generated")
	}
	var ce *completion.Error
	if errors.As(err, &ce) {
		return writeError(c, completion.StatusCode(err), "COMPLETION_FAILED", service.AssistErrorMessage)
	}
	return internalError(c)
}

// CreateSession opens a new editor session with an empty buffer.
func CreateSession(reg *service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := reg.Create()
		return c.Status(fiber.StatusCreated).JSON(viewSession(c, s))
	}
}

func GetSession(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		return c.JSON(viewSession(c, s))
	})
}

func DeleteSession(reg *service.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg.Delete(c.Params("sid"))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// LoadDocument binds document :id to the session's editor.
func LoadDocument(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		if err := s.Tracker.Load(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

// NewDocument starts a fresh buffer, keeping unsaved content as a document.
func NewDocument(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		if err := s.Tracker.NewDocument(c.UserContext()); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

type contentRequest struct {
	Content string `json:"content"`
}

// UpdateContent records an editor edit.
func UpdateContent(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req contentRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if err := s.Tracker.OnContentChange(c.UserContext(), req.Content); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

type titleRequest struct {
	Title string `json:"title"`
}

// SaveDocument flushes the buffer, creating a document when none is active.
func SaveDocument(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req titleRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return invalidBody(c)
			}
		}
		doc, err := s.Tracker.Save(c.UserContext(), req.Title)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(doc)
	})
}

func RenameDocument(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req titleRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if err := s.Tracker.Rename(c.UserContext(), c.Params("id"), req.Title); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

// DeleteSessionDocument deletes a document from within an editor. Other
// sessions showing it are repaired too.
func DeleteSessionDocument(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		if err := reg.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

type navigateRequest struct {
	Path string `json:"path"`
}

func Navigate(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req navigateRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if err := s.Tracker.Navigate(c.UserContext(), req.Path); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s.Tracker.State(c.UserContext()))
	})
}

// Assist submits a prompt from the session's AI panel.
func Assist(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req promptRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		text, err := s.Panel.Submit(c.UserContext(), req.Prompt)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(generateResponse{Text: text})
	})
}
