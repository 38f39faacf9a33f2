package handler

import (
	"github.com/gofiber/fiber/v2"

	"docsai/internal/model"
	"docsai/internal/service"
)

type insertElementRequest struct {
	Type string `json:"type"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func ListElements(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		return c.JSON(renderAll(s.Elements.List()))
	})
}

// InsertElement appends an empty element of the requested type.
func InsertElement(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req insertElementRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		typ, err := model.ParseElementType(req.Type)
		if err != nil {
			return serviceError(c, err)
		}
		el, err := s.Elements.Insert(typ)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(service.RenderElement(el))
	})
}

func UpdateElement(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req contentRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		if !s.Elements.Update(c.Params("eid"), req.Content) {
			return writeError(c, fiber.StatusNotFound, codeNotFound, "element not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func DeleteElement(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		if !s.Elements.Delete(c.Params("eid")) {
			return writeError(c, fiber.StatusNotFound, codeNotFound, "element not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ReorderElements moves one element; the others keep their relative order.
func ReorderElements(reg *service.SessionRegistry) fiber.Handler {
	return withSession(reg, func(c *fiber.Ctx, s *service.Session) error {
		var req reorderRequest
		if err := c.BodyParser(&req); err != nil || req.From == nil || req.To == nil {
			return invalidBody(c)
		}
		if err := s.Elements.Reorder(*req.From, *req.To); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(renderAll(s.Elements.List()))
	})
}
