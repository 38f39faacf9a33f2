package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"docsai/internal/model"
	"docsai/internal/service"
)

// DocumentDeleter deletes a document and repairs every editor that had it open.
type DocumentDeleter interface {
	DeleteDocument(ctx context.Context, id string) error
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListDocuments godoc
// @Summary List documents, most recently modified first
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Router /documents [get]
func ListDocuments(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, err := docs.List(c.UserContext())
		if err != nil {
			return internalError(c)
		}
		return c.JSON(service.Sorted(all))
	}
}

// CreateDocument godoc
// @Summary Create a document
// @Tags documents
// @Accept json
// @Produce json
// @Success 201 {object} model.Document
// @Router /documents [post]
func CreateDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return invalidBody(c)
			}
		}
		doc, err := docs.CreateWithContent(c.UserContext(), req.Title, req.Content)
		if err != nil {
			return internalError(c)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, codeNotFound, "document not found")
			}
			return internalError(c)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument godoc
// @Summary Update a document's title and/or content
// @Description Unknown ids are ignored.
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [patch]
func UpdateDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch model.DocumentPatch
		if err := c.BodyParser(&patch); err != nil {
			return invalidBody(c)
		}
		if err := docs.Update(c.UserContext(), c.Params("id"), patch); err != nil {
			return internalError(c)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Unknown ids are ignored. Editor sessions showing the document move to another one.
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func DeleteDocument(del DocumentDeleter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := del.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
			return internalError(c)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
