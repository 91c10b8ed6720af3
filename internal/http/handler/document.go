package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"archivedoc/internal/service"
)

// SaveDocument persists an analyzed document with its entities.
//
// @Summary  Save a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    request body service.SaveDocumentPayload true "document payload"
// @Success  201 {object} model.Document
// @Router   /documents [post]
func SaveDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload service.SaveDocumentPayload
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		doc, err := svc.Save(c.UserContext(), payload)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments lists documents with limit/offset pagination.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    limit  query int false "page size"   default(10)
// @Param    offset query int false "page offset" default(0)
// @Success  200 {object} service.DocumentListResult
// @Router   /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns one document with its entities.
//
// @Summary  Get a document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} model.Document
// @Router   /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocumentImage returns a presigned download URL for the document's image.
//
// @Summary  Presign a document's image
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} map[string]string
// @Router   /documents/{id}/image [get]
func GetDocumentImage(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.ImageURL(c.UserContext(), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// PatchDocument applies a direct field patch to a document.
//
// @Summary  Patch a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id path string true "document id"
// @Param    request body service.DocumentPatch true "fields to patch"
// @Success  200 {object} model.Document
// @Router   /documents/{id} [patch]
func PatchDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch service.DocumentPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		doc, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document by id.
//
// @Summary  Delete a document
// @Tags     documents
// @Param    id path string true "document id"
// @Success  204
// @Router   /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
