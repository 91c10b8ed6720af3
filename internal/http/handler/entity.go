package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"archivedoc/internal/model"
	"archivedoc/internal/service"
)

// ListEntities lists entities, optionally filtered by type and name substring.
//
// @Summary  List entities
// @Tags     entities
// @Produce  json
// @Param    type   query string false "entity type filter"
// @Param    name   query string false "name substring filter"
// @Param    limit  query int    false "page size"   default(10)
// @Param    offset query int    false "page offset" default(0)
// @Success  200 {object} service.EntityListResult
// @Router   /entities [get]
func ListEntities(svc service.EntityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), model.EntityType(c.Query("type")), c.Query("name"), limit, offset)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(res)
	}
}

// GetEntity returns one entity with its linked documents.
//
// @Summary  Get an entity
// @Tags     entities
// @Produce  json
// @Param    id path string true "entity id"
// @Success  200 {object} model.Entity
// @Router   /entities/{id} [get]
func GetEntity(svc service.EntityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(e)
	}
}

// CleanupOrphanEntities removes entities no document links to.
//
// @Summary  Remove orphan entities
// @Tags     maintenance
// @Produce  json
// @Success  200 {object} map[string]int64
// @Router   /maintenance/entities/cleanup [post]
func CleanupOrphanEntities(svc service.EntityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		removed, err := svc.CleanupOrphans(c.UserContext())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(fiber.Map{"removed": removed})
	}
}
