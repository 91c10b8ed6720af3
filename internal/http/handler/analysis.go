package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivedoc/internal/service"
)

type analyzeRequest struct {
	FileID       string `json:"file_id"`
	ForceRefresh bool   `json:"force_refresh"`
}

// AnalyzeFile runs the analysis pipeline synchronously and returns the result.
//
// @Summary  Analyze a stored file
// @Tags     analysis
// @Accept   json
// @Produce  json
// @Param    request body analyzeRequest true "file to analyze"
// @Success  200 {object} model.AnalysisResult
// @Router   /analysis [post]
func AnalyzeFile(svc service.AnalyzerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if req.FileID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_ID_REQUIRED", "file_id is required")
		}

		res, err := svc.Analyze(c.UserContext(), req.FileID, service.AnalyzeOptions{ForceRefresh: req.ForceRefresh})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(res)
	}
}
