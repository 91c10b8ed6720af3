package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"archivedoc/internal/service"
)

type submitJobRequest struct {
	FileID       string `json:"file_id"`
	ForceRefresh bool   `json:"force_refresh"`
	AutoSave     bool   `json:"auto_save"`
}

// SubmitJob schedules an asynchronous analysis and returns its job id.
//
// @Summary  Submit a processing job
// @Tags     jobs
// @Accept   json
// @Produce  json
// @Param    request body submitJobRequest true "job to submit"
// @Success  202 {object} map[string]string
// @Router   /jobs [post]
func SubmitJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitJobRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if req.FileID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_ID_REQUIRED", "file_id is required")
		}

		id, err := svc.Submit(c.UserContext(), req.FileID, service.SubmitOptions{
			ForceRefresh: req.ForceRefresh,
			AutoSave:     req.AutoSave,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": id})
	}
}

// GetJob reports a job's status, progress and, once finished, its result.
//
// @Summary  Get a job
// @Tags     jobs
// @Produce  json
// @Param    id path string true "job id"
// @Success  200 {object} model.ProcessingJob
// @Router   /jobs/{id} [get]
func GetJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		job, err := svc.Status(c.UserContext(), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(job)
	}
}

// CancelJob cancels a pending or processing job.
//
// @Summary  Cancel a job
// @Tags     jobs
// @Produce  json
// @Param    id path string true "job id"
// @Success  200 {object} model.ProcessingJob
// @Router   /jobs/{id} [delete]
func CancelJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		job, err := svc.Cancel(c.UserContext(), id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(job)
	}
}

// SweepJobs drops jobs past the retention window.
//
// @Summary  Sweep old jobs
// @Tags     maintenance
// @Produce  json
// @Success  200 {object} map[string]int
// @Router   /maintenance/jobs/sweep [post]
func SweepJobs(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		removed := svc.Sweep(c.UserContext())
		return c.JSON(fiber.Map{"removed": removed})
	}
}
