package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"docketdraft-backend/export"
	"docketdraft-backend/models"
	"docketdraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// generationTimeout bounds one background generation run
const generationTimeout = 10 * time.Minute

// streamPollInterval is how often the SSE stream re-reads the job row
const streamPollInterval = time.Second

// GenerationHandler handles HTTP requests for document generation
type GenerationHandler struct {
	draftService *service.DraftService
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(draftService *service.DraftService) *GenerationHandler {
	return &GenerationHandler{draftService: draftService}
}

// GenerateDocument handles POST /api/cases/:id/generate
func (h *GenerationHandler) GenerateDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid case ID format",
			},
		})
		return
	}

	var reqBody struct {
		DocumentType string `json:"document_type"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil && err != io.EOF {
		// JSON is optional, ignore binding errors if body is empty
	}

	serviceReq := service.StartGenerationRequest{
		CaseID:       id,
		DocumentType: reqBody.DocumentType,
	}

	// Create job (synchronous, fast)
	result, err := h.draftService.StartGeneration(c.Request.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Case not found",
				},
			})
			return
		}
		if errors.Is(err, service.ErrGenerationInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_IN_PROGRESS",
					"message": "A generation run is already in progress for this case",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing.
	// Detached from the request context, but bounded so an abandoned run
	// does not consume model quota indefinitely.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()
		if err := h.draftService.ProcessGeneration(bgCtx, result.JobID); err != nil {
			// Error is stored in job.ErrorMessage; clients poll or stream status
			log.Printf("Generation job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Generation job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *GenerationHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.draftService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Generation job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// streamEvent is one SSE payload with the job's live progress
type streamEvent struct {
	Status      models.GenerationJobStatus `json:"status"`
	CurrentStep *string                    `json:"current_step,omitempty"`
	Steps       models.GenerationSteps     `json:"steps"`
	Error       *string                    `json:"error,omitempty"`
}

// StreamJob handles GET /api/jobs/:id/stream. It pushes job progress as
// server-sent events by polling the job row. A client disconnect only ends
// the stream; the generation run is unaffected.
func (h *GenerationHandler) StreamJob(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	if _, err := h.draftService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id}); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Generation job not found",
			},
		})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STREAMING_UNSUPPORTED",
				"message": "Streaming not supported by this connection",
			},
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	var lastPayload string
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			result, err := h.draftService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
			if err != nil {
				return
			}

			event := streamEvent{
				Status:      result.Job.Status,
				CurrentStep: result.Job.CurrentStep,
				Steps:       result.Job.Steps,
				Error:       result.Job.ErrorMessage,
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}

			if string(payload) != lastPayload {
				if _, err := c.Writer.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
					return
				}
				flusher.Flush()
				lastPayload = string(payload)
			}

			if result.Job.Status == models.JobStatusCompleted || result.Job.Status == models.JobStatusFailed {
				return
			}
		}
	}
}

// ExportRequest represents the request body for exporting a document
type ExportRequest struct {
	Format string `json:"format" binding:"required"`
}

// ExportDocument handles POST /api/cases/:id/export
func (h *GenerationHandler) ExportDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid case ID format",
			},
		})
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.draftService.Export(c.Request.Context(), service.ExportRequest{
		CaseID: id,
		Format: req.Format,
	})
	if err != nil {
		if errors.Is(err, service.ErrDraftNotReady) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DRAFT_NOT_READY",
					"message": "No completed generation exists for this case",
				},
			})
			return
		}
		if errors.Is(err, export.ErrExportFailed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EXPORT_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
