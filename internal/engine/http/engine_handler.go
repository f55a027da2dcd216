// Package http provides HTTP handlers for per-cell anonymization operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/anonymizer/internal/engine"
	"github.com/allisson/anonymizer/internal/engine/http/dto"
	"github.com/allisson/anonymizer/internal/httputil"
	customValidation "github.com/allisson/anonymizer/internal/validation"
)

// EngineHandler exposes the engine's per-cell API over HTTP.
type EngineHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewEngineHandler creates an engine handler with required dependencies.
func NewEngineHandler(eng *engine.Engine, logger *slog.Logger) *EngineHandler {
	return &EngineHandler{
		engine: eng,
		logger: logger,
	}
}

// AnonymizeHandler anonymizes a single cell.
// POST /v1/anonymize - Returns 200 OK with the replacement value.
func (h *EngineHandler) AnonymizeHandler(c *gin.Context) {
	var req dto.AnonymizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	anonymized, err := h.engine.Anonymize(c.Request.Context(), req.Column, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AnonymizeResponse{
		Column:     req.Column,
		Anonymized: anonymized,
	})
}

// DeanonymizeHandler resolves an anonymized value back to its original.
// POST /v1/deanonymize - Returns 200 OK, 404 when no mapping exists.
func (h *EngineHandler) DeanonymizeHandler(c *gin.Context) {
	var req dto.DeanonymizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	original, err := h.engine.Deanonymize(c.Request.Context(), req.Column, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DeanonymizeResponse{
		Column:   req.Column,
		Original: original,
	})
}

// ParamsHandler returns the run-parameter document.
// GET /v1/params - Returns 200 OK with mode, profile, and column detections.
func (h *EngineHandler) ParamsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Params())
}
