package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"preorder/internal/logger"
	"preorder/internal/pipeline"

	"github.com/gin-gonic/gin"
)

type RunHandler struct {
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
	running  atomic.Bool
}

func NewRunHandler(p *pipeline.Pipeline, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		pipeline: p,
		logger:   logger,
	}
}

// ListSteps exposes the step registry so callers can build selections.
func (h *RunHandler) ListSteps(c *gin.Context) {
	steps := h.pipeline.Steps()
	out := make([]gin.H, len(steps))
	for i, s := range steps {
		out[i] = gin.H{
			"number":      i + 1,
			"name":        s.Name,
			"description": s.Description,
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type runRequest struct {
	Selection     string `json:"selection"`
	DryRun        bool   `json:"dry_run"`
	StopOnFailure bool   `json:"stop_on_failure"`
}

// Trigger starts a sync run in the background. Only one run may be active at
// a time.
func (h *RunHandler) Trigger(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Selection == "" {
		req.Selection = "all"
	}

	// Validate the selection before accepting the run.
	if _, err := pipeline.ParseSelection(req.Selection, len(h.pipeline.Steps())); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "A sync run is already in progress"})
		return
	}

	go func() {
		defer h.running.Store(false)
		opts := pipeline.Options{DryRun: req.DryRun, StopOnFailure: req.StopOnFailure}
		if err := h.pipeline.Run(context.Background(), req.Selection, opts); err != nil {
			h.logger.Error("Triggered sync run failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "started",
		"selection": req.Selection,
		"dry_run":   req.DryRun,
	})
}
