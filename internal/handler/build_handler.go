package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waymarker/waymarker-backend/internal/build"
	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/repository"
)

// BuildHandler handles build run requests
type BuildHandler struct {
	orchestrator *build.Orchestrator
	generations  repository.GenerationRepository
}

// NewBuildHandler creates a new BuildHandler
func NewBuildHandler(orchestrator *build.Orchestrator, generations repository.GenerationRepository) *BuildHandler {
	return &BuildHandler{orchestrator: orchestrator, generations: generations}
}

type runBuildRequest struct {
	Scope domain.BuildScope `json:"scope"`
}

// Run handles POST /api/v1/build
// @Summary Run a build
// @Description Executes one build pass synchronously and returns its report. Returns 409 while another run is active.
// @Tags build
// @Accept json
// @Produce json
// @Param body body runBuildRequest true "Build scope: full or changed"
// @Success 200 {object} common.APIResponse{data=build.BuildReport}
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security ApiKeyAuth
// @Router /build [post]
func (h *BuildHandler) Run(c *gin.Context) {
	var req runBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Scope == "" {
		req.Scope = domain.ScopeChangedOnly
	}

	report, err := h.orchestrator.Run(c.Request.Context(), req.Scope)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, report, nil)
}

// Status handles GET /api/v1/build/status
// @Summary Current build state
// @Tags build
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /build/status [get]
func (h *BuildHandler) Status(c *gin.Context) {
	common.SuccessResponse(c, gin.H{"state": h.orchestrator.CurrentState()}, nil)
}

// History handles GET /api/v1/build/runs
// @Summary List recent generation runs
// @Tags build
// @Produce json
// @Param limit query int false "Maximum rows, newest first"
// @Success 200 {object} common.APIResponse{data=[]domain.GenerationRun}
// @Router /build/runs [get]
func (h *BuildHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.generations.List(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, runs, &common.Meta{Total: int64(len(runs))})
}
