package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/service"
)

// TagHandler handles tag exclusion requests
type TagHandler struct {
	service service.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(service service.TagService) *TagHandler {
	return &TagHandler{service: service}
}

type addExclusionRequest struct {
	Tag string `json:"tag"`
}

// ListExclusions handles GET /api/v1/tags/exclusions
// @Summary List excluded tags
// @Tags tags
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]string}
// @Router /tags/exclusions [get]
func (h *TagHandler) ListExclusions(c *gin.Context) {
	tags, err := h.service.Exclusions()
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, tags, &common.Meta{Total: int64(len(tags))})
}

// AddExclusion handles POST /api/v1/tags/exclusions
// @Summary Exclude a tag from public listing pages
// @Description Adding an already excluded tag returns 409
// @Tags tags
// @Accept json
// @Produce json
// @Param body body addExclusionRequest true "Tag to exclude"
// @Success 201 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security ApiKeyAuth
// @Router /tags/exclusions [post]
func (h *TagHandler) AddExclusion(c *gin.Context) {
	var req addExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.AddExclusion(req.Tag); err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, gin.H{"tag": req.Tag})
}
