package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/service"
)

// ResolveHandler handles bracket code resolution requests
type ResolveHandler struct {
	service service.ResolveService
}

// NewResolveHandler creates a new ResolveHandler
func NewResolveHandler(service service.ResolveService) *ResolveHandler {
	return &ResolveHandler{service: service}
}

type resolveRequest struct {
	Text  string `json:"text"`
	Token string `json:"token"`
}

// Resolve handles POST /api/v1/resolve
// @Summary Resolve bracket codes in a text
// @Description Finds every bracket code for the given token and resolves each referenced item. Unknown references come back flagged, not as errors.
// @Tags resolve
// @Accept json
// @Produce json
// @Param body body resolveRequest true "Text to scan and the token to match"
// @Success 200 {object} common.APIResponse{data=[]service.ResolvedRef}
// @Failure 422 {object} common.APIResponse
// @Router /resolve [post]
func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Token == "" {
		common.ErrorResponse(c, http.StatusUnprocessableEntity, "token is required", nil)
		return
	}

	refs, err := h.service.ResolveBracketCodes(c.Request.Context(), req.Text, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, refs, &common.Meta{Total: int64(len(refs))})
}
