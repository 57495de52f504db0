package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/service"
)

// ContentHandler handles content item requests
type ContentHandler struct {
	service service.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// Create handles POST /api/v1/content
// @Summary Create content item
// @Description Creates a new content item with a fresh identity and version
// @Tags content
// @Accept json
// @Produce json
// @Param body body service.SaveContentRequest true "Content fields"
// @Success 201 {object} common.APIResponse{data=domain.ContentItem}
// @Failure 422 {object} common.APIResponse
// @Security ApiKeyAuth
// @Router /content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req service.SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	item, err := h.service.Save(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, item)
}

// Update handles PUT /api/v1/content/:id
// @Summary Update content item
// @Description Archives the current state and replaces it, guarded by the prior version
// @Tags content
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param body body service.UpdateContentRequest true "Updated fields plus prior version"
// @Success 200 {object} common.APIResponse{data=domain.ContentItem}
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security ApiKeyAuth
// @Router /content/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	var req service.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	item, err := h.service.SaveUpdate(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, item, nil)
}

// Delete handles DELETE /api/v1/content/:id
// @Summary Delete content item
// @Description Archives the final state then removes the live row
// @Tags content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security ApiKeyAuth
// @Router /content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	if err := h.service.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": id}, nil)
}

// Get handles GET /api/v1/content/:id
// @Summary Get content item
// @Tags content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} common.APIResponse{data=domain.ContentItem}
// @Failure 404 {object} common.APIResponse
// @Router /content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	item, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, item, nil)
}

// List handles GET /api/v1/content
// @Summary List live content items
// @Tags content
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ContentItem}
// @Router /content [get]
func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.service.List()
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, items, &common.Meta{Total: int64(len(items))})
}

// ListDeleted handles GET /api/v1/content/deleted
// @Summary List deleted content
// @Description Returns the final archived state of every deleted item
// @Tags content
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ContentItem}
// @Router /content/deleted [get]
func (h *ContentHandler) ListDeleted(c *gin.Context) {
	items, err := h.service.ListDeleted()
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, items, &common.Meta{Total: int64(len(items))})
}

// History handles GET /api/v1/content/:id/history
// @Summary List historic snapshots of a content item
// @Tags content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} common.APIResponse{data=[]domain.HistoricSnapshot}
// @Router /content/{id}/history [get]
func (h *ContentHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	snaps, err := h.service.History(id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, snaps, &common.Meta{Total: int64(len(snaps))})
}
