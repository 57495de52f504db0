package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waymarker/waymarker-backend/internal/common"
)

// respondError maps engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrContentNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "content not found", err)
	case errors.Is(err, common.ErrStaleVersion):
		common.ErrorResponse(c, http.StatusConflict, "content was modified by someone else", err)
	case errors.Is(err, common.ErrDuplicateTag):
		common.ErrorResponse(c, http.StatusConflict, "tag already excluded", err)
	case errors.Is(err, common.ErrBuildInProgress):
		common.ErrorResponse(c, http.StatusConflict, "a build run is already in progress", err)
	case common.IsValidation(err):
		common.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "internal error", err)
	}
}
