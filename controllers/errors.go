package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/waitlist-app/services"
	"github.com/yeremiapane/waitlist-app/utils"
)

// ErrNoPermission dipakai saat role user tidak berhak akses endpoint.
var ErrNoPermission = errors.New("you do not have permission")

// respondServiceError memetakan error domain services ke HTTP status code.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidArgument):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("Internal error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// parseID memvalidasi path param sebagai UUID sebelum diteruskan ke service.
func parseID(c *gin.Context, param string) (string, bool) {
	raw := c.Param(param)
	if _, err := uuid.Parse(raw); err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("malformed %s: %q", param, raw))
		return "", false
	}
	return raw, true
}
