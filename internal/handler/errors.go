package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/dto"
)

// writeServiceError translates service layer failures into HTTP
// responses. Upstream Battle.net failures surface as 502 so clients can
// tell them apart from our own errors.
func writeServiceError(c *gin.Context, err error) {
	var upstream *battlenet.UpstreamError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Battle.net authorization expired, please log in again",
		})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMissingParameters):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: "Battle.net request failed",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
