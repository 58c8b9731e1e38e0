package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/gin-gonic/gin"
)

// errorBody shapes the error envelope: {"errors": {"field": ["message"]}}.
func errorBody(field, message string) gin.H {
	return gin.H{"errors": gin.H{field: []string{message}}}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("message", "unauthorized"))
}

// renderError maps service errors onto HTTP statuses. Unexpected errors are
// logged and surfaced as 500 without detail.
func (s *Server) renderError(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Fields})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnprocessableEntity, errorBody("email or password", "is invalid"))
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorBody("message", "not found"))
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, errorBody("message", "forbidden"))
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		unauthorized(c)
	default:
		s.logger.Error(c.Request.Context(), "internal error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorBody("message", "internal error"))
	}
}

// badRequest reports an unparseable request body.
func badRequest(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, errorBody("body", "can't be parsed"))
}
