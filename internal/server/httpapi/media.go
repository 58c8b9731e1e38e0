package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// presignAvatar hands the client a presigned PUT URL for an avatar upload.
// The client uploads directly to object storage and then PUTs the returned
// key (or a URL built from it) into its profile image field.
func (s *Server) presignAvatar(c *gin.Context) {
	key, url, err := s.media.PresignAvatarUpload(c.Request.Context(), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload": gin.H{"key": key, "url": url}})
}
