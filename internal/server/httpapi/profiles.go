package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getProfile(c *gin.Context) {
	view, err := s.profiles.Get(c.Request.Context(), c.Param("username"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": view})
}

func (s *Server) follow(c *gin.Context) {
	view, err := s.profiles.Follow(c.Request.Context(), viewerID(c), c.Param("username"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": view})
}

func (s *Server) unfollow(c *gin.Context) {
	view, err := s.profiles.Unfollow(c.Request.Context(), viewerID(c), c.Param("username"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": view})
}
