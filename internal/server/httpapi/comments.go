package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCommentRequest struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

func (s *Server) listComments(c *gin.Context) {
	views, err := s.comments.List(c.Request.Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": views})
}

func (s *Server) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := s.comments.Add(c.Request.Context(), c.Param("slug"), viewerID(c), req.Comment.Body)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": view})
}

func (s *Server) deleteComment(c *gin.Context) {
	err := s.comments.Delete(c.Request.Context(), c.Param("slug"), c.Param("id"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
