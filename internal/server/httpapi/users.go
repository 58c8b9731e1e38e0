package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Request bodies follow the original wire contract: the payload is nested
// under a "user" key. Patch fields are pointers so an omitted field can be
// told apart from an empty one.

type registerRequest struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type updateUserRequest struct {
	User struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := s.users.Register(c.Request.Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": view})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := s.users.Login(c.Request.Context(), req.User.Email, req.User.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view})
}

func (s *Server) currentUser(c *gin.Context) {
	view, err := s.users.GetCurrent(c.Request.Context(), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view})
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	patch := services.UserPatch{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	}

	view, err := s.users.Update(c.Request.Context(), viewerID(c), patch)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view})
}
