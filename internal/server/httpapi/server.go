// Package httpapi exposes the Conduit services as a JSON/HTTP REST API.
// Handlers translate requests into service calls and service errors into the
// error envelope; they hold no business logic of their own.
package httpapi

import (
	"time"

	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/config"
	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Server wires the services into a gin router.
type Server struct {
	logger    logging.Logger
	jwtSecret []byte

	users    *services.UserService
	profiles *services.ProfileService
	articles *services.ArticleService
	comments *services.CommentService
	media    *services.MediaService
}

// NewServer constructs the HTTP server facade over the services.
func NewServer(logger logging.Logger, cfg *config.Config,
	users *services.UserService, profiles *services.ProfileService,
	articles *services.ArticleService, comments *services.CommentService,
	media *services.MediaService) *Server {
	return &Server{
		logger:    logger,
		jwtSecret: []byte(cfg.SecretKey),
		users:     users,
		profiles:  profiles,
		articles:  articles,
		comments:  comments,
		media:     media,
	}
}

// Router builds the route table. Endpoints that accept anonymous viewers use
// the optional-auth middleware; everything else requires a valid token.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")

	api.POST("/users", s.register)
	api.POST("/users/login", s.login)

	api.GET("/user", s.authRequired(), s.currentUser)
	api.PUT("/user", s.authRequired(), s.updateUser)
	api.POST("/user/avatar", s.authRequired(), s.presignAvatar)

	api.GET("/profiles/:username", s.authOptional(), s.getProfile)
	api.POST("/profiles/:username/follow", s.authRequired(), s.follow)
	api.DELETE("/profiles/:username/follow", s.authRequired(), s.unfollow)

	api.GET("/articles", s.authOptional(), s.listArticles)
	api.GET("/articles/feed", s.authRequired(), s.feed)
	api.POST("/articles", s.authRequired(), s.createArticle)
	api.GET("/articles/:slug", s.authOptional(), s.getArticle)
	api.PUT("/articles/:slug", s.authRequired(), s.updateArticle)
	api.DELETE("/articles/:slug", s.authRequired(), s.deleteArticle)

	api.POST("/articles/:slug/favorite", s.authRequired(), s.favorite)
	api.DELETE("/articles/:slug/favorite", s.authRequired(), s.unfavorite)

	api.GET("/articles/:slug/comments", s.authOptional(), s.listComments)
	api.POST("/articles/:slug/comments", s.authRequired(), s.addComment)
	api.DELETE("/articles/:slug/comments/:id", s.authRequired(), s.deleteComment)

	api.GET("/tags", s.listTags)

	return r
}

// requestLogger logs one line per request with method, path, status, and
// elapsed time.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
