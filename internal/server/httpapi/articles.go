package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gin-gonic/gin"
)

type createArticleRequest struct {
	Article struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList"`
	} `json:"article"`
}

type updateArticleRequest struct {
	Article struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	} `json:"article"`
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) listArticles(c *gin.Context) {
	query := services.ListQuery{
		Tag:         c.Query("tag"),
		Author:      c.Query("author"),
		FavoritedBy: c.Query("favorited"),
		Limit:       intQuery(c, "limit", 20),
		Offset:      intQuery(c, "offset", 0),
	}

	list, err := s.articles.List(c.Request.Context(), query, viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": list.Articles, "articlesCount": list.Total})
}

func (s *Server) feed(c *gin.Context) {
	list, err := s.articles.Feed(c.Request.Context(), viewerID(c),
		intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": list.Articles, "articlesCount": list.Total})
}

func (s *Server) createArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	draft := services.ArticleDraft{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	}

	view, err := s.articles.Create(c.Request.Context(), viewerID(c), draft)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"article": view})
}

func (s *Server) getArticle(c *gin.Context) {
	view, err := s.articles.Get(c.Request.Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": view})
}

func (s *Server) updateArticle(c *gin.Context) {
	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	patch := services.ArticlePatch{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	}

	view, err := s.articles.Update(c.Request.Context(), c.Param("slug"), viewerID(c), patch)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": view})
}

func (s *Server) deleteArticle(c *gin.Context) {
	if err := s.articles.Delete(c.Request.Context(), c.Param("slug"), viewerID(c)); err != nil {
		s.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) favorite(c *gin.Context) {
	view, err := s.articles.Favorite(c.Request.Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": view})
}

func (s *Server) unfavorite(c *gin.Context) {
	view, err := s.articles.Unfavorite(c.Request.Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": view})
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.articles.Tags(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
