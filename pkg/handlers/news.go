package handlers

import (
	"bad-news/pkg/repositories"
	"bad-news/pkg/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// IndexQuery is the query string of the listing routes.
type IndexQuery struct {
	PageIndex int  `form:"pageIndex" binding:"min=0"`
	Year      *int `form:"year" binding:"omitempty,min=1,max=9999"`
}

// Invalidator is implemented by repositories that cache their articles.
type Invalidator interface {
	Invalidate()
}

type NewsHandler struct {
	repo     repositories.NewsRepository
	builder  *services.NewsModelBuilder
	renderer *services.Renderer
	cache    services.PageCache
	logger   *zap.Logger
}

func NewNewsHandler(
	repo repositories.NewsRepository,
	pageSize int,
	renderer *services.Renderer,
	cache services.PageCache,
	logger *zap.Logger,
) (*NewsHandler, error) {
	builder, err := services.NewNewsModelBuilder(repo, pageSize)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = services.NopPageCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsHandler{
		repo:     repo,
		builder:  builder,
		renderer: renderer,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Register mounts the news pages and the JSON API on r.
func (h *NewsHandler) Register(r gin.IRouter) {
	r.GET("/news", h.Index)
	r.GET("/news/fullarticle/:id", h.FullArticle)

	api := r.Group("/api")
	{
		api.GET("/news", h.ListArticles)
		api.GET("/news/:id", h.GetArticle)
		api.POST("/reload", ElevationRequired, h.Reload)
	}
}

func (h *NewsHandler) Index(c *gin.Context) {
	var query IndexQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.String(http.StatusBadRequest, "Invalid query: %v", err)
		return
	}

	elevated := IsElevated(c)
	key := services.IndexPageKey(query.PageIndex, query.Year)
	if !elevated {
		if html, ok := h.cachedPage(c, key); ok {
			c.Data(http.StatusOK, htmlContentType, []byte(html))
			return
		}
	}

	model, err := h.builder.BuildIndexModel(c.Request.Context(), query.PageIndex, !elevated, query.Year)
	if err != nil {
		h.fail(c, err)
		return
	}

	html := h.renderer.RenderIndexPage(model)
	if !elevated {
		h.storePage(c, key, html)
	}
	c.Data(http.StatusOK, htmlContentType, []byte(html))
}

func (h *NewsHandler) FullArticle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid article id")
		return
	}

	elevated := IsElevated(c)
	key := services.ArticlePageKey(id)
	if !elevated {
		if html, ok := h.cachedPage(c, key); ok {
			c.Data(http.StatusOK, htmlContentType, []byte(html))
			return
		}
	}

	model, err := h.builder.BuildFullArticleModel(c.Request.Context(), id, elevated)
	if err != nil {
		h.fail(c, err)
		return
	}
	if model == nil {
		c.String(http.StatusNotFound, "Article not found")
		return
	}

	html := h.renderer.RenderFullArticlePage(*model)
	if !elevated {
		h.storePage(c, key, html)
	}
	c.Data(http.StatusOK, htmlContentType, []byte(html))
}

func (h *NewsHandler) ListArticles(c *gin.Context) {
	var query IndexQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	model, err := h.builder.BuildIndexModel(c.Request.Context(), query.PageIndex, !IsElevated(c), query.Year)
	if err != nil {
		h.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

func (h *NewsHandler) GetArticle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	model, err := h.builder.BuildFullArticleModel(c.Request.Context(), id, IsElevated(c))
	if err != nil {
		h.failJSON(c, err)
		return
	}
	if model == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, model)
}

// Reload drops cached articles and rendered pages after content changes.
func (h *NewsHandler) Reload(c *gin.Context) {
	if inv, ok := h.repo.(Invalidator); ok {
		inv.Invalidate()
	}
	if err := h.cache.Flush(c.Request.Context()); err != nil {
		h.logger.Error("failed to flush page cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to flush page cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func (h *NewsHandler) cachedPage(c *gin.Context, key string) (string, bool) {
	html, ok, err := h.cache.Get(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("page cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return html, ok
}

func (h *NewsHandler) storePage(c *gin.Context, key, html string) {
	if err := h.cache.Set(c.Request.Context(), key, html); err != nil {
		h.logger.Warn("page cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *NewsHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidArgument) {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("failed to build news page", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal server error")
}

func (h *NewsHandler) failJSON(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("failed to build news model", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
}
