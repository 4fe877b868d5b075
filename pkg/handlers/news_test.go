package handlers

import (
	"bad-news/pkg/models"
	"bad-news/pkg/repositories"
	"bad-news/pkg/services"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	publishedID   = "6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f"
	unpublishedID = "a1b2c3d4-e5f6-4789-8abc-def012345678"
)

type memoryPageCache struct {
	pages   map[string]string
	flushed int
}

func (m *memoryPageCache) Get(_ context.Context, key string) (string, bool, error) {
	html, ok := m.pages[key]
	return html, ok, nil
}

func (m *memoryPageCache) Set(_ context.Context, key, html string) error {
	m.pages[key] = html
	return nil
}

func (m *memoryPageCache) Flush(context.Context) error {
	m.pages = map[string]string{}
	m.flushed++
	return nil
}

type testServer struct {
	router *gin.Engine
	cache  *memoryPageCache
	dir    string
}

func newTestServer(t *testing.T, elevated bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	writeArticle(t, dir, "published.md", "---\nid: "+publishedID+"\nheader: Heat wave\nteaser: Records broken\ndate: 2023-01-10\npublished: true\n---\n<p>Hot <b>news</b>.</p>\n")
	writeArticle(t, dir, "draft.md", "---\nid: "+unpublishedID+"\nheader: Potholes\nteaser: Draft\ndate: 2024-01-01\npublished: false\n---\n<p>Draft.</p>\n")

	templates, err := services.LoadTemplates(filepath.Join("..", "..", "templates"))
	require.NoError(t, err)

	cache := &memoryPageCache{pages: map[string]string{}}
	h, err := NewNewsHandler(
		repositories.NewFileRepository(dir, nil),
		1,
		services.NewRenderer(templates, en.New()),
		cache,
		nil,
	)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(elevatedKey, elevated)
		c.Next()
	})
	h.Register(r)

	return &testServer{router: r, cache: cache, dir: dir}
}

func writeArticle(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Heat wave")
	assert.Contains(t, body, "10 Jan 2023")
	assert.Contains(t, body, "/news/fullarticle/"+publishedID)
	assert.NotContains(t, body, "Potholes")
	assert.NotContains(t, body, "pager-newer")
	assert.NotContains(t, body, "pager-older")
}

func TestIndexPageElevatedSeesUnpublished(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodGet, "/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Potholes")
	assert.Contains(t, w.Body.String(), `href="/news?pageIndex=1"`)

	w = s.do(http.MethodGet, "/news?pageIndex=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Heat wave")
	assert.Contains(t, w.Body.String(), `href="/news?pageIndex=0"`)

	assert.Empty(t, s.cache.pages, "elevated pages are not cached")
}

func TestIndexPageYearFilter(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/news?year=2024")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Heat wave")
	assert.NotContains(t, w.Body.String(), "Potholes")
}

func TestIndexPageInvalidQuery(t *testing.T) {
	s := newTestServer(t, false)

	for _, target := range []string{"/news?pageIndex=-1", "/news?pageIndex=abc", "/news?year=0"} {
		w := s.do(http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestIndexPageHugeIndex(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/news?pageIndex=9223372036854775807")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Heat wave")
	assert.NotContains(t, w.Body.String(), "pager-older")
	assert.Contains(t, w.Body.String(), `href="/news?pageIndex=9223372036854775806"`)
}

func TestIndexPageServedFromCache(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/news")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, s.cache.pages, services.IndexPageKey(0, nil))

	s.cache.pages[services.IndexPageKey(0, nil)] = "cached"
	w = s.do(http.MethodGet, "/news")
	assert.Equal(t, "cached", w.Body.String())
}

func TestFullArticlePage(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/news/fullarticle/"+publishedID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Heat wave</h1>")
	assert.Contains(t, w.Body.String(), "<p>Hot <b>news</b>.</p>")

	w = s.do(http.MethodGet, "/news/fullarticle/"+unpublishedID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/news/fullarticle/0d9b8a7c-6e5f-4a3b-9c2d-1e0f9a8b7c6d")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/news/fullarticle/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullArticlePageElevated(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodGet, "/news/fullarticle/"+unpublishedID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Potholes</h1>")
}

func TestListArticlesAPI(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/api/news?pageIndex=0")
	require.Equal(t, http.StatusOK, w.Code)

	var model models.IndexPageModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &model))
	require.Len(t, model.PageArticles, 1)
	assert.Equal(t, "Heat wave", model.PageArticles[0].Header)
	assert.True(t, model.IsFirst)
	assert.True(t, model.IsLast)

	w = s.do(http.MethodGet, "/api/news?pageIndex=-2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetArticleAPI(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/api/news/"+publishedID)
	require.Equal(t, http.StatusOK, w.Code)
	var model models.FullArticlePageModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.Equal(t, "<p>Hot <b>news</b>.</p>", model.Article.ContentHTML)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/news/"+unpublishedID).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/news/xyz").Code)
}

func TestReload(t *testing.T) {
	public := newTestServer(t, false)
	assert.Equal(t, http.StatusForbidden, public.do(http.MethodPost, "/api/reload").Code)
	assert.Zero(t, public.cache.flushed)

	s := newTestServer(t, true)
	w := s.do(http.MethodGet, "/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Fresh")

	writeArticle(t, s.dir, "fresh.md", "---\nheader: Fresh\ndate: 2025-05-05\npublished: true\n---\n<p>New.</p>\n")
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/reload").Code)
	assert.Equal(t, 1, s.cache.flushed)

	w = s.do(http.MethodGet, "/news")
	assert.Contains(t, w.Body.String(), "Fresh")
}
