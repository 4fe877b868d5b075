package repositories

import (
	"bad-news/pkg/models"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var articleExtensions = []string{".md", ".html"}

// FileRepository serves articles from a directory of content files with front
// matter. The directory is read on first use and cached until Invalidate.
type FileRepository struct {
	root   string
	logger *zap.Logger

	mu       sync.Mutex
	loaded   bool
	articles []models.Article
	byID     map[uuid.UUID]int
}

func NewFileRepository(root string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{root: root, logger: logger}
}

func (r *FileRepository) GetArticles(ctx context.Context, publishedOnly bool, year *int) ([]models.Article, error) {
	articles, _, err := r.snapshot()
	if err != nil {
		return nil, err
	}

	var result []models.Article
	for _, article := range articles {
		if article.Visible(publishedOnly, year) {
			result = append(result, article)
		}
	}
	return result, nil
}

func (r *FileRepository) GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	articles, byID, err := r.snapshot()
	if err != nil {
		return nil, err
	}

	idx, ok := byID[id]
	if !ok {
		return nil, ErrArticleNotFound
	}
	article := articles[idx]
	return &article, nil
}

// Invalidate drops the cached articles; the next read walks the directory again.
func (r *FileRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	r.articles = nil
	r.byID = nil
}

// snapshot returns the cached articles. The returned slice and map are never
// mutated afterwards, so callers may read them without holding the lock.
func (r *FileRepository) snapshot() ([]models.Article, map[uuid.UUID]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.articles, r.byID, nil
	}

	articles, err := r.load()
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]int, len(articles))
	for i, article := range articles {
		byID[article.ID] = i
	}

	r.articles = articles
	r.byID = byID
	r.loaded = true
	return r.articles, r.byID, nil
}

func (r *FileRepository) load() ([]models.Article, error) {
	var articles []models.Article
	seen := make(map[uuid.UUID]string)

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasArticleExtension(d.Name()) {
			return nil
		}

		relPath, _ := filepath.Rel(r.root, path)
		relPath = filepath.ToSlash(relPath)

		article, err := readArticleFile(path, relPath)
		if err != nil {
			r.logger.Warn("skipping article file", zap.String("path", relPath), zap.Error(err))
			return nil
		}
		if other, ok := seen[article.ID]; ok {
			r.logger.Warn("skipping article with duplicate id",
				zap.String("path", relPath),
				zap.String("first", other),
				zap.Stringer("id", article.ID),
			)
			return nil
		}
		seen[article.ID] = relPath

		articles = append(articles, article)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("loaded articles", zap.String("root", r.root), zap.Int("count", len(articles)))
	return articles, nil
}

func readArticleFile(path, relPath string) (models.Article, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Article{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return models.Article{}, err
	}

	fm, body, _, err := ParseFrontMatter(content)
	if err != nil {
		return models.Article{}, err
	}
	return articleFromFrontMatter(fm, body, relPath, info.ModTime())
}

func hasArticleExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range articleExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
