// Package repositories provides the article stores the news pages are built from.
package repositories

import (
	"bad-news/pkg/models"
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrArticleNotFound = errors.New("article not found")

// NewsRepository is the read side of an article store. Implementations must be
// safe for concurrent use.
type NewsRepository interface {
	// GetArticles returns the articles matching the filters in no particular order.
	GetArticles(ctx context.Context, publishedOnly bool, year *int) ([]models.Article, error)
	// GetArticleByID returns ErrArticleNotFound when no article has the given id.
	GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
}
