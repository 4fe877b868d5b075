package services

import (
	"bad-news/pkg/models"
	"bad-news/pkg/repositories"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrInvalidArgument = errors.New("invalid argument")

// NewsModelBuilder assembles page models from a NewsRepository. It keeps no
// per-request state and may be shared between goroutines.
type NewsModelBuilder struct {
	repo     repositories.NewsRepository
	pageSize int
}

func NewNewsModelBuilder(repo repositories.NewsRepository, pageSize int) (*NewsModelBuilder, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1, got %d", ErrInvalidArgument, pageSize)
	}
	return &NewsModelBuilder{repo: repo, pageSize: pageSize}, nil
}

func (b *NewsModelBuilder) PageSize() int {
	return b.pageSize
}

// BuildIndexModel returns page pageIndex of the articles passing the filters,
// newest first. An index past the end yields an empty last page.
func (b *NewsModelBuilder) BuildIndexModel(ctx context.Context, pageIndex int, publishedOnly bool, year *int) (models.IndexPageModel, error) {
	if pageIndex < 0 {
		return models.IndexPageModel{}, fmt.Errorf("%w: page index must not be negative, got %d", ErrInvalidArgument, pageIndex)
	}

	articles, err := b.repo.GetArticles(ctx, publishedOnly, year)
	if err != nil {
		return models.IndexPageModel{}, fmt.Errorf("get articles: %w", err)
	}

	// Stores may filter loosely.
	articles = lo.Filter(articles, func(a models.Article, _ int) bool {
		return a.Visible(publishedOnly, year)
	})
	sortArticles(articles)

	model := models.IndexPageModel{
		PageArticles: []models.ArticleSummary{},
		PageIndex:    pageIndex,
		Year:         copyYear(year),
		IsFirst:      pageIndex == 0,
		IsLast:       true,
	}

	// Compare against the page count before multiplying so huge indexes
	// cannot overflow the offset.
	total := len(articles)
	pages := total / b.pageSize
	if total%b.pageSize != 0 {
		pages++
	}
	if pageIndex >= pages {
		return model, nil
	}

	offset := pageIndex * b.pageSize
	end := offset + min(b.pageSize, total-offset)
	model.PageArticles = lo.Map(articles[offset:end], func(a models.Article, _ int) models.ArticleSummary {
		return a.Summary()
	})
	model.IsLast = end == total
	return model, nil
}

// BuildFullArticleModel returns nil without an error when the article does not
// exist, or is unpublished and the caller is not elevated.
func (b *NewsModelBuilder) BuildFullArticleModel(ctx context.Context, id uuid.UUID, elevated bool) (*models.FullArticlePageModel, error) {
	article, err := b.repo.GetArticleByID(ctx, id)
	if errors.Is(err, repositories.ErrArticleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	if !article.IsPublished && !elevated {
		return nil, nil
	}
	return &models.FullArticlePageModel{Article: *article}, nil
}

// sortArticles orders by date, then creation time, newest first. The id breaks
// any remaining tie so that pages never overlap.
func sortArticles(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
}

func copyYear(year *int) *int {
	if year == nil {
		return nil
	}
	y := *year
	return &y
}
