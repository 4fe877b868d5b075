package models

import (
	"time"

	"github.com/google/uuid"
)

// Article represents a news article as stored in the repository.
type Article struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Header      string    `json:"header" db:"header"`
	Teaser      string    `json:"teaser" db:"teaser"`
	ContentHTML string    `json:"content_html" db:"content_html"` // Trusted, pre-rendered HTML
	Date        time.Time `json:"date" db:"date"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ArticleSummary is the part of an article shown on the listing page.
type ArticleSummary struct {
	ID     uuid.UUID `json:"id"`
	Header string    `json:"header"`
	Teaser string    `json:"teaser"`
	Date   time.Time `json:"date"`
}

func (a Article) Summary() ArticleSummary {
	return ArticleSummary{
		ID:     a.ID,
		Header: a.Header,
		Teaser: a.Teaser,
		Date:   a.Date,
	}
}

// Visible reports whether the article passes the listing filters: unpublished
// articles are dropped when publishedOnly is set, and a non-nil year keeps only
// articles dated within that calendar year.
func (a Article) Visible(publishedOnly bool, year *int) bool {
	if publishedOnly && !a.IsPublished {
		return false
	}
	if year != nil && a.Date.Year() != *year {
		return false
	}
	return true
}
