package repositories

import (
	"bad-news/pkg/models"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const articlesSchema = `
CREATE TABLE IF NOT EXISTS articles (
	id           UUID PRIMARY KEY,
	header       TEXT NOT NULL,
	teaser       TEXT NOT NULL DEFAULT '',
	content_html TEXT NOT NULL DEFAULT '',
	date         DATE NOT NULL,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectArticles = `SELECT id, header, teaser, content_html, date, is_published, created_at FROM articles`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the articles table when it does not exist yet.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, articlesSchema)
	return err
}

func (r *PostgresRepository) GetArticles(ctx context.Context, publishedOnly bool, year *int) ([]models.Article, error) {
	var yearArg sql.NullInt64
	if year != nil {
		yearArg = sql.NullInt64{Int64: int64(*year), Valid: true}
	}

	var articles []models.Article
	err := r.db.SelectContext(ctx, &articles,
		selectArticles+`
		WHERE ($1 = FALSE OR is_published)
		  AND ($2::INT IS NULL OR EXTRACT(YEAR FROM date)::INT = $2)`,
		publishedOnly, yearArg,
	)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *PostgresRepository) GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.GetContext(ctx, &article, selectArticles+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}
