package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrTemplateMissing = errors.New("template missing")

const (
	IndexTemplateFile       = "Index.hbs"
	ArticleTemplateFile     = "NewsArticle.hbs"
	FullArticleTemplateFile = "FullArticle.hbs"
)

// Templates holds the template texts. It is read once at startup and shared
// read-only afterwards.
type Templates struct {
	Index       string // Page shell with {{articles}}, {{newerUrl}} and {{olderUrl}}
	Article     string // One listing item
	FullArticle string
}

func LoadTemplates(dir string) (*Templates, error) {
	var t Templates
	files := []struct {
		name string
		dst  *string
	}{
		{IndexTemplateFile, &t.Index},
		{ArticleTemplateFile, &t.Article},
		{FullArticleTemplateFile, &t.FullArticle},
	}

	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateMissing, f.name, err)
		}
		*f.dst = string(content)
	}
	return &t, nil
}
