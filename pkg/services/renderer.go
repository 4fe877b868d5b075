package services

import (
	"bad-news/pkg/models"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/google/uuid"
)

// Placeholders recognised in template texts.
const (
	PlaceholderHeader   = "{{header}}"
	PlaceholderDate     = "{{date}}"
	PlaceholderTeaser   = "{{teaser}}"
	PlaceholderURL      = "{{url}}"
	PlaceholderContent  = "{{content}}"
	PlaceholderNewerURL = "{{newerUrl}}"
	PlaceholderOlderURL = "{{olderUrl}}"
	PlaceholderArticles = "{{articles}}"
)

// Renderer turns page models into HTML by substituting placeholders in the
// loaded templates. Header, teaser and content are inserted as is: content is
// trusted HTML and header/teaser are escaped by whoever writes the article.
type Renderer struct {
	templates Templates
	locale    locales.Translator
}

func NewRenderer(templates *Templates, locale locales.Translator) *Renderer {
	return &Renderer{templates: *templates, locale: locale}
}

func (r *Renderer) RenderIndexPage(model models.IndexPageModel) string {
	var articles strings.Builder
	for _, article := range model.PageArticles {
		articles.WriteString(strings.NewReplacer(
			PlaceholderHeader, article.Header,
			PlaceholderDate, r.formatDate(article.Date),
			PlaceholderTeaser, article.Teaser,
			PlaceholderURL, ArticleURL(article.ID),
		).Replace(r.templates.Article))
		articles.WriteString("\n")
	}

	var newerURL, olderURL string
	if !model.IsFirst {
		newerURL = IndexURL(model.PageIndex-1, model.Year)
	}
	if !model.IsLast {
		olderURL = IndexURL(model.PageIndex+1, model.Year)
	}

	page := omitEmptyLinks(r.templates.Index, map[string]string{
		PlaceholderNewerURL: newerURL,
		PlaceholderOlderURL: olderURL,
	})
	return strings.NewReplacer(
		PlaceholderArticles, articles.String(),
		PlaceholderNewerURL, newerURL,
		PlaceholderOlderURL, olderURL,
	).Replace(page)
}

func (r *Renderer) RenderFullArticlePage(model models.FullArticlePageModel) string {
	return strings.NewReplacer(
		PlaceholderHeader, model.Article.Header,
		PlaceholderDate, r.formatDate(model.Article.Date),
		PlaceholderContent, model.Article.ContentHTML,
	).Replace(r.templates.FullArticle)
}

// formatDate renders "d MMM yyyy" with the renderer's locale.
func (r *Renderer) formatDate(date time.Time) string {
	return fmt.Sprintf("%d %s %04d", date.Day(), r.locale.MonthAbbreviated(date.Month()), date.Year())
}

func ArticleURL(id uuid.UUID) string {
	return "/news/fullarticle/" + url.PathEscape(id.String())
}

func IndexURL(pageIndex int, year *int) string {
	query := url.Values{}
	query.Set("pageIndex", strconv.Itoa(pageIndex))
	if year != nil {
		query.Set("year", strconv.Itoa(*year))
	}
	return "/news?" + query.Encode()
}

// omitEmptyLinks drops every template line that references a link placeholder
// whose value is empty, so the page never carries an anchor without a target.
func omitEmptyLinks(template string, links map[string]string) string {
	lines := strings.Split(template, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if referencesEmptyLink(line, links) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func referencesEmptyLink(line string, links map[string]string) bool {
	for placeholder, value := range links {
		if value == "" && strings.Contains(line, placeholder) {
			return true
		}
	}
	return false
}
