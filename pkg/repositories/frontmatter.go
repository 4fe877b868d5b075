package repositories

import (
	"bad-news/pkg/models"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFrontMatter splits an article file into its front matter and body.
// YAML is fenced by "---", TOML by "+++"; a file starting with "{" is a JSON
// document whose "content" key holds the body.
func ParseFrontMatter(content []byte) (map[string]interface{}, string, string, error) {
	str := normalizeLineEndings(string(content))

	if fm, body, ok := splitFenced(str, "---"); ok {
		var parsed map[string]interface{}
		if err := yaml.Unmarshal([]byte(fm), &parsed); err != nil {
			return nil, "", "", fmt.Errorf("yaml front matter: %w", err)
		}
		return parsed, body, "yaml", nil
	}
	if fm, body, ok := splitFenced(str, "+++"); ok {
		var parsed map[string]interface{}
		if err := toml.Unmarshal([]byte(fm), &parsed); err != nil {
			return nil, "", "", fmt.Errorf("toml front matter: %w", err)
		}
		return parsed, body, "toml", nil
	}
	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		var parsed map[string]interface{}
		if err := json.Unmarshal(content, &parsed); err != nil {
			return nil, "", "", fmt.Errorf("json front matter: %w", err)
		}
		body, _ := parsed["content"].(string)
		delete(parsed, "content")
		return parsed, strings.TrimSpace(body), "json", nil
	}

	return nil, "", "", fmt.Errorf("unknown format")
}

// splitFenced cuts the block between an opening fence line and the next line
// that is exactly the fence. The block may be empty.
func splitFenced(str, fence string) (string, string, bool) {
	if !strings.HasPrefix(str, fence+"\n") {
		return "", "", false
	}
	rest := str[len(fence)+1:]
	pos := 0
	for pos <= len(rest) {
		line, _, found := strings.Cut(rest[pos:], "\n")
		if strings.TrimRight(line, " \t") == fence {
			next := pos + len(line)
			if found {
				next++
			}
			return rest[:pos], strings.TrimSpace(rest[next:]), true
		}
		if !found {
			break
		}
		pos += len(line) + 1
	}
	return "", "", false
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}

// articleFromFrontMatter maps front matter keys onto an Article. A missing id
// is derived from the file path so it stays stable across reloads; a missing
// creation time falls back to modTime.
func articleFromFrontMatter(fm map[string]interface{}, body, relPath string, modTime time.Time) (models.Article, error) {
	article := models.Article{
		Header:      firstString(fm, "header", "title"),
		Teaser:      firstString(fm, "teaser", "description", "summary"),
		ContentHTML: body,
	}

	if raw, ok := fm["id"]; ok {
		id, err := uuid.Parse(fmt.Sprint(raw))
		if err != nil {
			return models.Article{}, fmt.Errorf("invalid id %q: %w", raw, err)
		}
		article.ID = id
	} else {
		article.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("news/"+relPath))
	}

	rawDate, ok := fm["date"]
	if !ok {
		return models.Article{}, fmt.Errorf("date is required")
	}
	date, err := parseFrontMatterTime(rawDate)
	if err != nil {
		return models.Article{}, fmt.Errorf("invalid date: %w", err)
	}
	article.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	article.CreatedAt = modTime.UTC()
	if rawCreated, ok := fm["created"]; ok {
		created, err := parseFrontMatterTime(rawCreated)
		if err != nil {
			return models.Article{}, fmt.Errorf("invalid created: %w", err)
		}
		article.CreatedAt = created.UTC()
	}

	// "published" wins over Hugo's "draft"; with neither the article stays hidden.
	if raw, ok := fm["published"]; ok {
		if article.IsPublished, err = parseFrontMatterBool(raw); err != nil {
			return models.Article{}, fmt.Errorf("invalid published: %w", err)
		}
	} else if raw, ok := fm["draft"]; ok {
		draft, err := parseFrontMatterBool(raw)
		if err != nil {
			return models.Article{}, fmt.Errorf("invalid draft: %w", err)
		}
		article.IsPublished = !draft
	}

	return article, nil
}

func firstString(fm map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := fm[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func parseFrontMatterTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case toml.LocalDate:
		return v.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return v.AsTime(time.UTC), nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unsupported date %q", v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", value)
	}
}

func parseFrontMatterBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
}
