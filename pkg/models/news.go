package models

// IndexPageModel is one page of the news listing.
type IndexPageModel struct {
	PageArticles []ArticleSummary `json:"page_articles"`
	PageIndex    int              `json:"page_index"`
	Year         *int             `json:"year,omitempty"` // Active year filter, kept in navigation links
	IsFirst      bool             `json:"is_first"`
	IsLast       bool             `json:"is_last"`
}

type FullArticlePageModel struct {
	Article Article `json:"article"`
}
