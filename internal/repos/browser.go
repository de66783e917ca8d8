// Package repos is the repository browser: search, visibility counts and
// pagination over the user's repositories.
package repos

import (
	"fmt"
	"strings"
	"time"

	"github.com/forklift-dev/forklift/internal/api"
)

// DefaultPerPage is the page size when none is configured.
const DefaultPerPage = 30

// Stats counts the repositories matching the current search.
type Stats struct {
	Total   int
	Public  int
	Private int
}

// Browser holds a fetched repository list and the view over it.
type Browser struct {
	all      []api.Repository
	filtered []api.Repository
	query    string
	page     int
	perPage  int
}

// NewBrowser creates a browser on page 1. perPage <= 0 uses DefaultPerPage.
func NewBrowser(repos []api.Repository, perPage int) *Browser {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	b := &Browser{all: repos, perPage: perPage, page: 1}
	b.Search("")
	return b
}

// Search filters by name, description or language, ignoring case, and
// returns to page 1.
func (b *Browser) Search(query string) {
	b.query = strings.ToLower(strings.TrimSpace(query))
	b.page = 1
	if b.query == "" {
		b.filtered = b.all
		return
	}

	b.filtered = make([]api.Repository, 0, len(b.all))
	for _, r := range b.all {
		if strings.Contains(strings.ToLower(r.Name), b.query) ||
			strings.Contains(strings.ToLower(r.Description), b.query) ||
			strings.Contains(strings.ToLower(r.Language), b.query) {
			b.filtered = append(b.filtered, r)
		}
	}
}

// Stats returns visibility counts over the search results.
func (b *Browser) Stats() Stats {
	s := Stats{Total: len(b.filtered)}
	for _, r := range b.filtered {
		if r.Private {
			s.Private++
		} else {
			s.Public++
		}
	}
	return s
}

// TotalPages is zero when nothing matches.
func (b *Browser) TotalPages() int {
	return (len(b.filtered) + b.perPage - 1) / b.perPage
}

// Page returns the current page number.
func (b *Browser) Page() int { return b.page }

// SetPage moves to page n, clamped to the valid range.
func (b *Browser) SetPage(n int) {
	b.page = max(1, min(n, b.TotalPages()))
}

// Next moves forward a page. It reports whether the page changed.
func (b *Browser) Next() bool {
	if b.page >= b.TotalPages() {
		return false
	}
	b.page++
	return true
}

// Prev moves back a page. It reports whether the page changed.
func (b *Browser) Prev() bool {
	if b.page <= 1 {
		return false
	}
	b.page--
	return true
}

// Items returns the repositories on the current page.
func (b *Browser) Items() []api.Repository {
	start := (b.page - 1) * b.perPage
	if start >= len(b.filtered) {
		return nil
	}
	end := min(start+b.perPage, len(b.filtered))
	return b.filtered[start:end]
}

// PageInfo is the pagination caption.
func (b *Browser) PageInfo() string {
	total := b.TotalPages()
	if total == 0 {
		return "No repositories found"
	}
	return fmt.Sprintf("Page %d of %d", b.page, total)
}

// TimeAgo renders how long before now t was, in the coarsest whole unit.
// Months are 30 days and years 365.
func TimeAgo(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return fmt.Sprintf("%d minutes ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	case secs < 2592000:
		return fmt.Sprintf("%d days ago", secs/86400)
	case secs < 31536000:
		return fmt.Sprintf("%d months ago", secs/2592000)
	default:
		return fmt.Sprintf("%d years ago", secs/31536000)
	}
}

// DefaultLanguageColor is used for languages without a known colour.
const DefaultLanguageColor = "#6B7280"

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#2b7489",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"PHP":        "#4F5D95",
	"Ruby":       "#701516",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"C++":        "#f34b7d",
	"C#":         "#239120",
	"Swift":      "#ffac45",
	"Kotlin":     "#7F52FF",
	"Dart":       "#00B4AB",
}

// LanguageColor returns the GitHub linguist colour for language.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return DefaultLanguageColor
}
