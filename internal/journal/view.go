package journal

import (
	"sort"
	"time"

	"github.com/gaocuixia/running-journal/internal/models"
)

// CategoryAll bypasses category filtering.
const CategoryAll = "all"

// FilterArticlesByCategory returns the articles matching category.
// CategoryAll (or empty) returns the input unfiltered.
func FilterArticlesByCategory(articles []models.Article, category string) []models.Article {
	if category == "" || category == CategoryAll {
		return articles
	}
	var out []models.Article
	for _, a := range articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// FilterEventsByCategory returns the events matching category, with the
// same CategoryAll bypass.
func FilterEventsByCategory(events []models.Event, category string) []models.Event {
	if category == "" || category == CategoryAll {
		return events
	}
	var out []models.Event
	for _, e := range events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// SortArticlesByDate returns a new slice ordered by calendar date.
// The sort is stable so equal dates keep their relative order across
// repeated toggles; the input slice is never reordered.
func SortArticlesByDate(articles []models.Article, ascending bool) []models.Article {
	out := append([]models.Article(nil), articles...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := parseDate(out[i].Date), parseDate(out[j].Date)
		if ascending {
			return di.Before(dj)
		}
		return dj.Before(di)
	})
	return out
}

// SortEventsByDate is SortArticlesByDate for events.
func SortEventsByDate(events []models.Event, ascending bool) []models.Event {
	out := append([]models.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := parseDate(out[i].Date), parseDate(out[j].Date)
		if ascending {
			return di.Before(dj)
		}
		return dj.Before(di)
	})
	return out
}

// parseDate interprets a stored YYYY-MM-DD date; malformed values sort
// as the zero time rather than failing.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
