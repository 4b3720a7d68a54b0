package store

import (
	"sort"
	"strings"
	"time"

	"github.com/plainpress/server/types"
)

// dateLayouts are the calendar formats accepted in the free-form date field.
// Layouts with seconds also accept a trailing fractional second.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDate orders articles most recent first. Articles whose date cannot be
// parsed go after all dated ones. Equal dates keep their input order.
func SortByDate(articles []types.Article) {
	type key struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]key, len(articles))
	for _, article := range articles {
		at, ok := parseDate(article.Date)
		keys[article.ID] = key{at: at, ok: ok}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		a, b := keys[articles[i].ID], keys[articles[j].ID]
		switch {
		case a.ok && b.ok:
			return a.at.After(b.at)
		case a.ok != b.ok:
			return a.ok
		default:
			return false
		}
	})
}
