// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/vidplay-cli/vidplay/media"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/util"
)

// listItem implements the list.Item interface for a library video.
type listItem struct {
	record media.Record
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() string {
	return t.record.DisplayName
}

// Description renders size, type and date added.
func (t *listItem) Description() string {
	parts := []string{util.FormatBytes(t.record.SizeBytes)}
	if t.record.MimeType != "" {
		parts = append(parts, t.record.MimeType)
	}
	if !t.record.AddedAt.IsZero() {
		parts = append(parts, t.record.AddedAt.Format("2006-01-02"))
	}

	return lipgloss.NewStyle().Foreground(style.FaintColor).Render(strings.Join(parts, " • "))
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	return t.record.DisplayName
}

func recordItems(records []media.Record) []list.Item {
	return lo.Map(records, func(r media.Record, _ int) list.Item {
		return &listItem{record: r}
	})
}

// fuzzyFilter ranks list entries the same way media.Filter matches them.
func fuzzyFilter(term string, targets []string) []list.Rank {
	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) list.Rank {
		return list.Rank{Index: r.OriginalIndex}
	})
}
