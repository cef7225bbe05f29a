package domain

import (
	"slices"
	"strings"
)

// Board is the single top-level aggregate of a session.
type Board struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
}

// Column is an ordered bucket of cards. Card order is display order.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// Card is a single work item on the board.
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// CardPatch carries a partial card update. Nil fields are left untouched.
type CardPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p CardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Labels == nil
}

// Snapshot is the board at one instant together with its version.
type Snapshot struct {
	Version uint64 `json:"version"`
	Board   Board  `json:"board"`
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := b
	if b.Columns != nil {
		out.Columns = make([]Column, len(b.Columns))
		for i, col := range b.Columns {
			out.Columns[i] = col.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the column.
func (c Column) Clone() Column {
	out := c
	if c.Cards != nil {
		out.Cards = make([]Card, len(c.Cards))
		for i, card := range c.Cards {
			out.Cards[i] = card.Clone()
		}
	}
	return out
}

// Equal reports whether two cards hold the same content. Nil and empty
// label slices compare equal.
func (c Card) Equal(o Card) bool {
	return c.ID == o.ID && c.Title == o.Title && c.Description == o.Description &&
		slices.Equal(c.Labels, o.Labels)
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	out.Labels = slices.Clone(c.Labels)
	return out
}

// ColumnIndex returns the position of the column with the given id or -1.
func (b Board) ColumnIndex(columnID string) int {
	return slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == columnID })
}

// CardIndex returns the position of the card with the given id or -1.
func (c Column) CardIndex(cardID string) int {
	return slices.IndexFunc(c.Cards, func(card Card) bool { return card.ID == cardID })
}

// FindCard returns the id of the column currently holding cardID.
func (b Board) FindCard(cardID string) (string, bool) {
	for _, col := range b.Columns {
		if col.CardIndex(cardID) >= 0 {
			return col.ID, true
		}
	}
	return "", false
}

// CardCount returns the number of cards across all columns.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// Apply merges the patch into a copy of the card.
func (p CardPatch) Apply(card Card) Card {
	out := card.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Labels != nil {
		out.Labels = NormalizeLabels(*p.Labels)
	}
	return out
}

// NormalizeLabels trims labels, drops blanks and removes duplicates while
// keeping the first occurrence order. The result is never nil.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
