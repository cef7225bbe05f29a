package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func sampleBoard() Board {
	return Board{
		ID:    "b1",
		Title: "Board",
		Columns: []Column{
			{ID: "c1", Title: "To Do", Cards: []Card{
				{ID: "k1", Title: "Task A", Description: "first", Labels: []string{"x"}},
				{ID: "k2", Title: "Task B"},
			}},
			{ID: "c2", Title: "Done", Cards: []Card{}},
		},
	}
}

func TestBoardCloneIsDeep(t *testing.T) {
	orig := sampleBoard()
	clone := orig.Clone()
	if !reflect.DeepEqual(orig, clone) {
		t.Fatalf("clone differs from original: %#v", clone)
	}

	clone.Columns[0].Title = "changed"
	clone.Columns[0].Cards[0].Labels[0] = "y"
	clone.Columns[1].Cards = append(clone.Columns[1].Cards, Card{ID: "k3"})

	if orig.Columns[0].Title != "To Do" {
		t.Fatalf("column title leaked into original")
	}
	if orig.Columns[0].Cards[0].Labels[0] != "x" {
		t.Fatalf("labels leaked into original")
	}
	if len(orig.Columns[1].Cards) != 0 {
		t.Fatalf("cards leaked into original")
	}
}

func TestBoardClonePreservesNilSlices(t *testing.T) {
	b := Board{ID: "b", Columns: []Column{{ID: "c"}}}
	clone := b.Clone()
	if clone.Columns[0].Cards != nil {
		t.Fatalf("expected nil cards to stay nil")
	}
	if !reflect.DeepEqual(b, clone) {
		t.Fatalf("clone differs: %#v", clone)
	}
}

func TestBoardLookups(t *testing.T) {
	b := sampleBoard()
	if idx := b.ColumnIndex("c2"); idx != 1 {
		t.Fatalf("expected column index 1, got %d", idx)
	}
	if idx := b.ColumnIndex("missing"); idx != -1 {
		t.Fatalf("expected -1 for missing column, got %d", idx)
	}
	if idx := b.Columns[0].CardIndex("k2"); idx != 1 {
		t.Fatalf("expected card index 1, got %d", idx)
	}
	if col, ok := b.FindCard("k2"); !ok || col != "c1" {
		t.Fatalf("FindCard(k2) = %q, %v", col, ok)
	}
	if _, ok := b.FindCard("missing"); ok {
		t.Fatalf("expected missing card not to be found")
	}
	if n := b.CardCount(); n != 2 {
		t.Fatalf("expected 2 cards, got %d", n)
	}
}

func TestCardPatchApplyOnlyTouchesProvidedFields(t *testing.T) {
	card := Card{ID: "k1", Title: "old", Description: "desc", Labels: []string{"a"}}
	title := "new"

	got := CardPatch{Title: &title}.Apply(card)

	want := Card{ID: "k1", Title: "new", Description: "desc", Labels: []string{"a"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected card: %#v", got)
	}
	if card.Title != "old" {
		t.Fatalf("patch mutated input card")
	}
}

func TestCardPatchApplyNormalizesLabels(t *testing.T) {
	labels := []string{" bug ", "", "bug", "ui"}
	got := CardPatch{Labels: &labels}.Apply(Card{ID: "k"})
	if !reflect.DeepEqual(got.Labels, []string{"bug", "ui"}) {
		t.Fatalf("unexpected labels: %#v", got.Labels)
	}

	empty := []string{}
	cleared := CardPatch{Labels: &empty}.Apply(Card{ID: "k", Labels: []string{"a"}})
	if cleared.Labels == nil || len(cleared.Labels) != 0 {
		t.Fatalf("expected labels to be cleared, got %#v", cleared.Labels)
	}
}

func TestCardEqual(t *testing.T) {
	a := Card{ID: "k", Title: "t", Description: "d", Labels: []string{"x"}}
	if !a.Equal(a.Clone()) {
		t.Fatalf("expected clone to be equal")
	}
	if !(Card{ID: "k"}).Equal(Card{ID: "k", Labels: []string{}}) {
		t.Fatalf("expected nil and empty labels to be equal")
	}
	b := a.Clone()
	b.Labels = []string{"y"}
	if a.Equal(b) {
		t.Fatalf("expected different labels to differ")
	}
	if a.Equal(Card{ID: "k", Title: "t", Labels: []string{"x"}}) {
		t.Fatalf("expected different descriptions to differ")
	}
}

func TestCardPatchEmpty(t *testing.T) {
	if !(CardPatch{}).Empty() {
		t.Fatalf("expected zero patch to be empty")
	}
	d := ""
	if (CardPatch{Description: &d}).Empty() {
		t.Fatalf("expected patch with description not to be empty")
	}
}

func TestSnapshotMarshal(t *testing.T) {
	snap := Snapshot{Version: 3, Board: sampleBoard()}
	payload, err := sonic.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	s := string(payload)
	for _, want := range []string{`"version":3`, `"columns":[`, `"cards":[]`, `"labels":["x"]`, `"description":"first"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %s", want, s)
		}
	}
}

func TestCommandDataValidate(t *testing.T) {
	blank := "  "
	title := "ok"
	tests := []struct {
		name string
		data interface{ Validate() error }
		want error
	}{
		{name: "add column", data: AddColumnData{Title: "Backlog"}},
		{name: "add column blank", data: AddColumnData{Title: " \t"}, want: ErrBlankTitle},
		{name: "rename blank", data: UpdateColumnTitleData{ColumnID: "c", Title: ""}, want: ErrBlankTitle},
		{name: "rename missing id", data: UpdateColumnTitleData{Title: "x"}, want: ErrMissingID},
		{name: "delete column", data: DeleteColumnData{ColumnID: "c"}},
		{name: "add card blank", data: AddCardData{ColumnID: "c", Title: ""}, want: ErrBlankTitle},
		{name: "update card no title", data: UpdateCardData{ColumnID: "c", CardID: "k"}},
		{name: "update card title", data: UpdateCardData{ColumnID: "c", CardID: "k", CardPatch: CardPatch{Title: &title}}},
		{name: "update card blank title", data: UpdateCardData{ColumnID: "c", CardID: "k", CardPatch: CardPatch{Title: &blank}}, want: ErrBlankTitle},
		{name: "delete card missing card", data: DeleteCardData{ColumnID: "c"}, want: ErrMissingID},
		{name: "move", data: MoveCardData{FromColumnID: "a", ToColumnID: "b", CardID: "k"}},
		{name: "move missing target", data: MoveCardData{FromColumnID: "a", CardID: "k"}, want: ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateCardDataDecodesFlattenedPatch(t *testing.T) {
	var d UpdateCardData
	if err := sonic.Unmarshal([]byte(`{"columnId":"c","cardId":"k","description":"d"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Title != nil || d.Labels != nil {
		t.Fatalf("expected only description to be set: %#v", d)
	}
	if d.Description == nil || *d.Description != "d" {
		t.Fatalf("unexpected description: %#v", d.Description)
	}
}
