package domain

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	AddColumn         = "add-column"
	UpdateColumnTitle = "update-column-title"
	DeleteColumn      = "delete-column"
	AddCard           = "add-card"
	UpdateCard        = "update-card"
	DeleteCard        = "delete-card"
	MoveCard          = "move-card"
)

// Command represents a write request against the board.
type Command struct {
	IdempotencyKey string                 `json:"idempotencyKey,omitempty"`
	Type           string                 `json:"type"`
	Data           sonic.NoCopyRawMessage `json:"data,omitempty"`
}

type AddColumnData struct {
	Title string `json:"title"`
}

type UpdateColumnTitleData struct {
	ColumnID string `json:"columnId"`
	Title    string `json:"title"`
}

type DeleteColumnData struct {
	ColumnID string `json:"columnId"`
}

type AddCardData struct {
	ColumnID string `json:"columnId"`
	Title    string `json:"title"`
}

type UpdateCardData struct {
	ColumnID string `json:"columnId"`
	CardID   string `json:"cardId"`
	CardPatch
}

type DeleteCardData struct {
	ColumnID string `json:"columnId"`
	CardID   string `json:"cardId"`
}

type MoveCardData struct {
	FromColumnID string `json:"fromColumnId"`
	ToColumnID   string `json:"toColumnId"`
	CardID       string `json:"cardId"`
}

// Validate rejects blank titles.
func (d AddColumnData) Validate() error {
	return checkTitle(d.Title)
}

func (d UpdateColumnTitleData) Validate() error {
	if err := checkIDs("columnId", d.ColumnID); err != nil {
		return err
	}
	return checkTitle(d.Title)
}

func (d DeleteColumnData) Validate() error {
	return checkIDs("columnId", d.ColumnID)
}

func (d AddCardData) Validate() error {
	if err := checkIDs("columnId", d.ColumnID); err != nil {
		return err
	}
	return checkTitle(d.Title)
}

// Validate requires both ids and rejects an explicit blank title. An absent
// title is fine: the card keeps its current one.
func (d UpdateCardData) Validate() error {
	if err := checkIDs("columnId", d.ColumnID, "cardId", d.CardID); err != nil {
		return err
	}
	if d.Title != nil {
		return checkTitle(*d.Title)
	}
	return nil
}

func (d DeleteCardData) Validate() error {
	return checkIDs("columnId", d.ColumnID, "cardId", d.CardID)
}

func (d MoveCardData) Validate() error {
	return checkIDs("fromColumnId", d.FromColumnID, "toColumnId", d.ToColumnID, "cardId", d.CardID)
}

func checkTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrBlankTitle
	}
	return nil
}

// checkIDs takes name/value pairs.
func checkIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingID, pairs[i])
		}
	}
	return nil
}
