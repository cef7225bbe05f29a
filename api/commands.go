package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"kanban-api/domain"
)

var errMissingData = errors.New("missing data")

// operation invokes one store mutation and reports the id it created, if
// any, and whether the board changed.
type operation func(BoardStore) (id string, applied bool)

type validator interface {
	Validate() error
}

// parseCommand decodes and validates a command without touching the store.
func parseCommand(cmd domain.Command) (operation, error) {
	switch cmd.Type {
	case domain.AddColumn:
		d, err := decodeData[domain.AddColumnData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return s.AddColumn(d.Title), true
		}, nil
	case domain.UpdateColumnTitle:
		d, err := decodeData[domain.UpdateColumnTitleData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return "", s.UpdateColumnTitle(d.ColumnID, d.Title)
		}, nil
	case domain.DeleteColumn:
		d, err := decodeData[domain.DeleteColumnData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return "", s.DeleteColumn(d.ColumnID)
		}, nil
	case domain.AddCard:
		d, err := decodeData[domain.AddCardData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return s.AddCard(d.ColumnID, d.Title)
		}, nil
	case domain.UpdateCard:
		d, err := decodeData[domain.UpdateCardData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return "", s.UpdateCard(d.ColumnID, d.CardID, d.CardPatch)
		}, nil
	case domain.DeleteCard:
		d, err := decodeData[domain.DeleteCardData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return "", s.DeleteCard(d.ColumnID, d.CardID)
		}, nil
	case domain.MoveCard:
		d, err := decodeData[domain.MoveCardData](cmd.Data)
		if err != nil {
			return nil, err
		}
		return func(s BoardStore) (string, bool) {
			return "", s.MoveCard(d.FromColumnID, d.ToColumnID, d.CardID)
		}, nil
	default:
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownCommand, cmd.Type)
	}
}

func decodeData[T validator](raw sonic.NoCopyRawMessage) (T, error) {
	var d T
	if len(bytes.TrimSpace(raw)) == 0 {
		return d, errMissingData
	}
	dec := sonic.ConfigStd.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return d, fmt.Errorf("invalid data: %w", err)
	}
	return d, d.Validate()
}
