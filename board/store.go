// Package board holds the in-memory board state store. Every mutation is
// serialized through one lock and replaces the whole board, so readers only
// ever observe complete snapshots.
package board

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const (
	opAddColumn         = "add-column"
	opUpdateColumnTitle = "update-column-title"
	opDeleteColumn      = "delete-column"
	opAddCard           = "add-card"
	opUpdateCard        = "update-card"
	opDeleteCard        = "delete-card"
	opMoveCard          = "move-card"
)

// Store owns the single board of a session.
type Store struct {
	mu       sync.RWMutex
	current  domain.Snapshot
	newID    func() string
	logger   *log.Logger
	watchers map[int]chan domain.Snapshot
	nextSub  int
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the identifier generator. Ids must be unique for
// the lifetime of the store.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used for mutation tracing.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store holding a copy of seed.
func New(seed domain.Board, opts ...Option) *Store {
	s := &Store{
		newID:    uuid.NewString,
		logger:   log.StandardLogger(),
		watchers: map[int]chan domain.Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = domain.Snapshot{Board: seed.Clone()}
	return s
}

// Snapshot returns a deep copy of the current board and its version.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Version: s.current.Version, Board: s.current.Board.Clone()}
}

// Version returns the current snapshot version without copying the board.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Version
}

// AddColumn appends an empty column and returns its id. The title is not
// validated here.
func (s *Store) AddColumn(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := domain.Column{ID: s.newID(), Title: title, Cards: []domain.Card{}}
	next := s.current.Board.Clone()
	next.Columns = append(next.Columns, col)
	s.commit(opAddColumn, next, log.Fields{"column": col.ID})
	return col.ID
}

// UpdateColumnTitle renames a column. Unknown ids are a no-op.
func (s *Store) UpdateColumnTitle(columnID, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.current.Board.ColumnIndex(columnID)
	if idx < 0 {
		s.noop(opUpdateColumnTitle, log.Fields{"column": columnID})
		return false
	}
	next := s.current.Board.Clone()
	next.Columns[idx].Title = title
	s.commit(opUpdateColumnTitle, next, log.Fields{"column": columnID})
	return true
}

// DeleteColumn removes a column together with its cards.
func (s *Store) DeleteColumn(columnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.current.Board.ColumnIndex(columnID)
	if idx < 0 {
		s.noop(opDeleteColumn, log.Fields{"column": columnID})
		return false
	}
	next := s.current.Board.Clone()
	removed := len(next.Columns[idx].Cards)
	next.Columns = slices.Delete(next.Columns, idx, idx+1)
	s.commit(opDeleteColumn, next, log.Fields{"column": columnID, "cards_removed": removed})
	return true
}

// AddCard appends a card with an empty description and no labels to the
// column. It returns the new id, or false when the column does not exist.
func (s *Store) AddCard(columnID, title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.current.Board.ColumnIndex(columnID)
	if idx < 0 {
		s.noop(opAddCard, log.Fields{"column": columnID})
		return "", false
	}
	card := domain.Card{ID: s.newID(), Title: title, Description: "", Labels: []string{}}
	next := s.current.Board.Clone()
	next.Columns[idx].Cards = append(next.Columns[idx].Cards, card)
	s.commit(opAddCard, next, log.Fields{"column": columnID, "card": card.ID})
	return card.ID, true
}

// UpdateCard merges the provided fields into the card. A patch that leaves
// the card unchanged is a no-op.
func (s *Store) UpdateCard(columnID, cardID string, patch domain.CardPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	colIdx, cardIdx := s.locate(columnID, cardID)
	if cardIdx < 0 || patch.Empty() {
		s.noop(opUpdateCard, log.Fields{"column": columnID, "card": cardID})
		return false
	}
	current := s.current.Board.Columns[colIdx].Cards[cardIdx]
	updated := patch.Apply(current)
	if updated.Equal(current) {
		s.noop(opUpdateCard, log.Fields{"column": columnID, "card": cardID})
		return false
	}
	next := s.current.Board.Clone()
	next.Columns[colIdx].Cards[cardIdx] = updated
	s.commit(opUpdateCard, next, log.Fields{"column": columnID, "card": cardID})
	return true
}

// DeleteCard removes a card from its column.
func (s *Store) DeleteCard(columnID, cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	colIdx, cardIdx := s.locate(columnID, cardID)
	if cardIdx < 0 {
		s.noop(opDeleteCard, log.Fields{"column": columnID, "card": cardID})
		return false
	}
	next := s.current.Board.Clone()
	next.Columns[colIdx].Cards = slices.Delete(next.Columns[colIdx].Cards, cardIdx, cardIdx+1)
	s.commit(opDeleteCard, next, log.Fields{"column": columnID, "card": cardID})
	return true
}

// MoveCard removes the card from fromColumnID and appends it to the end of
// toColumnID. The card is looked up in the source column only: when the
// caller's view of its location is stale, or either column is unknown, the
// board is left unchanged. Moving within one column sends the card to the
// end of that column.
func (s *Store) MoveCard(fromColumnID, toColumnID, cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := log.Fields{"from": fromColumnID, "to": toColumnID, "card": cardID}
	fromIdx, cardIdx := s.locate(fromColumnID, cardID)
	toIdx := s.current.Board.ColumnIndex(toColumnID)
	if cardIdx < 0 || toIdx < 0 {
		s.noop(opMoveCard, fields)
		return false
	}
	next := s.current.Board.Clone()
	card := next.Columns[fromIdx].Cards[cardIdx]
	next.Columns[fromIdx].Cards = slices.Delete(next.Columns[fromIdx].Cards, cardIdx, cardIdx+1)
	next.Columns[toIdx].Cards = append(next.Columns[toIdx].Cards, card)
	s.commit(opMoveCard, next, fields)
	return true
}

// locate returns the column and card positions; cardIdx is -1 when either
// is missing. Caller holds s.mu.
func (s *Store) locate(columnID, cardID string) (colIdx, cardIdx int) {
	colIdx = s.current.Board.ColumnIndex(columnID)
	if colIdx < 0 {
		return -1, -1
	}
	return colIdx, s.current.Board.Columns[colIdx].CardIndex(cardID)
}

// commit swaps in next as the current board and notifies watchers. Caller
// holds s.mu for writing.
func (s *Store) commit(op string, next domain.Board, fields log.Fields) {
	s.current = domain.Snapshot{Version: s.current.Version + 1, Board: next}
	fields["op"] = op
	fields["version"] = s.current.Version
	s.logger.WithFields(fields).Debug("board.mutation")
	s.notify()
}

func (s *Store) noop(op string, fields log.Fields) {
	fields["op"] = op
	fields["version"] = s.current.Version
	s.logger.WithFields(fields).Debug("board.mutation.noop")
}
