// Package mistakes keeps the durable, id-deduplicated list of questions the
// learner answered wrong. The list is stored as a single JSON document and
// overwritten as a whole on every change.
package mistakes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/question"
)

// BlobKey is the key the mistake list is stored under.
const BlobKey = "eiken_mistakes"

// Mistake is a copy of a missed question plus the time it was first missed.
type Mistake struct {
	question.Question
	Timestamp time.Time `json:"timestamp"`
}

// BlobStore is the key-value persistence the list is written to.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store is the in-memory mistake list backed by a BlobStore.
// It is not safe for concurrent use.
type Store struct {
	blobs  BlobStore
	list   []Mistake
	ids    map[string]bool
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for mistake timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Load reads the persisted list. A missing blob is an empty list; a blob
// that does not decode is an error and is left untouched.
func Load(ctx context.Context, blobs BlobStore, opts ...Option) (*Store, error) {
	s := &Store{
		blobs:  blobs,
		ids:    make(map[string]bool),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := blobs.Get(ctx, BlobKey)
	if err != nil {
		return nil, fmt.Errorf("load mistakes: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var list []Mistake
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode mistake list: %w", err)
	}
	for _, m := range list {
		if s.ids[m.ID] {
			s.logger.Warn("duplicate mistake entry dropped", zap.String("question_id", m.ID))
			continue
		}
		s.ids[m.ID] = true
		s.list = append(s.list, m)
	}

	s.logger.Debug("mistakes loaded", zap.Int("count", len(s.list)))
	return s, nil
}

// Record appends a copy of q unless a mistake with the same id is already
// stored, then persists the whole list. It reports whether q was added.
//
// When persisting fails the entry stays in memory and the error is
// returned; the next successful Record writes it out.
func (s *Store) Record(ctx context.Context, q question.Question) (bool, error) {
	if s.ids[q.ID] {
		return false, nil
	}

	s.ids[q.ID] = true
	s.list = append(s.list, Mistake{
		Question:  q.Clone(),
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	})

	if err := s.persist(ctx); err != nil {
		s.logger.Error("persist mistakes", zap.String("question_id", q.ID), zap.Error(err))
		return true, err
	}
	s.logger.Info("mistake saved", zap.String("question_id", q.ID), zap.Int("count", len(s.list)))
	return true, nil
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.list)
	if err != nil {
		return fmt.Errorf("encode mistake list: %w", err)
	}
	if err := s.blobs.Put(ctx, BlobKey, data); err != nil {
		return fmt.Errorf("save mistake list: %w", err)
	}
	return nil
}

// List returns a copy of the stored mistakes in insertion order.
func (s *Store) List() []Mistake {
	out := make([]Mistake, len(s.list))
	for i, m := range s.list {
		out[i] = Mistake{Question: m.Question.Clone(), Timestamp: m.Timestamp}
	}
	return out
}

// Questions returns the stored mistakes as plain questions, in insertion
// order, for a review session.
func (s *Store) Questions() []question.Question {
	out := make([]question.Question, len(s.list))
	for i, m := range s.list {
		out[i] = m.Question.Clone()
	}
	return out
}

// Get returns the mistake with the given id.
func (s *Store) Get(id string) (Mistake, bool) {
	for _, m := range s.list {
		if m.ID == id {
			return Mistake{Question: m.Question.Clone(), Timestamp: m.Timestamp}, true
		}
	}
	return Mistake{}, false
}

// Len returns the number of stored mistakes.
func (s *Store) Len() int {
	return len(s.list)
}

// Contains reports whether a mistake with the given id is stored.
func (s *Store) Contains(id string) bool {
	return s.ids[id]
}
