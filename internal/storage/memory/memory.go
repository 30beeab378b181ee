package memory

import (
	"context"
	"sync"

	"codeberg.org/askdocs/server/internal/storage"
)

// in-process store for tests and local experiments
type Store struct {
	mu      sync.RWMutex
	records []storage.Record
	answers []storage.AnswerRecord
	nextSeq int64
	name    string
}

func New(name string) *Store {
	return &Store{name: name}
}

func (s *Store) Identity() string {
	return "memory." + s.name
}

func (s *Store) EnsureSchema(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) InsertRecords(_ context.Context, records []storage.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.nextSeq++
		r.Seq = s.nextSeq
		r.Embedding = cloneVector(r.Embedding)
		s.records = append(s.records, r)
	}

	return len(records), nil
}

func (s *Store) PendingRecords(_ context.Context, after int64, limit int) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.Record

	for _, r := range s.records {
		if len(out) == limit {
			break
		}

		if r.Seq <= after || len(r.Embedding) > 0 {
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

func (s *Store) SetEmbedding(_ context.Context, id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id && len(s.records[i].Embedding) == 0 {
			s.records[i].Embedding = cloneVector(embedding)
			return nil
		}
	}

	return nil
}

func (s *Store) Nearest(_ context.Context, embedding []float32, minContentChars, topK int) ([]storage.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return storage.RankRecords(s.records, embedding, minContentChars, topK), nil
}

func (s *Store) InsertAnswer(_ context.Context, rec storage.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append(s.answers, rec)
	return nil
}

func (s *Store) CountRecords(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

func (s *Store) ClearRecords(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// snapshot of every stored record
func (s *Store) Records() []storage.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Record, len(s.records))
	copy(out, s.records)
	return out
}

// snapshot of the audit log
func (s *Store) Answers() []storage.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

func cloneVector(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	out := make([]float32, len(v))
	copy(out, v)
	return out
}
