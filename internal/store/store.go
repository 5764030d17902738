// Package store keeps a history of selector runs in a BoltDB file.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"putransform/internal/transform"
)

const runsBucket = "runs"

var ErrNotFound = errors.New("store: run not found")

// Run is the persisted summary of one selector run. Scores are kept so a
// run can be re-exported without retraining.
type Run struct {
	ID         uint64         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Source     string         `json:"source"`
	Seed       int64          `json:"seed"`
	Instances  int            `json:"instances"`
	Features   int            `json:"features"`
	Best       string         `json:"best"`
	AUC        float64        `json:"auc_pu"`
	Candidates []CandidateAUC `json:"candidates"`
	Scores     []*float64     `json:"scores,omitempty"`
}

type CandidateAUC struct {
	Name    string  `json:"name"`
	Trainer string  `json:"trainer"`
	AUC     float64 `json:"auc_pu"`
}

// NewRun summarises rep for storage.
func NewRun(source string, seed int64, X [][]float64, rep transform.Report) Run {
	r := Run{
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Seed:      seed,
		Instances: len(X),
		Best:      rep.Best,
		AUC:       rep.AUC,
		Scores:    Nullable(rep.Scores),
	}
	if len(X) > 0 { r.Features = len(X[0]) }
	for _, c := range rep.Candidates {
		r.Candidates = append(r.Candidates, CandidateAUC{Name: c.Name, Trainer: string(c.Trainer), AUC: c.AUC})
	}
	return r
}

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil { return nil }
	return s.db.Close()
}

// Save assigns the next sequence number to r and stores it.
func (s *Store) Save(r Run) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		r.ID = seq
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		id = seq
		return b.Put(key(seq), raw)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Get(id uint64) (Run, error) {
	var r Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(runsBucket)).Get(key(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &r)
	})
	return r, err
}

// Recent returns up to limit runs, newest first, without their scores.
func (s *Store) Recent(limit int) ([]Run, error) {
	var out []Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(out) < limit); k, v = c.Prev() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal run %d: %w", binary.BigEndian.Uint64(k), err)
			}
			r.Scores = nil
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Nullable maps NaN scores to nil so they encode as JSON null.
func Nullable(scores []float64) []*float64 {
	out := make([]*float64, len(scores))
	for i := range scores {
		if !math.IsNaN(scores[i]) {
			v := scores[i]
			out[i] = &v
		}
	}
	return out
}

func key(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}
