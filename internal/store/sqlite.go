package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/canteenlab/mealqueue/internal/models"
)

// SQLite persists each state document as one JSON blob in a single table.
// Writes are synchronous: a Save that returns nil is on disk, which is what
// lets the in-memory state and the durable state stay interchangeable after
// a crash.
type SQLite struct {
	db *sql.DB
}

// New opens (or creates) the store at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// migrate creates the state table
func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// load reads one bucket's raw payload, returning ErrNotFound if it was
// never written
func (s *SQLite) load(ctx context.Context, bucket string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", bucket, err)
	}
	return payload, nil
}

// save overwrites one bucket's payload
func (s *SQLite) save(ctx context.Context, bucket string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (bucket, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		bucket, payload)
	if err != nil {
		return fmt.Errorf("save %s: %w", bucket, err)
	}
	return nil
}

// loadJSON decodes a bucket into out, leaving out untouched on ErrNotFound
func (s *SQLite) loadJSON(ctx context.Context, bucket string, out interface{}) error {
	payload, err := s.load(ctx, bucket)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

// saveJSON encodes v and overwrites the bucket
func (s *SQLite) saveJSON(ctx context.Context, bucket string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	return s.save(ctx, bucket, payload)
}

// LoadVotes returns all vote records in their persisted order.
// An unwritten bucket yields an empty ledger.
func (s *SQLite) LoadVotes(ctx context.Context) ([]models.VoteRecord, error) {
	var votes []models.VoteRecord
	if err := s.loadJSON(ctx, BucketVotes, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// SaveVotes overwrites the vote ledger document
func (s *SQLite) SaveVotes(ctx context.Context, votes []models.VoteRecord) error {
	if votes == nil {
		votes = []models.VoteRecord{}
	}
	return s.saveJSON(ctx, BucketVotes, votes)
}

// LoadQueue returns the queue document. An unwritten bucket yields an
// empty queue with empty history.
func (s *SQLite) LoadQueue(ctx context.Context) (models.QueueState, error) {
	state := models.QueueState{Queue: []models.DispenseJob{}, Completed: []models.DispenseJob{}}
	if err := s.loadJSON(ctx, BucketQueue, &state); err != nil {
		return models.QueueState{}, err
	}
	if state.Queue == nil {
		state.Queue = []models.DispenseJob{}
	}
	if state.Completed == nil {
		state.Completed = []models.DispenseJob{}
	}
	return state, nil
}

// SaveQueue overwrites the queue document
func (s *SQLite) SaveQueue(ctx context.Context, state models.QueueState) error {
	if state.Queue == nil {
		state.Queue = []models.DispenseJob{}
	}
	if state.Completed == nil {
		state.Completed = []models.DispenseJob{}
	}
	return s.saveJSON(ctx, BucketQueue, state)
}

// LoadStudents returns the student directory
func (s *SQLite) LoadStudents(ctx context.Context) ([]models.Student, error) {
	var list models.StudentList
	if err := s.loadJSON(ctx, BucketStudents, &list); err != nil {
		return nil, err
	}
	return list.Students, nil
}

// SaveStudents overwrites the student directory document
func (s *SQLite) SaveStudents(ctx context.Context, students []models.Student) error {
	if students == nil {
		students = []models.Student{}
	}
	return s.saveJSON(ctx, BucketStudents, models.StudentList{Students: students})
}

// LoadMenus returns the menu catalog
func (s *SQLite) LoadMenus(ctx context.Context) ([]models.Menu, error) {
	var list models.MenuList
	if err := s.loadJSON(ctx, BucketMenus, &list); err != nil {
		return nil, err
	}
	return list.Menus, nil
}

// SaveMenus overwrites the menu catalog document
func (s *SQLite) SaveMenus(ctx context.Context, menus []models.Menu) error {
	if menus == nil {
		menus = []models.Menu{}
	}
	return s.saveJSON(ctx, BucketMenus, models.MenuList{Menus: menus})
}
