package fetch

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry describes one cached document.
type Entry struct {
	Source    string    `db:"source" json:"source"`
	Size      int64     `db:"size" json:"size"`
	SHA256    string    `db:"sha256" json:"sha256"`
	FetchedAt time.Time `db:"fetched_at" json:"fetchedAt"`
}

type documentRow struct {
	Entry
	Body []byte `db:"body"`
}

// Cache is an in-memory SQLite store of fetched documents keyed by source.
// Nothing is written to disk.
type Cache struct {
	db *sqlx.DB
}

// NewCache opens an empty in-memory cache.
func NewCache() (*Cache, error) {
	db, err := openMemDB()
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// openMemDB creates an in-memory SQLite database with the documents schema.
// A single connection keeps every query on the same private database.
func openMemDB() (*sqlx.DB, error) {
	dsn := "file::memory:?_pragma=temp_store(2)&_pragma=journal_mode(off)&_pragma=synchronous(off)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			source     text PRIMARY KEY,
			body       blob NOT NULL,
			size       integer NOT NULL,
			sha256     text NOT NULL,
			fetched_at timestamp NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return db, nil
}

// Get returns the cached body for source.
func (c *Cache) Get(source string) ([]byte, bool, error) {
	var body []byte
	err := c.db.Get(&body, "SELECT body FROM documents WHERE source = ?", source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached %s: %w", source, err)
	}
	return body, true, nil
}

// Put stores body for source, replacing any previous entry.
func (c *Cache) Put(source string, body []byte) error {
	sum := sha256.Sum256(body)
	row := documentRow{
		Entry: Entry{
			Source:    source,
			Size:      int64(len(body)),
			SHA256:    hex.EncodeToString(sum[:]),
			FetchedAt: time.Now().UTC(),
		},
		Body: body,
	}
	_, err := c.db.NamedExec(`
		INSERT OR REPLACE INTO documents (source, body, size, sha256, fetched_at)
		VALUES (:source, :body, :size, :sha256, :fetched_at)
	`, row)
	if err != nil {
		return fmt.Errorf("caching %s: %w", source, err)
	}
	return nil
}

// Entries lists cached documents ordered by source.
func (c *Cache) Entries() ([]Entry, error) {
	entries := []Entry{}
	if err := c.db.Select(&entries, "SELECT source, size, sha256, fetched_at FROM documents ORDER BY source"); err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	return entries, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
