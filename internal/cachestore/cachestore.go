// Package cachestore is the response cache of the interception layer: a set
// of named caches, each mapping a request URL to a stored HTTP response.
// It lives in its own SQLite database, apart from the content tables.
package cachestore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// ErrUnavailable is returned by writes when no cache database is open.
var ErrUnavailable = errors.New("response cache unavailable")

// Entry is one stored response.
type Entry struct {
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Response rebuilds an *http.Response for req from the entry.
func (e *Entry) Response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Storage holds every named cache.
type Storage struct {
	db *sql.DB
}

// New creates a Storage over db. A nil db yields a storage that never hits.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Open returns the named cache, creating it if needed.
func (s *Storage) Open(ctx context.Context, name string) (*Cache, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO caches (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", name, err)
	}
	return &Cache{name: name, db: s.db}, nil
}

// Keys lists the names of every existing cache.
func (s *Storage) Keys(ctx context.Context) []string {
	names := []string{}
	if s.db == nil {
		return names
	}
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM caches ORDER BY created_at, name")
	if err != nil {
		log.Printf("cachestore: list caches: %v", err)
		return names
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Printf("cachestore: scan cache name: %v", err)
			continue
		}
		names = append(names, name)
	}
	return names
}

// Delete removes a cache and all of its entries. It reports whether the cache existed.
func (s *Storage) Delete(ctx context.Context, name string) (bool, error) {
	if s.db == nil {
		return false, ErrUnavailable
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete cache %s: %w", name, err)
	}
	defer tx.Rollback()
	// Entries cascade only on connections with foreign keys enabled.
	if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE cache_name = ?", name); err != nil {
		return false, fmt.Errorf("delete entries of %s: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM caches WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete cache %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete cache %s: %w", name, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Cache is one named cache.
type Cache struct {
	name string
	db   *sql.DB
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// Put stores e under its URL, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, e *Entry) error {
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("encode header of %s: %w", e.URL, err)
	}
	storedAt := e.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (cache_name, url, status, header, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_name, url) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		c.name, e.URL, e.Status, string(header), e.Body, storedAt)
	if err != nil {
		return fmt.Errorf("put %s into %s: %w", e.URL, c.name, err)
	}
	return nil
}

// Match returns the entry stored for url, or nil.
func (c *Cache) Match(ctx context.Context, url string) *Entry {
	return scanEntry(c.db.QueryRowContext(ctx,
		"SELECT url, status, header, body, stored_at FROM cache_entries WHERE cache_name = ? AND url = ?", c.name, url))
}

// Delete removes the entry for url.
func (c *Cache) Delete(ctx context.Context, url string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE cache_name = ? AND url = ?", c.name, url); err != nil {
		return fmt.Errorf("delete %s from %s: %w", url, c.name, err)
	}
	return nil
}

// Entries lists the URLs stored in the cache.
func (c *Cache) Entries(ctx context.Context) []string {
	urls := []string{}
	rows, err := c.db.QueryContext(ctx, "SELECT url FROM cache_entries WHERE cache_name = ? ORDER BY url", c.name)
	if err != nil {
		log.Printf("cachestore: list entries of %s: %v", c.name, err)
		return urls
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func scanEntry(row *sql.Row) *Entry {
	var e Entry
	var header string
	if err := row.Scan(&e.URL, &e.Status, &header, &e.Body, &e.StoredAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("cachestore: read entry: %v", err)
		}
		return nil
	}
	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		log.Printf("cachestore: decode header of %s: %v", e.URL, err)
		e.Header = make(http.Header)
	}
	return &e
}
