package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ErrHistoryDisabled is returned by the history command when history.enabled is off
var ErrHistoryDisabled = errors.New("history is disabled")

var historyBucket = []byte("history")

// HistoryEntry records one session selection
type HistoryEntry struct {
	SessionID  string    `json:"session_id"`
	Label      string    `json:"label"`
	SelectedAt time.Time `json:"selected_at"`
}

// HistoryStore keeps recent selections, newest last in key order. A session
// appears at most once.
type HistoryStore struct {
	db *bbolt.DB
}

func OpenHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create history bucket: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Fixed-width RFC 3339 so keys sort chronologically
const historyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// historyKey is "<UTC timestamp>:<session id>"
func historyKey(t time.Time, sessionID string) []byte {
	return []byte(t.UTC().Format(historyTimeFormat) + ":" + sessionID)
}

// keySessionID splits after the timestamp. Session ids may contain ':',
// the timestamp's own colons come first.
func keySessionID(key []byte) []byte {
	z := bytes.IndexByte(key, 'Z')
	if z < 0 || z+1 >= len(key) || key[z+1] != ':' {
		return nil
	}
	return key[z+2:]
}

func deleteSession(b *bbolt.Bucket, sessionID string) error {
	id := []byte(sessionID)
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if bytes.Equal(keySessionID(k), id) {
			return c.Delete()
		}
	}
	return nil
}

// Add records entry, replacing any older entry for the same session, and
// trims the bucket to limit entries (limit <= 0 keeps everything)
func (s *HistoryStore) Add(entry HistoryEntry, limit int) error {
	if entry.SelectedAt.IsZero() {
		entry.SelectedAt = time.Now()
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket)

		if err := deleteSession(b, entry.SessionID); err != nil {
			return err
		}

		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("error serializing history entry: %w", err)
		}
		if err := b.Put(historyKey(entry.SelectedAt, entry.SessionID), value); err != nil {
			return err
		}

		if limit <= 0 {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, bytes.Clone(k))
		}
		for i := 0; i < len(keys)-limit; i++ {
			if err := b.Delete(keys[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(entries) < limit); k, v = c.Prev() {
			var entry HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("error deserializing history entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}
