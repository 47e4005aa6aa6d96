// Package token issues and tracks the ephemeral scan tokens embedded in
// dashboard QR codes. A token is bound to (user, calendar day), lives only
// in memory and is replaced every time the dashboard is opened.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
)

// tokenBytes is the entropy of a scan token before encoding.
const tokenBytes = 16

// Generate returns a cryptographically random, URL-safe token string.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Record associates one issued token with its owner and issue day.
type Record struct {
	UserID uint
	Token  string
	Date   string // YYYY-MM-DD
}

// Store keeps at most one live token per user. Issuing overwrites any
// prior token for that user; lookups for a day other than the stored one
// evict the record, so day rollover invalidates tokens implicitly.
type Store struct {
	mu      sync.Mutex
	records map[uint]Record
}

func NewStore() *Store {
	return &Store{records: make(map[uint]Record)}
}

// Put registers a freshly issued token for the user, replacing any
// previous one.
func (s *Store) Put(userID uint, tok, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = Record{UserID: userID, Token: tok, Date: date}
}

// Get returns the live token record for the user on the given day. A
// record stored for a different day is stale: it is removed and reported
// as missing.
func (s *Store) Get(userID uint, date string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return Record{}, false
	}
	if rec.Date != date {
		delete(s.records, userID)
		return Record{}, false
	}
	return rec, true
}
