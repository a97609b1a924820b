// Package storage keeps uploaded documents in memory for the lifetime of an editing session.
package storage

import (
	"bytes"
	"errors"
	"sync"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no document has the requested id
var ErrNotFound = errors.New("document not found")

// DocumentStore holds documents in upload order.
// Readers get deep copies; all mutation goes through Update.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]*domain.Document
	order []string
}

// NewDocumentStore creates an empty store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

// GenerateID returns a fresh document id
func GenerateID() string {
	return uuid.NewString()
}

// Add stores a document. An existing document with the same id is replaced in place.
func (s *DocumentStore) Add(doc *domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
}

// Get returns a copy of the document
func (s *DocumentStore) Get(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, ErrNotFound
	}
	return copyDocument(doc), nil
}

// Checkout returns a copy of the document that owns its image bytes, for
// callers that keep reading the image after releasing the store. Removing the
// document zeroes only the stored image, never the checked out one.
func (s *DocumentStore) Checkout(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, ErrNotFound
	}
	out := copyDocument(doc)
	out.Image = bytes.Clone(doc.Image)
	return out, nil
}

// List returns copies of every document in upload order
func (s *DocumentStore) List() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyDocument(s.docs[id]))
	}
	return out
}

// IDsWithStatus returns ids of documents currently in status, in upload order
func (s *DocumentStore) IDsWithStatus(status domain.Status) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if s.docs[id].Status == status {
			ids = append(ids, id)
		}
	}
	return ids
}

// Update runs fn against the stored document under the write lock.
// An error from fn is returned as is; the document keeps whatever fn changed.
func (s *DocumentStore) Update(id string, fn func(*domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	return fn(doc)
}

// Delete removes a document and wipes its image bytes
func (s *DocumentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	ZeroBytes(doc.Image)
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes every document and returns how many were dropped
func (s *DocumentStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.docs)
	for _, doc := range s.docs {
		ZeroBytes(doc.Image)
	}
	s.docs = make(map[string]*domain.Document)
	s.order = nil
	return n
}

// Len returns the number of stored documents
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// ZeroBytes overwrites a byte slice with zeros so uploaded images do not
// linger in memory after their document is gone.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// copyDocument deep-copies rows and issues. Image bytes are shared and get
// zeroed on removal; use Checkout to read them outside the lock.
func copyDocument(doc *domain.Document) domain.Document {
	out := *doc
	if doc.Rows != nil {
		out.Rows = make([]domain.Row, len(doc.Rows))
		for i, r := range doc.Rows {
			out.Rows[i] = r.Clone()
		}
	}
	if doc.Issues != nil {
		out.Issues = make([]domain.ValidationIssue, len(doc.Issues))
		copy(out.Issues, doc.Issues)
	}
	if doc.Quality != nil {
		q := *doc.Quality
		q.Operations = append([]string(nil), doc.Quality.Operations...)
		out.Quality = &q
	}
	if doc.Dimensions != nil {
		d := *doc.Dimensions
		out.Dimensions = &d
	}
	return out
}
