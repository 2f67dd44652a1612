// Package journal owns the in-memory record collections. Every mutation
// goes through the Store and is followed by a replace-all flush to the
// persistence backend; no other component mutates the collections.
package journal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gaocuixia/running-journal/internal/models"
	"github.com/gaocuixia/running-journal/internal/persist"
)

// ChangeFunc is notified after a successful single-record mutation.
// kind is one of "created", "updated", "deleted"; collection is
// "article" or "event".
type ChangeFunc func(kind, collection string, id int64)

// Store holds both record collections in insertion order.
//
// Flush failures are logged and deliberately not rolled back: the
// in-memory state stays mutated and the next successful flush catches
// up. A flush error must never take the application down.
type Store struct {
	backend persist.Backend
	logger  *slog.Logger

	mu       sync.Mutex
	articles []models.Article
	events   []models.Event
	onChange ChangeFunc
}

// New creates a Store backed by the given persistence backend.
func New(backend persist.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// OnChange registers the record-change callback. Call before serving.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load populates the collections from the backend. Called once at
// startup before any mutation.
func (s *Store) Load() error {
	snap, err := s.backend.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.articles = snap.Articles
	s.events = snap.Events
	s.mu.Unlock()
	return nil
}

// ReplaceAll swaps in an externally loaded snapshot without flushing.
// Used by the file watcher when the blob changes on disk.
func (s *Store) ReplaceAll(snap persist.Snapshot) {
	s.mu.Lock()
	s.articles = snap.Articles
	s.events = snap.Events
	s.mu.Unlock()
}

// Snapshot returns a copy of both collections in storage order.
func (s *Store) Snapshot() persist.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.Snapshot{
		Articles: append([]models.Article(nil), s.articles...),
		Events:   append([]models.Event(nil), s.events...),
	}
}

// Articles returns a copy of the article collection in storage order.
func (s *Store) Articles() []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.articles...)
}

// Events returns a copy of the event collection in storage order.
func (s *Store) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Event(nil), s.events...)
}

// EventIDs returns the set of event ids currently in use, for import id
// minting.
func (s *Store) EventIDs() map[int64]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int64]struct{}, len(s.events))
	for _, e := range s.events {
		ids[e.ID] = struct{}{}
	}
	return ids
}

// AddArticle inserts a new article at the front of the collection,
// minting an id when none is set, and flushes.
func (s *Store) AddArticle(a models.Article) models.Article {
	s.mu.Lock()
	if a.ID == 0 {
		a.ID = s.mintIDLocked()
	}
	s.articles = append([]models.Article{a}, s.articles...)
	s.flushLocked()
	s.mu.Unlock()
	s.notify("created", "article", a.ID)
	return a
}

// UpdateArticle replaces the fields of the article with the given id,
// keeping the id. A missing id is a no-op reported as false.
func (s *Store) UpdateArticle(id int64, a models.Article) bool {
	s.mu.Lock()
	found := false
	for i := range s.articles {
		if s.articles[i].ID == id {
			a.ID = id
			s.articles[i] = a
			found = true
			break
		}
	}
	if found {
		s.flushLocked()
	}
	s.mu.Unlock()
	if found {
		s.notify("updated", "article", id)
	}
	return found
}

// RemoveArticle deletes the article with the given id. A missing id is
// a no-op reported as false.
func (s *Store) RemoveArticle(id int64) bool {
	s.mu.Lock()
	found := false
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.flushLocked()
	}
	s.mu.Unlock()
	if found {
		s.notify("deleted", "article", id)
	}
	return found
}

// AddEvent inserts a new event at the front of the collection, minting
// an id when none is set, and flushes.
func (s *Store) AddEvent(e models.Event) models.Event {
	s.mu.Lock()
	if e.ID == 0 {
		e.ID = s.mintIDLocked()
	}
	s.events = append([]models.Event{e}, s.events...)
	s.flushLocked()
	s.mu.Unlock()
	s.notify("created", "event", e.ID)
	return e
}

// UpdateEvent replaces the fields of the event with the given id,
// keeping the id. A missing id is a no-op reported as false.
func (s *Store) UpdateEvent(id int64, e models.Event) bool {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			e.ID = id
			s.events[i] = e
			found = true
			break
		}
	}
	if found {
		s.flushLocked()
	}
	s.mu.Unlock()
	if found {
		s.notify("updated", "event", id)
	}
	return found
}

// RemoveEvent deletes the event with the given id. A missing id is a
// no-op reported as false.
func (s *Store) RemoveEvent(id int64) bool {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.flushLocked()
	}
	s.mu.Unlock()
	if found {
		s.notify("deleted", "event", id)
	}
	return found
}

// AppendEvents appends an already-validated import batch to the end of
// the event collection with a single flush. Ids were minted by the
// normalizer; they are trusted here.
func (s *Store) AppendEvents(batch []models.Event) int {
	if len(batch) == 0 {
		return 0
	}
	s.mu.Lock()
	s.events = append(s.events, batch...)
	s.flushLocked()
	s.mu.Unlock()
	for _, e := range batch {
		s.notify("created", "event", e.ID)
	}
	return len(batch)
}

// MergeImport appends incoming records from a JSON import to both
// collections. A record whose id collides with an existing one gets a
// freshly minted id; existing records are never overwritten. Returns
// the total number of records imported.
func (s *Store) MergeImport(articles []models.Article, events []models.Event) int {
	s.mu.Lock()

	articleIDs := make(map[int64]struct{}, len(s.articles))
	for _, a := range s.articles {
		articleIDs[a.ID] = struct{}{}
	}
	for _, a := range articles {
		if _, taken := articleIDs[a.ID]; taken || a.ID == 0 {
			a.ID = s.mintIDLocked()
		}
		articleIDs[a.ID] = struct{}{}
		s.articles = append(s.articles, a)
	}

	eventIDs := make(map[int64]struct{}, len(s.events))
	for _, e := range s.events {
		eventIDs[e.ID] = struct{}{}
	}
	for _, e := range events {
		if _, taken := eventIDs[e.ID]; taken || e.ID == 0 {
			e.ID = s.mintIDLocked()
		}
		eventIDs[e.ID] = struct{}{}
		s.events = append(s.events, e)
	}

	count := len(articles) + len(events)
	if count > 0 {
		s.flushLocked()
	}
	s.mu.Unlock()
	return count
}

// mintIDLocked returns a millisecond-timestamp id unique across both
// collections. Same-millisecond mints increment past each other.
func (s *Store) mintIDLocked() int64 {
	taken := make(map[int64]struct{}, len(s.articles)+len(s.events))
	for _, a := range s.articles {
		taken[a.ID] = struct{}{}
	}
	for _, e := range s.events {
		taken[e.ID] = struct{}{}
	}
	id := time.Now().UnixMilli()
	for {
		if _, exists := taken[id]; !exists {
			return id
		}
		id++
	}
}

// flushLocked pushes the current state to the backend. Errors are
// logged, never propagated: durability failed but the in-memory journal
// stays usable.
func (s *Store) flushLocked() {
	snap := persist.Snapshot{
		Articles: append([]models.Article(nil), s.articles...),
		Events:   append([]models.Event(nil), s.events...),
	}
	if err := s.backend.Flush(snap); err != nil {
		s.logger.Error("journal: flush failed, in-memory state retained",
			slog.String("error", err.Error()))
	}
}

func (s *Store) notify(kind, collection string, id int64) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(kind, collection, id)
	}
}
