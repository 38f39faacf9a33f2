package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"docsai/internal/model"
)

var ErrInvalidLocation = errors.New("invalid document location")

const (
	// LocationBase is the navigable path that means "no active document".
	LocationBase = "/documents"

	appTitle = "AI Text Editor"
)

// EventType names a tracker state change.
type EventType string

const (
	EventLoaded  EventType = "loaded"
	EventCleared EventType = "cleared"
	EventContent EventType = "content"
	EventRenamed EventType = "renamed"
	EventSaved   EventType = "saved"
	EventDeleted EventType = "deleted"
)

// Event is delivered to subscribers after the tracker state has changed.
type Event struct {
	Type       EventType    `json:"type"`
	DocumentID string       `json:"documentId,omitempty"`
	State      TrackerState `json:"state"`
}

// TrackerState is a snapshot of what the editor surface should show.
type TrackerState struct {
	ActiveID    string `json:"activeId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Dirty       bool   `json:"dirty"`
	Location    string `json:"location"`
	WindowTitle string `json:"windowTitle"`
}

// Tracker binds one editor surface to at most one document. It holds the
// active id and the editor buffer; the document itself stays in the store.
type Tracker struct {
	mu       sync.Mutex
	docs     DocumentService
	log      *zap.Logger
	activeID string
	content  string
	dirty    bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewTracker returns a tracker with no active document and an empty buffer.
func NewTracker(docs DocumentService, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		docs: docs,
		log:  log,
		subs: make(map[int]func(Event)),
	}
}

// WindowTitle is the browser tab title for a document title.
func WindowTitle(title string) string {
	if title == "" {
		return appTitle
	}
	return title + " - " + appTitle
}

// LocationFor maps a document id to its navigable path.
func LocationFor(id string) string {
	if id == "" {
		return LocationBase
	}
	return LocationBase + "/" + url.PathEscape(id)
}

// ParseLocation is the inverse of LocationFor. The bare base path yields "".
func ParseLocation(path string) (string, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == LocationBase {
		return "", nil
	}
	rest, ok := strings.CutPrefix(path, LocationBase+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", ErrInvalidLocation
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", ErrInvalidLocation
	}
	return id, nil
}

// Subscribe registers fn for state change events. The returned func removes it.
// Handlers run on the goroutine that made the change, after the tracker lock
// is released.
func (t *Tracker) Subscribe(fn func(Event)) (cancel func()) {
	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			t.subMu.Unlock()
		})
	}
}

func (t *Tracker) publish(ev Event) {
	t.subMu.Lock()
	handlers := make([]func(Event), 0, len(t.subs))
	for _, fn := range t.subs {
		handlers = append(handlers, fn)
	}
	t.subMu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// do runs fn under the tracker lock and publishes the event it returns.
func (t *Tracker) do(fn func() (*Event, error)) error {
	t.mu.Lock()
	ev, err := fn()
	t.mu.Unlock()

	if ev != nil {
		t.publish(*ev)
	}
	return err
}

// Load makes id the active document. A dirty buffer is flushed into the
// previously active document first. An unknown id returns ErrNotFound and
// leaves the tracker unchanged.
func (t *Tracker) Load(ctx context.Context, id string) error {
	return t.do(func() (*Event, error) {
		doc, err := t.docs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := t.flush(ctx); err != nil {
			return nil, err
		}

		t.activeID = doc.ID
		t.content = doc.Content
		t.dirty = false
		t.log.Debug("document_loaded", zap.String("document_id", doc.ID))
		return t.event(ctx, EventLoaded, doc.ID), nil
	})
}

// LoadContent clears the active document and replaces the buffer with content.
func (t *Tracker) LoadContent(content string) {
	_ = t.do(func() (*Event, error) {
		t.clear(content)
		return t.event(context.Background(), EventCleared, ""), nil
	})
}

// OnContentChange records an editor edit. With an active document the content
// is merged into the store immediately; otherwise it is held in memory until
// Save or NewDocument.
func (t *Tracker) OnContentChange(ctx context.Context, content string) error {
	return t.do(func() (*Event, error) {
		t.content = content
		if t.activeID == "" {
			t.dirty = hasText(content)
			return t.event(ctx, EventContent, ""), nil
		}

		t.dirty = true
		if _, err := t.docs.Get(ctx, t.activeID); errors.Is(err, ErrNotFound) {
			// Removed behind our back: keep the edit as unsaved content.
			t.log.Warn("active_document_missing", zap.String("document_id", t.activeID))
			t.activeID = ""
			t.dirty = hasText(content)
			return t.event(ctx, EventContent, ""), nil
		} else if err != nil {
			return nil, err
		}

		if err := t.docs.Update(ctx, t.activeID, model.DocumentPatch{Content: &content}); err != nil {
			return t.event(ctx, EventContent, t.activeID), err
		}
		t.dirty = false
		return t.event(ctx, EventContent, t.activeID), nil
	})
}

// Rename sets a document's title. A blank title becomes "Untitled N".
// Renaming the active document publishes the new window title.
func (t *Tracker) Rename(ctx context.Context, id, title string) error {
	return t.do(func() (*Event, error) {
		if err := t.docs.Update(ctx, id, model.DocumentPatch{Title: &title}); err != nil {
			return nil, err
		}
		if id != t.activeID {
			return nil, nil
		}
		return t.event(ctx, EventRenamed, id), nil
	})
}

// Save flushes the buffer into the active document, retitling it when title is
// not blank. Without an active document the buffer becomes a new document,
// which is then made active.
func (t *Tracker) Save(ctx context.Context, title string) (*model.Document, error) {
	var saved *model.Document
	err := t.do(func() (*Event, error) {
		if t.activeID == "" {
			doc, err := t.docs.CreateWithContent(ctx, title, t.content)
			if err != nil {
				return nil, err
			}
			t.activeID = doc.ID
			t.dirty = false
			saved = doc
			return t.event(ctx, EventSaved, doc.ID), nil
		}

		patch := model.DocumentPatch{Content: &t.content}
		if hasText(title) {
			patch.Title = &title
		}
		if err := t.docs.Update(ctx, t.activeID, patch); err != nil {
			return nil, err
		}
		doc, err := t.docs.Get(ctx, t.activeID)
		if err != nil {
			return nil, err
		}
		t.dirty = false
		saved = doc
		return t.event(ctx, EventSaved, doc.ID), nil
	})
	return saved, err
}

// NewDocument starts a fresh buffer. Unsaved non-blank content with no active
// document is first kept as a new document so it is not lost.
func (t *Tracker) NewDocument(ctx context.Context) error {
	return t.do(func() (*Event, error) {
		if t.activeID == "" && hasText(t.content) {
			doc, err := t.docs.CreateWithContent(ctx, "", t.content)
			if err != nil {
				return nil, err
			}
			t.log.Info("unsaved_content_kept", zap.String("document_id", doc.ID))
		} else if err := t.flush(ctx); err != nil {
			return nil, err
		}
		t.clear("")
		return t.event(ctx, EventCleared, ""), nil
	})
}

// Delete removes a document from the store and repairs the active selection.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.do(func() (*Event, error) {
		if err := t.docs.Delete(ctx, id); err != nil {
			return nil, err
		}
		return t.repair(ctx, id)
	})
}

// DocumentDeleted repairs the active selection after id was deleted elsewhere.
func (t *Tracker) DocumentDeleted(ctx context.Context, id string) error {
	return t.do(func() (*Event, error) {
		return t.repair(ctx, id)
	})
}

// Location returns the navigable path of the active document.
func (t *Tracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return LocationFor(t.activeID)
}

// Navigate loads the document named by path, or clears the editor for the
// bare base path.
func (t *Tracker) Navigate(ctx context.Context, path string) error {
	id, err := ParseLocation(path)
	if err != nil {
		return err
	}
	if id == "" {
		t.LoadContent("")
		return nil
	}
	return t.Load(ctx, id)
}

// ActiveID returns the active document id, or "" when none is bound.
func (t *Tracker) ActiveID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeID
}

// State returns a snapshot of the editor surface.
func (t *Tracker) State(ctx context.Context) TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(ctx)
}

// repair moves the selection off a deleted document: to the most recently
// modified remaining document, or to an empty buffer when none remain.
// Callers hold t.mu.
func (t *Tracker) repair(ctx context.Context, deletedID string) (*Event, error) {
	if deletedID != t.activeID {
		return t.event(ctx, EventDeleted, deletedID), nil
	}

	docs, err := t.docs.List(ctx)
	if err != nil {
		t.clear("")
		return t.event(ctx, EventDeleted, deletedID), err
	}
	for _, d := range Sorted(docs) {
		if d.ID == deletedID {
			continue
		}
		t.activeID = d.ID
		t.content = d.Content
		t.dirty = false
		return t.event(ctx, EventDeleted, deletedID), nil
	}
	t.clear("")
	return t.event(ctx, EventDeleted, deletedID), nil
}

// flush writes a dirty buffer into the active document. Callers hold t.mu.
func (t *Tracker) flush(ctx context.Context) error {
	if t.activeID == "" || !t.dirty {
		return nil
	}
	content := t.content
	if err := t.docs.Update(ctx, t.activeID, model.DocumentPatch{Content: &content}); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

func (t *Tracker) clear(content string) {
	t.activeID = ""
	t.content = content
	t.dirty = hasText(content)
}

func (t *Tracker) event(ctx context.Context, typ EventType, docID string) *Event {
	return &Event{Type: typ, DocumentID: docID, State: t.snapshot(ctx)}
}

// snapshot reads the active title from the store. Callers hold t.mu.
func (t *Tracker) snapshot(ctx context.Context) TrackerState {
	var title string
	if t.activeID != "" {
		if doc, err := t.docs.Get(ctx, t.activeID); err == nil {
			title = doc.Title
		}
	}
	return TrackerState{
		ActiveID:    t.activeID,
		Title:       title,
		Content:     t.content,
		Dirty:       t.dirty,
		Location:    LocationFor(t.activeID),
		WindowTitle: WindowTitle(title),
	}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
