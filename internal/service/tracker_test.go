package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsai/internal/model"
	svcMocks "docsai/internal/service/mocks"
)

func newTestTracker(t *testing.T) (*Tracker, *documentService) {
	t.Helper()
	svc, _ := newMemoryService(t)
	return NewTracker(svc, nil), svc
}

func recordEvents(tr *Tracker) *[]Event {
	var events []Event
	tr.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestTracker_LoadHydratesBuffer(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.CreateWithContent(ctx, "Spec", "hello")
	events := recordEvents(tr)

	require.NoError(t, tr.Load(ctx, doc.ID))

	st := tr.State(ctx)
	assert.Equal(t, doc.ID, st.ActiveID)
	assert.Equal(t, "hello", st.Content)
	assert.Equal(t, "Spec", st.Title)
	assert.Equal(t, "Spec - AI Text Editor", st.WindowTitle)
	assert.Equal(t, "/documents/"+doc.ID, st.Location)
	assert.False(t, st.Dirty)
	require.Len(t, *events, 1)
	assert.Equal(t, EventLoaded, (*events)[0].Type)
}

func TestTracker_LoadUnknownLeavesState(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.CreateWithContent(ctx, "Spec", "hello")
	require.NoError(t, tr.Load(ctx, doc.ID))

	err := tr.Load(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, doc.ID, tr.ActiveID())
}

func TestTracker_LoadFlushesDirtyBuffer(t *testing.T) {
	ctx := context.Background()
	docs := new(svcMocks.MockDocumentService)
	a := &model.Document{ID: "a", Title: "A", Content: "a0"}
	b := &model.Document{ID: "b", Title: "B", Content: "b0"}
	docs.On("Get", ctx, "a").Return(a, nil)
	docs.On("Get", ctx, "b").Return(b, nil)
	tr := NewTracker(docs, nil)

	require.NoError(t, tr.Load(ctx, "a"))
	docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

	// First write fails, leaving the buffer dirty.
	docs.On("Update", ctx, "a", model.DocumentPatch{Content: strPtr("a1")}).Return(errors.New("disk full")).Once()
	assert.Error(t, tr.OnContentChange(ctx, "a1"))
	assert.True(t, tr.State(ctx).Dirty)

	docs.On("Update", ctx, "a", model.DocumentPatch{Content: strPtr("a1")}).Return(nil).Once()
	require.NoError(t, tr.Load(ctx, "b"))

	assert.Equal(t, "b", tr.ActiveID())
	assert.Equal(t, "b0", tr.State(ctx).Content)
	docs.AssertNumberOfCalls(t, "Update", 2)
}

func TestTracker_OnContentChange(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)

	// No active document: held in memory only.
	require.NoError(t, tr.OnContentChange(ctx, "draft"))
	all, _ := svc.List(ctx)
	assert.Empty(t, all)
	assert.True(t, tr.State(ctx).Dirty)

	doc, _ := svc.Create(ctx, "Spec")
	require.NoError(t, tr.Load(ctx, doc.ID))
	require.NoError(t, tr.OnContentChange(ctx, "typed"))

	got, _ := svc.Get(ctx, doc.ID)
	assert.Equal(t, "typed", got.Content)
	assert.Greater(t, got.LastModified, doc.LastModified)
	assert.False(t, tr.State(ctx).Dirty)
}

func TestTracker_OnContentChangeActiveRemoved(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.Create(ctx, "Spec")
	require.NoError(t, tr.Load(ctx, doc.ID))
	require.NoError(t, svc.Delete(ctx, doc.ID))

	require.NoError(t, tr.OnContentChange(ctx, "still here"))

	st := tr.State(ctx)
	assert.Empty(t, st.ActiveID)
	assert.Equal(t, "still here", st.Content)
	assert.True(t, st.Dirty)
}

func TestTracker_LoadContent(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.CreateWithContent(ctx, "Spec", "x")
	require.NoError(t, tr.Load(ctx, doc.ID))
	events := recordEvents(tr)

	tr.LoadContent("")

	st := tr.State(ctx)
	assert.Empty(t, st.ActiveID)
	assert.Empty(t, st.Content)
	assert.Equal(t, "AI Text Editor", st.WindowTitle)
	assert.Equal(t, "/documents", st.Location)
	require.Len(t, *events, 1)
	assert.Equal(t, EventCleared, (*events)[0].Type)
}

func TestTracker_Rename(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	active, _ := svc.Create(ctx, "Spec")
	other, _ := svc.Create(ctx, "Other")
	require.NoError(t, tr.Load(ctx, active.ID))
	events := recordEvents(tr)

	require.NoError(t, tr.Rename(ctx, other.ID, "Renamed"))
	assert.Empty(t, *events)

	require.NoError(t, tr.Rename(ctx, active.ID, "Plan"))
	require.Len(t, *events, 1)
	assert.Equal(t, EventRenamed, (*events)[0].Type)
	assert.Equal(t, "Plan - AI Text Editor", (*events)[0].State.WindowTitle)

	require.NoError(t, tr.Rename(ctx, active.ID, "   "))
	got, _ := svc.Get(ctx, active.ID)
	assert.Equal(t, "Untitled 1", got.Title)

	assert.NoError(t, tr.Rename(ctx, "missing", "x"))
}

func TestTracker_SaveWithoutActiveCreates(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	require.NoError(t, tr.OnContentChange(ctx, "draft"))

	doc, err := tr.Save(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, "Untitled 1", doc.Title)
	assert.Equal(t, "draft", doc.Content)
	assert.Equal(t, doc.ID, tr.ActiveID())
	stored, _ := svc.Get(ctx, doc.ID)
	assert.Equal(t, *doc, *stored)
}

func TestTracker_SaveActiveUpdates(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.Create(ctx, "Spec")
	require.NoError(t, tr.Load(ctx, doc.ID))
	require.NoError(t, tr.OnContentChange(ctx, "body"))

	saved, err := tr.Save(ctx, "Final")

	require.NoError(t, err)
	assert.Equal(t, doc.ID, saved.ID)
	assert.Equal(t, "Final", saved.Title)
	assert.Equal(t, "body", saved.Content)

	saved, err = tr.Save(ctx, " ")
	require.NoError(t, err)
	assert.Equal(t, "Final", saved.Title)
}

func TestTracker_NewDocumentKeepsUnsaved(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	require.NoError(t, tr.OnContentChange(ctx, "unsaved work"))

	require.NoError(t, tr.NewDocument(ctx))

	all, _ := svc.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "unsaved work", all[0].Content)
	assert.Equal(t, "Untitled 1", all[0].Title)
	st := tr.State(ctx)
	assert.Empty(t, st.ActiveID)
	assert.Empty(t, st.Content)
}

func TestTracker_NewDocumentBlankBuffer(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	require.NoError(t, tr.OnContentChange(ctx, "  \n"))

	require.NoError(t, tr.NewDocument(ctx))

	all, _ := svc.List(ctx)
	assert.Empty(t, all)
}

func TestTracker_DeleteActiveReassigns(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	older, _ := svc.CreateWithContent(ctx, "Older", "o")
	newer, _ := svc.CreateWithContent(ctx, "Newer", "n")
	active, _ := svc.CreateWithContent(ctx, "Active", "a")
	require.NoError(t, tr.Load(ctx, active.ID))
	events := recordEvents(tr)

	require.NoError(t, tr.Delete(ctx, active.ID))

	st := tr.State(ctx)
	assert.Equal(t, newer.ID, st.ActiveID)
	assert.Equal(t, "n", st.Content)
	require.Len(t, *events, 1)
	assert.Equal(t, EventDeleted, (*events)[0].Type)
	assert.Equal(t, active.ID, (*events)[0].DocumentID)

	require.NoError(t, tr.Delete(ctx, newer.ID))
	assert.Equal(t, older.ID, tr.ActiveID())

	require.NoError(t, tr.Delete(ctx, older.ID))
	st = tr.State(ctx)
	assert.Empty(t, st.ActiveID)
	assert.Empty(t, st.Content)
}

func TestTracker_DeleteInactiveKeepsSelection(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	active, _ := svc.Create(ctx, "Active")
	other, _ := svc.Create(ctx, "Other")
	require.NoError(t, tr.Load(ctx, active.ID))

	require.NoError(t, tr.Delete(ctx, other.ID))

	assert.Equal(t, active.ID, tr.ActiveID())
}

// Whatever is deleted, the tracker never points at a missing document.
func TestTracker_NeverStale(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	var ids []string
	for i := 0; i < 5; i++ {
		d, _ := svc.Create(ctx, "")
		ids = append(ids, d.ID)
	}
	require.NoError(t, tr.Load(ctx, ids[2]))

	for _, id := range []string{ids[2], ids[4], ids[0], ids[3], ids[1]} {
		require.NoError(t, svc.Delete(ctx, id))
		require.NoError(t, tr.DocumentDeleted(ctx, id))

		if active := tr.ActiveID(); active != "" {
			_, err := svc.Get(ctx, active)
			assert.NoError(t, err)
		}
	}
	assert.Empty(t, tr.ActiveID())
}

func TestTracker_Navigate(t *testing.T) {
	ctx := context.Background()
	tr, svc := newTestTracker(t)
	doc, _ := svc.CreateWithContent(ctx, "Spec", "hello")

	require.NoError(t, tr.Navigate(ctx, "/documents/"+doc.ID))
	assert.Equal(t, doc.ID, tr.ActiveID())
	assert.Equal(t, "/documents/"+doc.ID, tr.Location())

	require.NoError(t, tr.Navigate(ctx, "/documents/"))
	assert.Empty(t, tr.ActiveID())
	assert.Equal(t, "/documents", tr.Location())

	assert.ErrorIs(t, tr.Navigate(ctx, "/elsewhere"), ErrInvalidLocation)
	assert.ErrorIs(t, tr.Navigate(ctx, "/documents/missing"), ErrNotFound)
}

func TestTracker_SubscribeCancel(t *testing.T) {
	tr, _ := newTestTracker(t)
	count := 0
	cancel := tr.Subscribe(func(Event) { count++ })

	tr.LoadContent("a")
	cancel()
	cancel()
	tr.LoadContent("b")

	assert.Equal(t, 1, count)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/documents", want: ""},
		{path: "/documents/", want: ""},
		{path: "/documents/abc", want: "abc"},
		{path: "/documents/abc?tab=1", want: "abc"},
		{path: "/documents/a%20b", want: "a b"},
		{path: "/documents/a/b", wantErr: true},
		{path: "/", wantErr: true},
		{path: "/documentsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseLocation(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationFor(t *testing.T) {
	assert.Equal(t, "/documents", LocationFor(""))
	assert.Equal(t, "/documents/a%20b", LocationFor("a b"))

	id, err := ParseLocation(LocationFor("x/y"))
	require.NoError(t, err)
	assert.Equal(t, "x/y", id)
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "AI Text Editor", WindowTitle(""))
	assert.Equal(t, "Spec - AI Text Editor", WindowTitle("Spec"))
}
