package client

import (
	"context"
	"strings"
	"sync"
)

// ListPhase tracks the lifecycle of the cached collection.
type ListPhase int

const (
	ListIdle ListPhase = iota
	ListLoading
	ListReady
	ListFailed
)

// State is a point-in-time snapshot of the store, safe for the UI to read
// while mutations run on other goroutines.
type State struct {
	Todos            []Todo
	Phase            ListPhase
	ListError        string
	DraftTitle       string
	DraftDescription string
	Creating         bool
	CreateError      string
	DeleteError      string
	PendingDeleteID  string
	PendingUpdateID  string
	UpdateErrors     map[string]string
}

// Store caches one user's todo collection and tracks per-mutation pending
// and error state. Every successful mutation invalidates the cache by
// refetching the whole collection; no in-place patching is attempted.
type Store struct {
	mu  sync.Mutex
	api *Client

	todos            []Todo
	phase            ListPhase
	listErr          string
	draftTitle       string
	draftDescription string
	creating         bool
	createErr        string
	deleteErr        string
	pendingDeleteID  string
	pendingUpdateID  string
	updateErrs       map[string]string
}

func NewStore(api *Client) *Store {
	return &Store{
		api:        api,
		updateErrs: make(map[string]string),
	}
}

// State returns a snapshot with copied slice and map contents.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]Todo, len(s.todos))
	copy(todos, s.todos)
	updateErrs := make(map[string]string, len(s.updateErrs))
	for id, msg := range s.updateErrs {
		updateErrs[id] = msg
	}

	return State{
		Todos:            todos,
		Phase:            s.phase,
		ListError:        s.listErr,
		DraftTitle:       s.draftTitle,
		DraftDescription: s.draftDescription,
		Creating:         s.creating,
		CreateError:      s.createErr,
		DeleteError:      s.deleteErr,
		PendingDeleteID:  s.pendingDeleteID,
		PendingUpdateID:  s.pendingUpdateID,
		UpdateErrors:     updateErrs,
	}
}

// SetDraft records the form input for the next create.
func (s *Store) SetDraft(title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftTitle = title
	s.draftDescription = description
}

// Refresh refetches the collection. On failure the previous cached todos
// stay visible and only the error flag changes.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.phase = ListLoading
	s.mu.Unlock()

	todos, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = ListFailed
		s.listErr = err.Error()
		return err
	}
	s.todos = todos
	s.phase = ListReady
	s.listErr = ""
	return nil
}

// CreateFromDraft submits the drafted todo. It refuses to submit when the
// trimmed title is empty or a create is already in flight. On success the
// draft and any create error are cleared and the list is refetched; on
// failure the draft is retained so nothing typed is lost.
func (s *Store) CreateFromDraft(ctx context.Context) error {
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return nil
	}
	title := strings.TrimSpace(s.draftTitle)
	if title == "" {
		s.createErr = "Title is required"
		s.mu.Unlock()
		return nil
	}
	description := strings.TrimSpace(s.draftDescription)
	s.creating = true
	s.mu.Unlock()

	params := CreateTodoParams{Title: title}
	if description != "" {
		params.Description = &description
	}
	_, err := s.api.Create(ctx, params)

	s.mu.Lock()
	s.creating = false
	if err != nil {
		s.createErr = err.Error()
		s.mu.Unlock()
		return err
	}
	s.draftTitle = ""
	s.draftDescription = ""
	s.createErr = ""
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Update applies a partial update to one todo. Errors are recorded per id so
// two rows' unacknowledged errors never clear each other.
func (s *Store) Update(ctx context.Context, id string, params UpdateTodoParams) error {
	s.mu.Lock()
	s.pendingUpdateID = id
	delete(s.updateErrs, id)
	s.mu.Unlock()

	_, err := s.api.Update(ctx, id, params)

	s.mu.Lock()
	if s.pendingUpdateID == id {
		s.pendingUpdateID = ""
	}
	if err != nil {
		s.updateErrs[id] = err.Error()
		s.mu.Unlock()
		return err
	}
	delete(s.updateErrs, id)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Toggle flips the completion state of the cached todo with the given id.
func (s *Store) Toggle(ctx context.Context, id string) error {
	s.mu.Lock()
	var completed *bool
	for i := range s.todos {
		if s.todos[i].ID == id {
			next := !s.todos[i].Completed
			completed = &next
			break
		}
	}
	s.mu.Unlock()

	if completed == nil {
		return nil
	}
	return s.Update(ctx, id, UpdateTodoParams{Completed: completed})
}

// Delete removes one todo. The pending id drives the per-row spinner; the
// row returns to normal whatever the outcome.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.pendingDeleteID = id
	s.mu.Unlock()

	_, err := s.api.Delete(ctx, id)

	s.mu.Lock()
	if s.pendingDeleteID == id {
		s.pendingDeleteID = ""
	}
	if err != nil {
		s.deleteErr = err.Error()
		s.mu.Unlock()
		return err
	}
	s.deleteErr = ""
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// DismissCreateError acknowledges the create banner.
func (s *Store) DismissCreateError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = ""
}

// DismissDeleteError acknowledges the delete banner.
func (s *Store) DismissDeleteError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = ""
}

// DismissUpdateError acknowledges one row's error, leaving other rows'
// errors untouched.
func (s *Store) DismissUpdateError(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updateErrs, id)
}
