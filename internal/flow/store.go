package flow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/flowmind/internal/analyzer"
	"github.com/raphaelgruber/flowmind/internal/models"
)

// ErrNotFound indicates the referenced entry, task or draft does not exist
// in this session. A connection endpoint that resolves to ErrNotFound is a
// dangling reference and must be rendered as unknown, never treated as fatal.
var ErrNotFound = errors.New("not found in session")

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDFunc replaces the unique-id generator.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithEventFunc registers a callback fired after each mutation. The callback
// runs with the store lock held and must not call back into the store.
func WithEventFunc(fn func(Event)) Option {
	return func(s *Store) { s.onEvent = fn }
}

// Store holds one user's session: entries, tasks, drafts and connections.
// All mutating operations are serialized by a single mutex so connection
// discovery always sees a consistent entry set (single-writer discipline).
// Nothing in here is persisted; the session lives and dies with the process.
type Store struct {
	mu    sync.Mutex
	clock func() time.Time
	newID func() string

	entries     []*models.Entry
	tasks       []*models.Task
	drafts      []*models.Entry // newest first
	connections []models.Connection

	onEvent func(Event)
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddResult reports what became of one analyzed input.
type AddResult struct {
	Entry       *models.Entry       `json:"entry"`
	Task        *models.Task        `json:"task,omitempty"`
	Draft       bool                `json:"draft"`
	Connections []models.Connection `json:"connections,omitempty"`
}

// AddEntry analyzes one input and either promotes it to a task (registering
// it in the connection index) or files it as a draft. The whole operation is
// atomic: no other insertion can interleave with the connection scan.
func (s *Store) AddEntry(text string) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	res, err := analyzer.Analyze(text, now)
	if err != nil {
		return AddResult{}, err
	}

	entry := &models.Entry{
		ID:           s.newID(),
		OriginalText: res.OriginalText,
		CleanText:    res.CleanText,
		DueDate:      res.DueDate,
		Category:     res.Category,
		Priority:     res.Priority,
		Keywords:     res.Keywords,
		Entities:     res.Entities,
		Details:      []models.Detail{},
		CreatedAt:    now,
		LastUpdated:  now,
	}

	if !entry.ShouldPromote() {
		s.drafts = append([]*models.Entry{entry}, s.drafts...)
		s.emit(Event{Kind: EventDraftFiled, Entry: copyEntry(entry), At: now})
		return AddResult{Entry: copyEntry(entry), Draft: true}, nil
	}

	task, connections := s.registerEntry(entry, now)
	return AddResult{Entry: copyEntry(entry), Task: task, Connections: connections}, nil
}

// registerEntry creates the task projection, runs connection discovery
// against the existing entries and appends everything. Caller holds the lock.
func (s *Store) registerEntry(entry *models.Entry, now time.Time) (*models.Task, []models.Connection) {
	task := &models.Task{
		ID:        s.newID(),
		EntryID:   entry.ID,
		Text:      entry.TaskText(),
		DueDate:   entry.DueDate,
		Category:  entry.Category,
		Priority:  entry.Priority,
		CreatedAt: now,
	}

	connections := FindConnections(entry, s.entries)

	s.entries = append(s.entries, entry)
	s.tasks = append(s.tasks, task)
	s.connections = append(s.connections, connections...)

	s.emit(Event{Kind: EventTaskCreated, Entry: copyEntry(entry), Task: copyTask(task), At: now})
	if len(connections) > 0 {
		s.emit(Event{Kind: EventConnectionsFound, Connections: connections, At: now})
	}

	return copyTask(task), connections
}

// PromoteDraft converts a draft into a task and registers it in the
// connection index. Connections are computed now, against the current entry
// set, not at draft time.
func (s *Store) PromoteDraft(id string) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.drafts {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return AddResult{}, ErrNotFound
	}

	entry := s.drafts[idx]
	s.drafts = append(s.drafts[:idx], s.drafts[idx+1:]...)

	now := s.clock()
	task, connections := s.registerEntry(entry, now)
	return AddResult{Entry: copyEntry(entry), Task: task, Connections: connections}, nil
}

// DiscardDraft removes a draft without promoting it.
func (s *Store) DiscardDraft(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.drafts {
		if d.ID == id {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddTasks parses a batch task input (lines separated by ';' or newlines)
// and creates one task per parseable line. Batch tasks are plain tasks: they
// do not enter the connection index.
func (s *Store) AddTasks(input string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	lines := analyzer.ParseTasks(input, now)

	created := make([]models.Task, 0, len(lines))
	for _, line := range lines {
		task := &models.Task{
			ID:        s.newID(),
			Text:      line.Text,
			DueDate:   line.DueDate,
			Category:  line.Category,
			Priority:  line.Priority,
			CreatedAt: now,
		}
		s.tasks = append(s.tasks, task)
		s.emit(Event{Kind: EventTaskCreated, Task: copyTask(task), At: now})
		created = append(created, *task)
	}
	return created
}

// ToggleTask flips a task's completed flag and returns the new state.
func (s *Store) ToggleTask(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			t.Completed = !t.Completed
			return *t, nil
		}
	}
	return models.Task{}, ErrNotFound
}

// DeleteTask removes a task from the session.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ToggleEntry flips an entry's completed flag.
func (s *Store) ToggleEntry(id string) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			e.Completed = !e.Completed
			e.LastUpdated = s.clock()
			return *copyEntry(e), nil
		}
	}
	return models.Entry{}, ErrNotFound
}

// DeleteEntry removes an analyzed entry. Connections referencing it are left
// in place; they dangle, and lookups must render the missing end as unknown.
func (s *Store) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddDetail appends a supplementary note to an entry.
func (s *Store) AddDetail(entryID, text string) (models.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == entryID {
			now := s.clock()
			detail := models.Detail{ID: s.newID(), Text: text, AddedAt: now}
			e.Details = append(e.Details, detail)
			e.LastUpdated = now
			return detail, nil
		}
	}
	return models.Detail{}, ErrNotFound
}

// Entry returns a copy of one entry by id.
func (s *Store) Entry(id string) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return *copyEntry(e), true
		}
	}
	return models.Entry{}, false
}

// Entries returns a snapshot of all analyzed entries in insertion order.
func (s *Store) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *copyEntry(e))
	}
	return out
}

// Tasks returns a snapshot of all tasks in creation order.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out
}

// Drafts returns a snapshot of drafts, newest first.
func (s *Store) Drafts() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Entry, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, *copyEntry(d))
	}
	return out
}

// Connections returns a snapshot of all discovered connections.
func (s *Store) Connections() []models.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// CategoryCounts tallies tasks per category.
func (s *Store) CategoryCounts() map[models.Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.Category]int)
	for _, t := range s.tasks {
		counts[t.Category]++
	}
	return counts
}

// Stats summarizes the session.
type Stats struct {
	Entries        int                     `json:"entries"`
	Tasks          int                     `json:"tasks"`
	CompletedTasks int                     `json:"completed_tasks"`
	Drafts         int                     `json:"drafts"`
	Connections    int                     `json:"connections"`
	ByCategory     map[models.Category]int `json:"by_category"`
}

// SessionStats returns the current session summary.
func (s *Store) SessionStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.Category]int)
	completed := 0
	for _, t := range s.tasks {
		counts[t.Category]++
		if t.Completed {
			completed++
		}
	}
	return Stats{
		Entries:        len(s.entries),
		Tasks:          len(s.tasks),
		CompletedTasks: completed,
		Drafts:         len(s.drafts),
		Connections:    len(s.connections),
		ByCategory:     counts,
	}
}

func (s *Store) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

// copyEntry clones an entry deeply enough that callers can hold it outside
// the lock: Details is the only slice mutated after creation.
func copyEntry(e *models.Entry) *models.Entry {
	c := *e
	c.Details = append([]models.Detail(nil), e.Details...)
	return &c
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	return &c
}
