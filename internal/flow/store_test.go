package flow

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/flowmind/internal/analyzer"
	"github.com/raphaelgruber/flowmind/internal/models"
)

// newTestStore returns a store with a frozen clock and sequential ids, plus
// the slice its events are appended to.
func newTestStore(t *testing.T) (*Store, *[]Event) {
	t.Helper()

	var events []Event
	seq := 0
	store := NewStore(
		WithClock(func() time.Time { return flowNow }),
		WithIDFunc(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
		WithEventFunc(func(ev Event) { events = append(events, ev) }),
	)
	return store, &events
}

func TestAddEntryPromotesDatedInput(t *testing.T) {
	store, events := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	assert.False(t, res.Draft)
	require.NotNil(t, res.Task)
	assert.Equal(t, "提交报告", res.Task.Text)
	assert.Equal(t, models.CategoryWork, res.Task.Category)
	assert.Equal(t, models.PriorityHigh, res.Task.Priority)
	assert.Equal(t, res.Entry.ID, res.Task.EntryID)
	assert.Empty(t, res.Connections)

	assert.Len(t, store.Entries(), 1)
	assert.Len(t, store.Tasks(), 1)
	assert.Empty(t, store.Drafts())

	require.Len(t, *events, 1)
	assert.Equal(t, EventTaskCreated, (*events)[0].Kind)
}

func TestAddEntryFilesVagueInputAsDraft(t *testing.T) {
	store, events := newTestStore(t)

	res, err := store.AddEntry("随便说说")
	require.NoError(t, err)

	assert.True(t, res.Draft)
	assert.Nil(t, res.Task)
	assert.Empty(t, store.Tasks())
	assert.Empty(t, store.Entries())

	require.Len(t, *events, 1)
	assert.Equal(t, EventDraftFiled, (*events)[0].Kind)

	// a second draft lands in front of the first
	_, err = store.AddEntry("胡思乱想")
	require.NoError(t, err)

	drafts := store.Drafts()
	require.Len(t, drafts, 2)
	assert.Equal(t, "胡思乱想", drafts[0].OriginalText)
	assert.Equal(t, "随便说说", drafts[1].OriginalText)
}

func TestAddEntryEmptyInput(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddEntry("   ")
	assert.ErrorIs(t, err, analyzer.ErrEmptyInput)
}

func TestAddEntryDiscoversConnections(t *testing.T) {
	store, events := newTestStore(t)

	first, err := store.AddEntry("学习 Python 8.1")
	require.NoError(t, err)

	second, err := store.AddEntry("练习 Python 8.3")
	require.NoError(t, err)

	require.Len(t, second.Connections, 1)
	conn := second.Connections[0]
	assert.Equal(t, second.Entry.ID, conn.From)
	assert.Equal(t, first.Entry.ID, conn.To)
	assert.Equal(t, 7, conn.Strength)
	assert.Equal(t, models.ConnectionStrong, conn.Type)
	assert.Equal(t, []string{"共同关键词: Python", "tools: Python", "时间相近"}, conn.Reasons)

	assert.Equal(t, second.Connections, store.Connections())

	// task_created for each entry plus connections_found for the second
	require.Len(t, *events, 3)
	assert.Equal(t, EventConnectionsFound, (*events)[2].Kind)
}

func TestPromoteDraft(t *testing.T) {
	store, _ := newTestStore(t)

	draft, err := store.AddEntry("随便说说")
	require.NoError(t, err)

	// an entry sharing the draft's keyword arrives before promotion
	_, err = store.AddEntry("会议 随便说说")
	require.NoError(t, err)

	res, err := store.PromoteDraft(draft.Entry.ID)
	require.NoError(t, err)

	require.NotNil(t, res.Task)
	assert.Equal(t, "随便说说", res.Task.Text)
	assert.Empty(t, store.Drafts())
	assert.Len(t, store.Tasks(), 2)

	// connections are computed at promotion time, against the current set
	require.Len(t, res.Connections, 1)
	assert.Equal(t, draft.Entry.ID, res.Connections[0].From)
}

func TestPromoteDraftNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.PromoteDraft("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscardDraft(t *testing.T) {
	store, _ := newTestStore(t)

	draft, err := store.AddEntry("随便说说")
	require.NoError(t, err)

	require.NoError(t, store.DiscardDraft(draft.Entry.ID))
	assert.Empty(t, store.Drafts())

	assert.ErrorIs(t, store.DiscardDraft(draft.Entry.ID), ErrNotFound)
}

func TestAddTasksBatch(t *testing.T) {
	store, _ := newTestStore(t)

	created := store.AddTasks("8.30 提交报告; 明天 锻炼\n随便说说")
	require.Len(t, created, 3)

	assert.Equal(t, "提交报告", created[0].Text)
	assert.Equal(t, "锻炼", created[1].Text)
	assert.Equal(t, "随便说说", created[2].Text)

	// batch tasks are plain: no entries, no connections
	assert.Empty(t, store.Entries())
	assert.Empty(t, store.Connections())
	assert.Len(t, store.Tasks(), 3)
}

func TestToggleTask(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	toggled, err := store.ToggleTask(res.Task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = store.ToggleTask(res.Task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	_, err = store.ToggleTask("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(res.Task.ID))
	assert.Empty(t, store.Tasks())
	// the entry stays in the connection index
	assert.Len(t, store.Entries(), 1)

	assert.ErrorIs(t, store.DeleteTask(res.Task.ID), ErrNotFound)
}

func TestToggleEntry(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	toggled, err := store.ToggleEntry(res.Entry.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	_, err = store.ToggleEntry("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEntryLeavesConnectionsDangling(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.AddEntry("学习 Python 8.1")
	require.NoError(t, err)
	_, err = store.AddEntry("练习 Python 8.3")
	require.NoError(t, err)

	require.NoError(t, store.DeleteEntry(first.Entry.ID))

	// the connection survives; its To end no longer resolves
	conns := store.Connections()
	require.Len(t, conns, 1)
	_, ok := store.Entry(conns[0].To)
	assert.False(t, ok)
}

func TestAddDetail(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	detail, err := store.AddDetail(res.Entry.ID, "附上图表")
	require.NoError(t, err)
	assert.Equal(t, "附上图表", detail.Text)

	entry, ok := store.Entry(res.Entry.ID)
	require.True(t, ok)
	require.Len(t, entry.Details, 1)
	assert.Equal(t, detail, entry.Details[0])

	_, err = store.AddDetail("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotsAreCopies(t *testing.T) {
	store, _ := newTestStore(t)

	res, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	entries := store.Entries()
	entries[0].Completed = true
	entries[0].Details = append(entries[0].Details, models.Detail{ID: "x"})

	fresh, ok := store.Entry(res.Entry.ID)
	require.True(t, ok)
	assert.False(t, fresh.Completed)
	assert.Empty(t, fresh.Details)
}

func TestSessionStats(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddEntry("学习 Python 8.1")
	require.NoError(t, err)
	res, err := store.AddEntry("练习 Python 8.3")
	require.NoError(t, err)
	_, err = store.AddEntry("随便说说")
	require.NoError(t, err)

	_, err = store.ToggleTask(res.Task.ID)
	require.NoError(t, err)

	stats := store.SessionStats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.Tasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.Drafts)
	assert.Equal(t, 1, stats.Connections)
	assert.Equal(t, map[models.Category]int{
		models.CategoryStudy:         1,
		models.CategoryUncategorized: 1,
	}, stats.ByCategory)
}
