package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsForReturnsSameStorePerUser(t *testing.T) {
	sessions := NewSessions(nil)

	alice := sessions.For("alice")
	bob := sessions.For("bob")

	assert.Same(t, alice, sessions.For("alice"))
	assert.NotSame(t, alice, bob)

	_, err := alice.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	assert.Len(t, alice.Tasks(), 1)
	assert.Empty(t, bob.Tasks())
}

func TestSessionsEventTagging(t *testing.T) {
	type tagged struct {
		userID string
		kind   EventKind
	}
	var got []tagged

	sessions := NewSessions(
		func(userID string, ev Event) { got = append(got, tagged{userID, ev.Kind}) },
		WithClock(func() time.Time { return flowNow }),
	)

	_, err := sessions.For("alice").AddEntry("8.30 提交报告")
	require.NoError(t, err)
	_, err = sessions.For("bob").AddEntry("随便说说")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, tagged{"alice", EventTaskCreated}, got[0])
	assert.Equal(t, tagged{"bob", EventDraftFiled}, got[1])
}

func TestSessionsDrop(t *testing.T) {
	sessions := NewSessions(nil)

	store := sessions.For("alice")
	_, err := store.AddEntry("8.30 提交报告")
	require.NoError(t, err)

	sessions.Drop("alice")

	assert.Empty(t, sessions.For("alice").Tasks())
}
