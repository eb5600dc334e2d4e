package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpAnalyze, 10*time.Millisecond)
	c.RecordTiming(OpAnalyze, 30*time.Millisecond)
	c.RecordTiming(OpDBQuery, 5*time.Millisecond)

	snap := c.Snapshot()

	require.NotNil(t, snap.Analyze)
	assert.Equal(t, int64(2), snap.Analyze.Count)
	assert.Equal(t, int64(40), snap.Analyze.TotalTimeMs)
	assert.Equal(t, 20.0, snap.Analyze.AvgTimeMs)
	assert.Equal(t, int64(10), snap.Analyze.MinTimeMs)
	assert.Equal(t, int64(30), snap.Analyze.MaxTimeMs)

	require.NotNil(t, snap.DBQuery)
	assert.Equal(t, int64(1), snap.DBQuery.Count)

	assert.Nil(t, snap.Connect)
	assert.Nil(t, snap.HTTPRequest)
}

func TestCollectorTime(t *testing.T) {
	c := NewCollector()

	ran := false
	c.Time(OpConnect, func() { ran = true })

	assert.True(t, ran)
	snap := c.Snapshot()
	require.NotNil(t, snap.Connect)
	assert.Equal(t, int64(1), snap.Connect.Count)
}

func TestCollectorConcurrentAccess(t *testing.T) {
	c := NewCollector()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpHTTPRequest, time.Millisecond)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	snap := c.Snapshot()
	require.NotNil(t, snap.HTTPRequest)
	assert.Equal(t, int64(400), snap.HTTPRequest.Count)
}
