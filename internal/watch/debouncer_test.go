package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "test.md", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "test.md", events[0].Path)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_MultipleEventsForSameFile_Coalesces(t *testing.T) {
	d := newDebouncer(100 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.add(FileEvent{Path: "test.md", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "test.md", events[0].Path)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncer_CreateThenDelete_NoEvent(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "temp.md", Operation: OpCreate, Timestamp: time.Now()})
	d.add(FileEvent{Path: "temp.md", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no event, got %v", events)
	case <-time.After(150 * time.Millisecond):
		// expected: create+delete cancel out
	}
}

func TestDebouncer_DeleteThenCreate_BecomesModify(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "replaced.md", Operation: OpDelete, Timestamp: time.Now()})
	d.add(FileEvent{Path: "replaced.md", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_DistinctPaths_EmitSeparately(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "a.md", Operation: OpModify, Timestamp: time.Now()})
	d.add(FileEvent{Path: "b.md", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 2)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncer_Stop_ClosesOutput(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	d.Stop()

	_, ok := <-d.Output()
	assert.False(t, ok, "output channel should be closed after Stop")

	// Stop should be idempotent.
	d.Stop()
}

func TestDebouncer_AddAfterStop_IsIgnored(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	d.Stop()

	d.add(FileEvent{Path: "late.md", Operation: OpModify, Timestamp: time.Now()})
	// No panic, and nothing to observe since Output() is already closed.
}
