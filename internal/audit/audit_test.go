package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventDraftSaved, "sess-1", "a3f2c1d4-1b2a-4e3d-8a9b-123456789abc", "")

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, EventDraftSaved, event.Type)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, NewEvent(EventSessionStarted, "sess-1", "", "")))
	require.NoError(t, p.Publish(ctx, NewEvent(EventSubmissionAccepted, "sess-1", "", "")))

	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventSessionStarted, events[0].Type)
	assert.Equal(t, EventSubmissionAccepted, events[1].Type)

	// The returned slice is a copy.
	events[0].Type = EventSubmissionFailed
	assert.Equal(t, EventSessionStarted, p.Events()[0].Type)
}
