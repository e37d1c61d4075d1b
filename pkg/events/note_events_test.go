package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		event  Event
		wantId uuid.UUID
		wantOk bool
	}{
		{name: "lifecycle event", event: NewNoteEvent(NoteCreated, id, map[string]interface{}{"status": "draft"}), wantId: id, wantOk: true},
		{name: "missing id", event: NoteEvent{Type: NoteCreated, Data: map[string]interface{}{}}},
		{name: "malformed id", event: NoteEvent{Type: NoteCreated, Data: map[string]interface{}{"note_id": "nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NoteID(tt.event)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantId, got)
		})
	}
}

func TestNewNoteEvent_KeepsExtraFields(t *testing.T) {
	e := NewNoteEvent(NoteIndexed, uuid.New(), map[string]interface{}{"embedding_version": "openai:x"})
	assert.Equal(t, NoteIndexed, e.EventType())
	assert.Equal(t, "openai:x", e.Payload()["embedding_version"])
	assert.False(t, e.Timestamp().IsZero())
}
