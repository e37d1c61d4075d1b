package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Note lifecycle event types. Subjects are "events.<type>".
const (
	NoteCreated = "NOTE_CREATED"
	NoteUpdated = "NOTE_UPDATED"
	NoteIndexed = "NOTE_INDEXED"
	NoteDeleted = "NOTE_DELETED"
)

// Event is what travels on the lifecycle stream. Only its payload is put on
// the wire; the type is carried by the subject.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// NoteEvent is the Event published for note lifecycle changes and rebuilt by
// subscribers.
type NoteEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e NoteEvent) EventType() string               { return e.Type }
func (e NoteEvent) Payload() map[string]interface{} { return e.Data }
func (e NoteEvent) Timestamp() time.Time            { return e.OccurredAt }

// Publisher is satisfied by the NATS publisher and by test recorders.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewNoteEvent builds a lifecycle event carrying the note id and extra fields.
func NewNoteEvent(eventType string, noteId uuid.UUID, extra map[string]interface{}) NoteEvent {
	data := map[string]interface{}{
		"note_id": noteId.String(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return NoteEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// NoteID extracts the note id from a lifecycle event payload.
func NoteID(e Event) (uuid.UUID, bool) {
	raw, ok := e.Payload()["note_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
