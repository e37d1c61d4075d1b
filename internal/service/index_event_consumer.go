package service

import (
	"context"
	"errors"
	"fmt"

	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/pkg/events"
	pktNats "ai-notes-assistant/pkg/nats"
)

const IndexConsumerDurable = "note-indexer"

// IndexEventConsumer indexes notes from the NATS lifecycle stream so that
// indexing can run in a separate worker process.
type IndexEventConsumer struct {
	subscriber *pktNats.Subscriber
	indexing   IIndexingService
	log        logger.ILogger
}

func NewIndexEventConsumer(subscriber *pktNats.Subscriber, indexing IIndexingService, log logger.ILogger) *IndexEventConsumer {
	return &IndexEventConsumer{subscriber: subscriber, indexing: indexing, log: log}
}

func (c *IndexEventConsumer) Start(ctx context.Context) error {
	return c.subscriber.Subscribe(ctx, IndexConsumerDurable,
		[]string{events.NoteCreated, events.NoteUpdated},
		c.Handle,
	)
}

// Handle indexes the note named by event. A pending result is returned as an
// error so that the message is redelivered.
func (c *IndexEventConsumer) Handle(ctx context.Context, event events.Event) error {
	id, ok := events.NoteID(event)
	if !ok {
		c.log.Warn("INDEX_CONSUMER", "Event without note id ignored", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	result, err := c.indexing.IndexNote(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if result.Status == IndexStatusPending {
		return fmt.Errorf("note %s pending: %w", id, result.Warning)
	}
	return nil
}
