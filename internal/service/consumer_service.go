package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	indexing   IIndexingService
	log        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexing IIndexingService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		indexing:   indexing,
		log:        log,
	}
}

// Consume starts draining the index queue in the background until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.PublishEmbedNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	result, err := cs.indexing.IndexNote(msg.Context(), payload.NoteId)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		msg.Ack() // purged before we got to it
	case err != nil:
		cs.log.Error("CONSUMER", "Indexing failed", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
	default:
		// Pending notes stay draft/stale and are picked up by the reindex worker.
		cs.log.Debug("CONSUMER", "Index request processed", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"status":  string(result.Status),
		})
		msg.Ack()
	}
}
