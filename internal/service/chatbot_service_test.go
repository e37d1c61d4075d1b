package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/pkg/lock"
	"ai-notes-assistant/pkg/rag/qa"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	answer  *qa.Answer
	err     error
	history []qa.Turn
}

func (f *fakeAsker) Ask(ctx context.Context, question string, history []qa.Turn) (*qa.Answer, error) {
	f.history = history
	return f.answer, f.err
}

func newChatbot(asker Asker, maxTurns int) IChatbotService {
	return NewChatbotService(asker, memory.NewSessionRepository(time.Hour, time.Minute), lock.NewKeyedMutex(), maxTurns, logger.NewNopLogger())
}

func TestChatbotService_SessionHistory(t *testing.T) {
	ctx := context.Background()
	source := qa.Source{NoteId: uuid.New(), Text: "Buy milk", Score: 0.9}
	asker := &fakeAsker{answer: &qa.Answer{Text: "Milk.", Grounded: true, Sources: []qa.Source{source}}}
	chatbot := newChatbot(asker, 2)

	session, err := chatbot.CreateSession(ctx)
	require.NoError(t, err)

	for _, q := range []string{"q1", "q2", "q3"} {
		res, err := chatbot.Ask(ctx, &dto.AskRequest{ChatSessionId: &session.Id, Question: q})
		require.NoError(t, err)
		assert.Equal(t, "Milk.", res.Answer)
		assert.Equal(t, session.Id, *res.ChatSessionId)
	}
	assert.Equal(t, []qa.Turn{{Question: "q1", Answer: "Milk."}, {Question: "q2", Answer: "Milk."}}, asker.history)

	history, err := chatbot.GetChatHistory(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, history.Turns, 2)
	assert.Equal(t, "q2", history.Turns[0].Question)
	assert.Equal(t, []uuid.UUID{source.NoteId}, history.Turns[1].SourceIds)

	require.NoError(t, chatbot.DeleteSession(ctx, session.Id))
	_, err = chatbot.GetChatHistory(ctx, session.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestChatbotService_AskWithoutSession(t *testing.T) {
	asker := &fakeAsker{answer: &qa.Answer{Text: "Paris."}}
	res, err := newChatbot(asker, 10).Ask(context.Background(), &dto.AskRequest{Question: "capital of France?"})
	require.NoError(t, err)
	assert.False(t, res.Grounded)
	assert.Nil(t, res.ChatSessionId)
	assert.Nil(t, asker.history)
	assert.NotNil(t, res.NeedsReindex)
}

func TestChatbotService_UnknownSession(t *testing.T) {
	unknown := uuid.New()
	_, err := newChatbot(&fakeAsker{}, 10).Ask(context.Background(), &dto.AskRequest{ChatSessionId: &unknown, Question: "q"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestChatbotService_UpstreamFailureKeepsSourcesAndSkipsTurn(t *testing.T) {
	ctx := context.Background()
	source := qa.Source{NoteId: uuid.New(), Text: "Buy milk"}
	asker := &fakeAsker{
		answer: &qa.Answer{Grounded: true, Sources: []qa.Source{source}},
		err:    apperror.Upstream("qa.Ask", errors.New("503")),
	}
	chatbot := newChatbot(asker, 10)
	session, err := chatbot.CreateSession(ctx)
	require.NoError(t, err)

	res, err := chatbot.Ask(ctx, &dto.AskRequest{ChatSessionId: &session.Id, Question: "q"})
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	require.NotNil(t, res)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, source.NoteId, res.Sources[0].NoteId)

	history, err := chatbot.GetChatHistory(ctx, session.Id)
	require.NoError(t, err)
	assert.Empty(t, history.Turns)
}
