package service

import (
	"context"
	"time"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/pkg/lock"
	"ai-notes-assistant/pkg/rag/qa"

	"github.com/google/uuid"
)

// IChatbotService answers questions about the notes, optionally inside a
// server-side chat session whose recent turns are sent as history.
type IChatbotService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error)
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type Asker interface {
	Ask(ctx context.Context, question string, history []qa.Turn) (*qa.Answer, error)
}

type chatbotService struct {
	asker       Asker
	sessionRepo *memory.SessionRepository
	locker      lock.Locker
	maxTurns    int
	log         logger.ILogger
}

func NewChatbotService(asker Asker, sessionRepo *memory.SessionRepository, locker lock.Locker, maxTurns int, log logger.ILogger) IChatbotService {
	return &chatbotService{
		asker:       asker,
		sessionRepo: sessionRepo,
		locker:      locker,
		maxTurns:    maxTurns,
		log:         log,
	}
}

func sessionNotFound(op string, id uuid.UUID) error {
	return &apperror.Error{Kind: apperror.KindNotFound, Op: op, Message: "chat session " + id.String() + " not found"}
}

func (s *chatbotService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		Turns:     []entity.ChatTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessionRepo.Save(session)
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatbotService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	session, ok := s.sessionRepo.Get(sessionId)
	if !ok {
		return nil, sessionNotFound("ChatbotService.GetChatHistory", sessionId)
	}

	res := &dto.ChatHistoryResponse{Id: session.Id, Turns: make([]dto.ChatTurnDTO, 0, len(session.Turns))}
	for _, t := range session.Turns {
		res.Turns = append(res.Turns, dto.ChatTurnDTO{
			Question:  t.Question,
			Answer:    t.Answer,
			SourceIds: t.SourceIds,
			Grounded:  t.Grounded,
			CreatedAt: t.CreatedAt,
		})
	}
	return res, nil
}

// Ask answers request.Question. On a completion failure the response still
// carries the retrieved sources and is returned together with the error.
func (s *chatbotService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	if request.ChatSessionId == nil {
		answer, err := s.asker.Ask(ctx, request.Question, nil)
		return dto.NewAskResponse(nil, answer), err
	}

	sessionId := *request.ChatSessionId
	unlock, err := s.locker.Lock(ctx, "session:"+sessionId.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, ok := s.sessionRepo.Get(sessionId)
	if !ok {
		return nil, sessionNotFound("ChatbotService.Ask", sessionId)
	}

	history := make([]qa.Turn, 0, len(session.Turns))
	for _, t := range session.Turns {
		history = append(history, qa.Turn{Question: t.Question, Answer: t.Answer})
	}

	answer, err := s.asker.Ask(ctx, request.Question, history)
	if err != nil {
		return dto.NewAskResponse(&sessionId, answer), err
	}

	sourceIds := make([]uuid.UUID, 0, len(answer.Sources))
	for _, src := range answer.Sources {
		sourceIds = append(sourceIds, src.NoteId)
	}
	session.AppendTurn(entity.ChatTurn{
		Question:  request.Question,
		Answer:    answer.Text,
		SourceIds: sourceIds,
		Grounded:  answer.Grounded,
		CreatedAt: time.Now(),
	}, s.maxTurns)
	s.sessionRepo.Save(session)

	s.log.Debug("CHATBOT", "Turn recorded", map[string]interface{}{
		"session_id": sessionId.String(),
		"turns":      len(session.Turns),
	})
	return dto.NewAskResponse(&sessionId, answer), nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	if _, ok := s.sessionRepo.Get(sessionId); !ok {
		return sessionNotFound("ChatbotService.DeleteSession", sessionId)
	}
	s.sessionRepo.Delete(sessionId)
	return nil
}
