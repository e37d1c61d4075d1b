package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Question  string
	Answer    string
	SourceIds []uuid.UUID
	Grounded  bool
	CreatedAt time.Time
}

// ChatSession is the server-side conversation history used as QA context.
type ChatSession struct {
	Id        uuid.UUID
	Turns     []ChatTurn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendTurn adds a turn and keeps only the newest maxTurns.
func (s *ChatSession) AppendTurn(turn ChatTurn, maxTurns int) {
	s.Turns = append(s.Turns, turn)
	if maxTurns > 0 && len(s.Turns) > maxTurns {
		s.Turns = append([]ChatTurn(nil), s.Turns[len(s.Turns)-maxTurns:]...)
	}
	s.UpdatedAt = turn.CreatedAt
}
