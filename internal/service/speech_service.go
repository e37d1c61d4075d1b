package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/pkg/speech"

	"github.com/google/uuid"
)

// Voices accepted by the speech engine.
var SpeechVoices = []string{"alloy", "onyx", "echo", "fable", "nova", "shimmer"}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".webm": true,
}

func IsAudioFile(filename string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(filename))]
}

type ISpeechService interface {
	CreateNoteFromAudio(ctx context.Context, audio io.Reader, filename string) (*entity.Note, error)
	Synthesize(ctx context.Context, noteId uuid.UUID, voice string) ([]byte, error)
}

type speechService struct {
	notes        INoteService
	transcriber  speech.Transcriber
	synthesizer  speech.Synthesizer
	defaultVoice string
	log          logger.ILogger
}

func NewSpeechService(notes INoteService, transcriber speech.Transcriber, synthesizer speech.Synthesizer, defaultVoice string, log logger.ILogger) ISpeechService {
	return &speechService{
		notes:        notes,
		transcriber:  transcriber,
		synthesizer:  synthesizer,
		defaultVoice: defaultVoice,
		log:          log,
	}
}

// CreateNoteFromAudio transcribes audio and stores the transcript as a note.
func (s *speechService) CreateNoteFromAudio(ctx context.Context, audio io.Reader, filename string) (*entity.Note, error) {
	const op = "SpeechService.CreateNoteFromAudio"
	if !IsAudioFile(filename) {
		return nil, apperror.Validation(op, "unsupported audio file %q", filepath.Base(filename))
	}

	text, err := s.transcriber.Transcribe(ctx, audio, filepath.Base(filename))
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation(op, "transcription of %q is empty", filepath.Base(filename))
	}

	return s.notes.Create(ctx, text, entity.SourceKindTranscribed, map[string]interface{}{
		"source_file": filepath.Base(filename),
	})
}

// Synthesize reads the note aloud. The note is not modified.
func (s *speechService) Synthesize(ctx context.Context, noteId uuid.UUID, voice string) ([]byte, error) {
	const op = "SpeechService.Synthesize"
	if voice == "" {
		voice = s.defaultVoice
	}
	if !validVoice(voice) {
		return nil, apperror.Validation(op, "unknown voice %q", voice)
	}

	note, err := s.notes.Show(ctx, noteId)
	if err != nil {
		return nil, err
	}

	audio, err := s.synthesizer.Synthesize(ctx, note.Text, voice)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}
	s.log.Debug("SPEECH", "Note synthesized", map[string]interface{}{
		"note_id": noteId.String(),
		"voice":   voice,
		"bytes":   len(audio),
	})
	return audio, nil
}

func validVoice(voice string) bool {
	for _, v := range SpeechVoices {
		if v == voice {
			return true
		}
	}
	return false
}
