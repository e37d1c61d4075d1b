package prompt

import (
	"strings"
	"testing"
	"time"

	"ai-notes-assistant/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(text string) ContextNote {
	return ContextNote{Id: uuid.New(), Text: text, UpdatedAt: time.Now()}
}

func TestAssembleContext(t *testing.T) {
	a, b, c := note("aaaaa"), note("bbbbb"), note("ccccc")

	tests := []struct {
		name      string
		notes     []ContextNote
		budget    int
		wantTexts []string
		truncated bool
		dropped   []uuid.UUID
	}{
		{name: "everything fits", notes: []ContextNote{a, b, c}, budget: 15, wantTexts: []string{"aaaaa", "bbbbb", "ccccc"}},
		{name: "unlimited budget", notes: []ContextNote{a, b, c}, budget: 0, wantTexts: []string{"aaaaa", "bbbbb", "ccccc"}},
		{name: "lowest rank dropped whole", notes: []ContextNote{a, b, c}, budget: 12, wantTexts: []string{"aaaaa", "bbbbb"}, dropped: []uuid.UUID{c.Id}},
		{name: "rank prefix kept even if a later note would fit", notes: []ContextNote{a, note("bbbbbbbbbb"), note("c")}, budget: 8, wantTexts: []string{"aaaaa"}},
		{name: "oversized top note cut", notes: []ContextNote{note("0123456789"), b}, budget: 4, wantTexts: []string{"0123"}, truncated: true},
		{name: "no notes", notes: nil, budget: 10, wantTexts: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssembleContext(tt.notes, tt.budget)
			texts := make([]string, 0, len(got.Notes))
			for _, n := range got.Notes {
				texts = append(texts, n.Text)
			}
			assert.Equal(t, tt.wantTexts, texts)
			assert.Equal(t, tt.truncated, got.Truncated)
			if tt.dropped != nil {
				assert.Equal(t, tt.dropped, got.Dropped)
			}
			assert.Equal(t, len(tt.notes), len(got.Notes)+len(got.Dropped))
		})
	}
}

func TestAssembleContext_CountsRunes(t *testing.T) {
	got := AssembleContext([]ContextNote{note("żółw ćma")}, 4)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "żółw", got.Notes[0].Text)
}

func TestBuilder_Grounded(t *testing.T) {
	ctx := AssembleContext([]ContextNote{note("Buy milk and eggs tomorrow")}, 100)
	history := []Turn{{Question: "hi", Answer: "hello"}}

	msgs := NewBuilder(ctx, history, "what should I buy?").Build()
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Buy milk and eggs tomorrow")
	assert.NotContains(t, msgs[0].Content, NoGroundingNotice)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hi"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "hello"}, msgs[2])
	assert.Equal(t, llm.RoleUser, msgs[3].Role)
	assert.True(t, strings.Contains(msgs[3].Content, "what should I buy?"))
}

func TestBuilder_Ungrounded(t *testing.T) {
	msgs := NewBuilder(AssembleContext(nil, 100), nil, "capital of France?").Build()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, NoGroundingNotice)
}
