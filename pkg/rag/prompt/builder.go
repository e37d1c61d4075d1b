package prompt

import (
	"fmt"
	"strings"

	"ai-notes-assistant/pkg/llm"
)

// NoGroundingNotice marks a prompt built without any retrieved notes.
const NoGroundingNotice = "no grounding context available"

// Turn is a prior question/answer exchange of the conversation.
type Turn struct {
	Question string
	Answer   string
}

// Builder renders the chat messages sent to the completion engine.
type Builder struct {
	context  *Context
	history  []Turn
	question string
}

func NewBuilder(context *Context, history []Turn, question string) *Builder {
	return &Builder{context: context, history: history, question: question}
}

// Build returns the system message, the prior turns as alternating user and
// assistant messages, and the question as the final user message.
func (b *Builder) Build() []llm.Message {
	var system strings.Builder
	b.writeTask(&system)
	b.writeReferenceMaterial(&system)
	b.writeGuidelines(&system)

	messages := make([]llm.Message, 0, 2+2*len(b.history))
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system.String()})
	for _, t := range b.history {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: t.Question},
			llm.Message{Role: llm.RoleAssistant, Content: t.Answer},
		)
	}

	var user strings.Builder
	b.writeUserQuestion(&user)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: user.String()})
	return messages
}

func (b *Builder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a knowledgeable assistant helping the user recall and use information from their own notes.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *Builder) writeReferenceMaterial(prompt *strings.Builder) {
	if b.context == nil || b.context.Empty() {
		prompt.WriteString("<reference_material>\n")
		prompt.WriteString(NoGroundingNotice)
		prompt.WriteString("\n</reference_material>\n\n")
		return
	}

	prompt.WriteString("<reference_material>\n")
	for i, n := range b.context.Notes {
		fmt.Fprintf(prompt, "<note rank=\"%d\" id=\"%s\" updated_at=\"%s\">\n", i+1, n.Id, n.UpdatedAt.Format("2006-01-02 15:04"))
		prompt.WriteString(n.Text)
		prompt.WriteString("\n</note>\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *Builder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	if b.context == nil || b.context.Empty() {
		prompt.WriteString("None of the user's notes matched this question. Answer from general knowledge and say that the notes did not cover it.\n")
	} else {
		prompt.WriteString("1. Base your answer on the reference material; notes are ordered by relevance\n")
		prompt.WriteString("2. If the material doesn't contain what's being asked, say so honestly\n")
		prompt.WriteString("3. Answer in the language of the question\n")
	}
	prompt.WriteString("</guidelines>")
}

func (b *Builder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>")
}
