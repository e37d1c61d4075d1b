package prompt

import (
	"time"

	"github.com/google/uuid"
)

// ContextNote is one retrieved note, in rank order, offered to the prompt.
type ContextNote struct {
	Id        uuid.UUID
	Text      string
	Score     float64
	UpdatedAt time.Time
}

// Context is the reference material that made it into the prompt.
type Context struct {
	Notes []ContextNote
	// Truncated is set when the top note alone exceeded the budget and was cut.
	Truncated bool
	// Dropped holds lower-ranked notes left out to stay within the budget.
	Dropped []uuid.UUID
}

func (c *Context) Empty() bool {
	return len(c.Notes) == 0
}

// AssembleContext keeps the longest rank prefix of notes whose text fits in
// budget characters. Whole notes are dropped from the bottom; only a top note
// that is larger than the whole budget on its own is cut. budget <= 0 means
// unlimited.
func AssembleContext(notes []ContextNote, budget int) *Context {
	ctx := &Context{Notes: []ContextNote{}, Dropped: []uuid.UUID{}}
	used := 0
	for i, n := range notes {
		size := len([]rune(n.Text))
		if budget <= 0 || used+size <= budget {
			ctx.Notes = append(ctx.Notes, n)
			used += size
			continue
		}
		if i == 0 {
			n.Text = string([]rune(n.Text)[:budget])
			ctx.Notes = append(ctx.Notes, n)
			ctx.Truncated = true
			used = budget
			continue
		}
		for _, rest := range notes[i:] {
			ctx.Dropped = append(ctx.Dropped, rest.Id)
		}
		break
	}
	return ctx
}
