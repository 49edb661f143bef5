package wizard

import (
	"context"

	"github.com/minios-linux/draftkit/draft"
)

// Translator is the translation service used to build drafts.
// *translate.Translator implements it.
type Translator interface {
	Translate(ctx context.Context, text string) string
	TranslateBatch(ctx context.Context, texts []string) []string
}

// Result is the outcome of processing a finished session.
type Result struct {
	Session Session
	Draft   draft.Draft
	Err     error
}

// Build translates every field of s into a draft.
func Build(ctx context.Context, tr Translator, s Session) draft.Draft {
	return draft.Draft{
		Goal:        tr.Translate(ctx, s.Goal),
		Context:     tr.TranslateBatch(ctx, s.Context),
		Steps:       tr.TranslateBatch(ctx, s.Steps),
		Constraints: tr.TranslateBatch(ctx, s.Constraints),
	}
}

// Process builds the draft on a background goroutine and delivers exactly
// one Result on the returned channel. s must not be modified by the caller
// afterwards; pass a copy from Wizard.Session. The only error reported is
// the context's.
func Process(ctx context.Context, tr Translator, s Session) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		d := Build(ctx, tr, s)
		out <- Result{Session: s, Draft: d, Err: ctx.Err()}
	}()
	return out
}
