// Package translate translates wizard answers through a remote service:
// the public Google Translate endpoint or an HTTP API-based AI provider
// (Google AI (Gemini), Groq, Ollama, Custom OpenAI).
//
// Translation never fails from the caller's point of view. When the
// backend errors, the original text is returned unchanged and the error
// is logged, so a translated string cannot be told apart from a fallback.
package translate

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/draftkit/log"
)

// Default languages: answers are typed in Korean, drafts are English.
const (
	DefaultSource = "ko"
	DefaultTarget = "en"
)

// Backend performs a single remote translation call.
type Backend interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, text, source, target string) (string, error)

// Translate calls f.
func (f BackendFunc) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f(ctx, text, source, target)
}

// Options controls the translation behavior.
type Options struct {
	// Source is the language code of the input (default "ko").
	Source string
	// Target is the language code of the output (default "en").
	Target string
	// MaxConcurrent bounds the calls in flight during a batch (default 1).
	MaxConcurrent int
	// Logger receives fallback warnings.
	Logger log.Logger
}

func (o *Options) defaults() {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 1
	}
	if o.Logger == nil {
		o.Logger = log.Noop
	}
}

// Translator wraps a Backend with the empty-input shortcut and the
// fallback-to-original policy.
type Translator struct {
	backend Backend
	opts    Options
	logger  log.Logger
}

// New returns a Translator using backend.
func New(backend Backend, opts Options) *Translator {
	opts.defaults()
	return &Translator{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger.WithValues(log.Kv{"svc": "translate", "source": opts.Source, "target": opts.Target}),
	}
}

// Translate returns the translation of text. Empty or whitespace-only
// input returns "" without calling the backend. On failure the original
// text is returned.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	out, err := t.backend.Translate(ctx, text, t.opts.Source, t.opts.Target)
	if err != nil {
		t.logger.Warningf("translation failed, keeping original text: %v", err)
		return text
	}
	return out
}

// TranslateBatch translates every element, preserving order and length.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))
	if len(texts) == 0 {
		return out
	}

	g := new(errgroup.Group)
	g.SetLimit(t.opts.MaxConcurrent)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			out[i] = t.Translate(ctx, text)
			return nil
		})
	}
	_ = g.Wait()

	t.logger.Debugf("translated batch of %d items", len(texts))
	return out
}
