// Package draft turns a thread context and a style directive into a reply draft.
// A Generator never fails: when the backend is unreachable or keeps returning
// unusable output the caller still gets a salvage draft to edit.
package draft

import (
	"context"
	"log"
	"strings"
	"time"
)

const (
	DefaultTimeout         = 20 * time.Second
	DefaultMinWords        = 60
	DefaultMaxContextChars = 8000
)

// Completer is the generation backend.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config tunes the generator. Zero values take the package defaults.
type Config struct {
	Timeout         time.Duration
	MinWords        int
	MaxContextChars int
}

// Request is one drafting job. MessageID and ThreadID only label log lines.
type Request struct {
	MessageID      string
	ThreadID       string
	Subject        string
	ThreadContext  string
	StyleDirective string
	Signature      string
}

// Result is a generated or salvaged draft.
type Result struct {
	Subject            string   `json:"subject"`
	Body               string   `json:"body"`
	NeedsClarification *bool    `json:"needs_clarification,omitempty"`
	Questions          []string `json:"questions,omitempty"`
}

// Generator runs the attempt, retry and salvage ladder against one backend.
type Generator struct {
	backend Completer
	cfg     Config
}

func NewGenerator(backend Completer, cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = DefaultMinWords
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultMaxContextChars
	}
	return &Generator{backend: backend, cfg: cfg}
}

// Generate always returns a usable draft.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	user := userPrompt(req.Subject, req.ThreadContext, g.cfg.MaxContextChars)

	text1, err := g.attempt(ctx, systemPrompt(req, firstAttempt), user)
	if err != nil {
		log.Printf("draft: first attempt failed for message %s thread %s: %v", req.MessageID, req.ThreadID, err)
		return Salvage(req, "")
	}

	parsed, ok := Parse(text1)
	if !ok || WordCount(parsed.Body) < g.cfg.MinWords {
		text2, err := g.attempt(ctx, systemPrompt(req, retryAttempt), user)
		if err != nil {
			log.Printf("draft: retry failed for message %s thread %s: %v", req.MessageID, req.ThreadID, err)
			ok = false
		} else {
			parsed, ok = Parse(text2)
		}
	}

	if ok && strings.TrimSpace(parsed.Body) != "" {
		parsed.Body = toCRLF(parsed.Body)
		parsed.Subject = strings.TrimSpace(parsed.Subject)
		if parsed.Subject == "" {
			parsed.Subject = ReplySubject(req.Subject)
		}
		return parsed
	}

	log.Printf("draft: no usable structured output for message %s thread %s, salvaging", req.MessageID, req.ThreadID)
	return Salvage(req, text1)
}

func (g *Generator) attempt(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	return g.backend.Complete(ctx, system, user)
}
