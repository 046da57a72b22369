// Package auth handles OAuth2 token management and persistence.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

var (
	// ErrTokenNotSet indicates no OAuth token is available.
	ErrTokenNotSet = errors.New("no token defined")
	// ErrInvalidState is returned for a callback whose state was never issued,
	// already used or expired.
	ErrInvalidState = errors.New("invalid or expired state parameter")
)

// Token manages OAuth2 tokens with thread-safe operations.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	states      *states
}

// NewToken creates a Token manager, loading a previously persisted token from
// persistPath when one exists. An empty path keeps the token in memory only.
func NewToken(cfg *oauth2.Config, persistPath string) (*Token, error) {
	t := &Token{cfg: cfg, persistPath: persistPath, states: newStates()}

	tok, err := readToken(persistPath)
	if err != nil {
		return nil, err
	}
	t.token = tok

	return t, nil
}

// RedirectURL generates the OAuth2 authorization URL with a secure random state.
func (t *Token) RedirectURL() (string, error) {
	state, err := t.states.issue()
	if err != nil {
		return "", fmt.Errorf("states.issue failed: %w", err)
	}

	// consent forces a refresh token on every sign-in
	return t.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// AuthorizeCode exchanges an authorization code for an access token after validating state.
func (t *Token) AuthorizeCode(ctx context.Context, code string, state string) error {
	if !t.states.consume(state) {
		return ErrInvalidState
	}

	tok, err := t.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	t.mu.Lock()
	t.token = tok
	t.mu.Unlock()

	return nil
}

// TokenSource returns a source that refreshes the stored token when it
// expires. Refreshed tokens replace the stored one and are persisted; a
// failed write is logged and the fresh token is still used.
func (t *Token) TokenSource(ctx context.Context) oauth2.TokenSource {
	t.mu.RLock()
	base := t.cfg.TokenSource(ctx, t.token)
	t.mu.RUnlock()

	return &persistingSource{base: base, tok: t}
}

type persistingSource struct {
	base oauth2.TokenSource
	tok  *Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	fresh, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.tok.replace(fresh) {
		if err := s.tok.Persist(); err != nil {
			log.Println("tok.Persist failed", err)
		}
	}

	return fresh, nil
}

// replace stores fresh and reports whether it differs from the current token.
func (t *Token) replace(fresh *oauth2.Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != nil && t.token.AccessToken == fresh.AccessToken {
		return false
	}
	t.token = fresh

	return true
}

// OAuthToken returns the current OAuth2 token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}

	return t.token, nil
}

// Persist saves the token to disk. It is a no-op without a path or a token.
func (t *Token) Persist() error {
	t.mu.RLock()
	tok := t.token
	t.mu.RUnlock()

	if t.persistPath == "" || tok == nil {
		return nil
	}

	return writeToken(t.persistPath, tok)
}

func readToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Token file %s doesn't exist yet, it is written after sign-in", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
	}

	return tok, nil
}

// writeToken replaces the file through a rename so a crash never leaves a
// truncated token behind.
func writeToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("os.MkdirAll failed: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp failed: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename failed: %w", err)
	}

	return nil
}
