// Package api exposes the assistant over a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
)

// AuthorizePath is where clients are sent when Gmail needs to be connected again.
const AuthorizePath = "/oauth?redirect=1"

const maxRequestBytes = 1 << 20

type assistantSvc interface {
	ListRecent(ctx context.Context, query string, maxResults int64) ([]assistant.MessageSummary, error)
	DraftReply(ctx context.Context, messageID string) (assistant.Reply, error)
	Learn(sender, original, edited string) (assistant.Learned, error)
	EnsureLabel(ctx context.Context) (assistant.Label, error)
}

// Handler serves /api/gmail/* and /api/ai/*.
type Handler struct {
	svc    assistantSvc
	drafts *rate.Limiter
	mux    *http.ServeMux
}

// NewHandler builds the API. drafts throttles draft generation; nil disables throttling.
func NewHandler(svc assistantSvc, drafts *rate.Limiter) *Handler {
	h := &Handler{svc: svc, drafts: drafts, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/gmail/list", h.list)
	h.mux.HandleFunc("POST /api/gmail/draft", h.draft)
	h.mux.HandleFunc("GET /api/gmail/label", h.label)
	h.mux.HandleFunc("POST /api/ai/learn", h.learn)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type listResponse struct {
	Items []assistant.MessageSummary `json:"items"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var maxResults int64
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: max must be a number", assistant.ErrValidation))
			return
		}
		maxResults = n
	}

	items, err := h.svc.ListRecent(r.Context(), r.URL.Query().Get("q"), maxResults)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []assistant.MessageSummary{}
	}

	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

type draftRequest struct {
	MessageID string `json:"messageId"`
}

func (h *Handler) draft(w http.ResponseWriter, r *http.Request) {
	if h.drafts != nil && !h.drafts.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Rate limit exceeded. Please try again later."})
		return
	}

	var req draftRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	reply, err := h.svc.DraftReply(r.Context(), req.MessageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) label(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.EnsureLabel(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

type learnRequest struct {
	Sender   string `json:"sender"`
	Original string `json:"original"`
	Edited   string `json:"edited"`
}

type learnResponse struct {
	OK bool `json:"ok"`
	assistant.Learned
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Learn(req.Sender, req.Original, req.Edited)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, learnResponse{OK: true, Learned: res})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: request body must be a JSON object", assistant.ErrValidation)
	}
	return nil
}

type errorResponse struct {
	Error     string `json:"error"`
	Authorize string `json:"authorize,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assistant.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, assistant.ErrUpstreamAuth):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: assistant.ErrUpstreamAuth.Error(), Authorize: AuthorizePath})
	default:
		log.Println(r.Method, r.URL.Path, "failed", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("json.NewEncoder.Encode failed", err)
	}
}
