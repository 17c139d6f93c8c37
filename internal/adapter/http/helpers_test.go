package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/worklane/worklane/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("load task: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   "fallback message",
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("update goal: %w", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantBody:   "modified by another request",
		},
		{
			name:       "invalid transition keeps prefix",
			err:        fmt.Errorf("completed tasks are immutable: %w", domain.ErrInvalidTransition),
			wantStatus: http.StatusConflict,
			wantBody:   "completed tasks are immutable",
		},
		{
			name:       "validation keeps prefix",
			err:        fmt.Errorf("title is required: %w", domain.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantBody:   "title is required",
		},
		{
			name:       "already commented",
			err:        fmt.Errorf("user slot: %w", domain.ErrAlreadyCommented),
			wantStatus: http.StatusConflict,
			wantBody:   "already filled",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("actor u1: %w", domain.ErrUnauthorized),
			wantStatus: http.StatusForbidden,
			wantBody:   "not allowed",
		},
		{
			name:       "unknown",
			err:        errors.New("pool exhausted"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err, "fallback message")

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestTrimSentinel(t *testing.T) {
	err := fmt.Errorf("cannot move back from review: %w", domain.ErrInvalidTransition)
	if got := trimSentinel(err, domain.ErrInvalidTransition); got != "cannot move back from review" {
		t.Errorf("unexpected trimmed message: %q", got)
	}
}

func TestReadJSONTooLarge(t *testing.T) {
	body := strings.NewReader(`{"title":"` + strings.Repeat("x", maxRequestBodySize+1) + `"}`)
	r := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	type payload struct {
		Title string `json:"title"`
	}
	if _, ok := readJSON[payload](rec, r); ok {
		t.Fatal("expected oversized body to be rejected")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestReadJSONInvalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()

	type payload struct{}
	if _, ok := readJSON[payload](rec, r); ok {
		t.Fatal("expected malformed body to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
