package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/store"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: app.Validationf("bad input"), want: http.StatusBadRequest},
		{name: "duplicate email conflict as 400", err: store.ErrDuplicateEmail, want: http.StatusBadRequest},
		{name: "duplicate title number conflict as 400", err: store.ErrDuplicateTitleNumber, want: http.StatusBadRequest},
		{name: "invalid credentials", err: app.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "expired session", err: app.ErrSessionExpired, want: http.StatusUnauthorized},
		{name: "forbidden", err: app.Forbiddenf("not yours"), want: http.StatusForbidden},
		{name: "disabled account", err: app.ErrAccountDisabled, want: http.StatusForbidden},
		{name: "parcel not found", err: store.ErrParcelNotFound, want: http.StatusNotFound},
		{name: "transfer not found", err: store.ErrTransferNotFound, want: http.StatusNotFound},
		{name: "unknown error hidden as 500", err: errors.New("pq: connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}

			var env envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if env.Success {
				t.Fatal("expected success=false")
			}
			if tt.want == http.StatusInternalServerError && env.Message != "Internal server error" {
				t.Fatalf("expected internal errors hidden, got %q", env.Message)
			}
		})
	}
}

func TestRespondListIncludesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	respondList(rec, http.StatusOK, []string{"a", "b"}, 2)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !env.Success || env.Count == nil || *env.Count != 2 {
		t.Fatalf("expected success envelope with count=2, got %+v", env)
	}
}
