package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/koxixo/orders-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "bad input" {
		t.Fatalf("expected specific message, got %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatal("expected details to pass through")
	}
}

func TestWriteErrorStateConflict(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeStateConflict, "approve not allowed from status approved")
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message != "approve not allowed from status approved" {
		t.Fatalf("expected transition detail in message, got %q", body.Error.Message)
	}
}

func TestWriteErrorDependencyIsRetryable(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "order store unavailable")
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if !body.Error.Retryable {
		t.Fatal("dependency failures must be marked retryable")
	}
	if body.Error.Message == "connection refused" {
		t.Fatal("internal cause must not leak to the client")
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal errors must stay generic, got %q", body.Error.Message)
	}
}
