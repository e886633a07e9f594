package broadcast

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrapPlainTextReturnsBodyAsPlainText200(t *testing.T) {
	h := WrapPlainText(func(r *http.Request) string { return "strategy=momentum\n" })

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("content-type = %q, want text/plain", ct)
	}
	if rec.Body.String() != "strategy=momentum\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected permissive CORS header")
	}
}

func TestWrapPlainTextStillReturns200OnErrorText(t *testing.T) {
	h := WrapPlainText(func(r *http.Request) string { return "error: unknown strategy" })

	req := httptest.NewRequest(http.MethodPost, "/control", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for an error body", rec.Code)
	}
}

func TestWrapPlainTextAnswersOptionsPreflightWith204(t *testing.T) {
	h := WrapPlainText(func(r *http.Request) string {
		t.Fatal("body must not be invoked for an OPTIONS preflight")
		return ""
	})

	req := httptest.NewRequest(http.MethodOptions, "/control", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
