package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Technical ": "technical",
		"HR":           "hr",
		"":             "",
		"\tmedium\n":   "medium",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"reply": "hello"}

	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["reply"] != "hello" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}
}

func TestLoggers(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil")
	}
	if GetLogger() != GetLogger() {
		t.Fatal("GetLogger should return the shared logger")
	}

	for _, development := range []bool{true, false} {
		l, err := NewLogger(development)
		if err != nil {
			t.Fatalf("NewLogger(%v) returned error: %v", development, err)
		}
		if l == nil {
			t.Fatalf("NewLogger(%v) returned nil logger", development)
		}
	}
}
