package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"intervai/server/internal/config"
	"intervai/server/internal/handlers"
	"intervai/server/internal/llm"
	"intervai/server/internal/models"
	"intervai/server/internal/prompts"
	"intervai/server/internal/records"
)

type fakeReplier struct{}

func (fakeReplier) Reply(context.Context, []models.Message, string, string) (string, error) {
	return "first question", nil
}
func (fakeReplier) ProviderName() string { return "fake" }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

var _ handlers.Replier = fakeReplier{}

func useSQLite(t *testing.T) {
	t.Helper()
	original := openDatabase
	t.Cleanup(func() { openDatabase = original })
	openDatabase = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Provider:       "groq",
		Temperature:    0.7,
		LLMTimeout:     5 * time.Second,
		AllowedOrigins: []string{"http://localhost:5173"},
		RecordBackend:  "none",
	}
}

func TestInitRecordBackend_None(t *testing.T) {
	backend, err := initRecordBackend(testConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.store != nil || backend.repo != nil || backend.pinger != nil {
		t.Fatalf("expected empty backend, got %+v", backend)
	}
}

func TestInitRecordBackend_Postgres(t *testing.T) {
	useSQLite(t)
	cfg := testConfig()
	cfg.RecordBackend = "postgres"

	backend, err := initRecordBackend(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.store.(*records.Repository); !ok {
		t.Fatalf("expected repository store, got %T", backend.store)
	}
	if err := backend.pinger.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}
	if backend.subscriber != nil {
		t.Fatal("postgres backend should not start a subscriber")
	}
}

func TestInitRecordBackend_Redis(t *testing.T) {
	useSQLite(t)
	mr := miniredis.RunT(t)
	original := newRedisClient
	t.Cleanup(func() { newRedisClient = original })
	newRedisClient = func(string) *redis.Client { return redis.NewClient(&redis.Options{Addr: mr.Addr()}) }

	cfg := testConfig()
	cfg.RecordBackend = "redis"

	backend, err := initRecordBackend(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.close()

	if _, ok := backend.store.(*records.Publisher); !ok {
		t.Fatalf("expected publisher store, got %T", backend.store)
	}
	if backend.subscriber == nil || backend.repo == nil {
		t.Fatal("expected subscriber and repository")
	}
	if err := backend.pinger.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}
}

func TestInitRecordBackend_DatabaseFailure(t *testing.T) {
	original := openDatabase
	t.Cleanup(func() { openDatabase = original })
	openDatabase = func(string) (*gorm.DB, error) { return nil, errors.New("dial failed") }

	cfg := testConfig()
	cfg.RecordBackend = "postgres"

	if _, err := initRecordBackend(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected database error")
	}
}

func TestPingAll(t *testing.T) {
	if err := (pingAll{fakePinger{}, fakePinger{}}).Ping(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	want := errors.New("redis down")
	if err := (pingAll{fakePinger{}, fakePinger{err: want}}).Ping(context.Background()); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestRegisterRoutes(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg)
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	var provider llm.Provider
	healthHandler := handlers.NewHealthHandler(provider, promptManager, cfg, nil)
	interviewHandler := handlers.NewInterviewHandler(fakeReplier{}, zap.NewNop())

	registerRoutes(router, cfg, interviewHandler, nil, healthHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /healthz to be registered, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/interview/chat",
		bytes.NewBufferString(`{"messages":[],"mode":"technical","level":"easy"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected chat to answer 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/interview/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
}
