package handlers

import (
	"context"
	"net/http"
	"time"

	"intervai/server/internal/config"
	"intervai/server/internal/llm"
	"intervai/server/internal/prompts"
	"intervai/server/internal/utils"
)

const serviceName = "intervai"

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

// Pinger is implemented by record stores that hold a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	recordStore   Pinger
}

// NewHealthHandler takes a nil recordStore when records are disabled.
func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, recordStore Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		recordStore:   recordStore,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true
	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: "failed", Message: message}
		allChecksPass = false
	}
	pass := func(name string) {
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	if handler.provider == nil {
		fail("provider", "AI provider not initialized")
	} else {
		pass("provider")
	}

	switch {
	case handler.promptManager == nil:
		fail("prompt_manager", "Prompt manager not initialized")
	case len(handler.promptManager.GetTemplates()) == 0:
		fail("prompt_manager", "No prompt templates loaded")
	default:
		pass("prompt_manager")
	}

	if handler.config == nil {
		fail("configuration", "Configuration not loaded")
	} else {
		pass("configuration")
	}

	if handler.recordStore != nil {
		ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
		defer cancel()
		if err := handler.recordStore.Ping(ctx); err != nil {
			fail("record_store", err.Error())
		} else {
			pass("record_store")
		}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
