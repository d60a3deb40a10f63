package handlers

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"intervai/server/internal/middleware"
	"intervai/server/internal/models"
	"intervai/server/internal/utils"
)

// Replier produces the interviewer's next message for a transcript.
type Replier interface {
	Reply(ctx context.Context, transcript []models.Message, mode, level string) (string, error)
	ProviderName() string
}

type InterviewHandler struct {
	replier Replier
	logger  *zap.Logger
}

func NewInterviewHandler(replier Replier, logger *zap.Logger) *InterviewHandler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &InterviewHandler{
		replier: replier,
		logger:  logger,
	}
}

// ChatHandler relays one interview turn. Upstream failures become a 500
// whose error field carries the origin message.
func (h *InterviewHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)
	requestID := requestIDFrom(r)

	reply, err := h.replier.Reply(r.Context(), req.Messages, req.Mode, req.Level)
	if err != nil {
		h.logger.Error("Interview reply failed",
			zap.String("request_id", requestID),
			zap.String("mode", req.Mode),
			zap.String("level", req.Level),
			zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ChatErrorResponse{Error: err.Error()})
		return
	}

	h.logger.Info("Interview reply generated",
		zap.String("request_id", requestID),
		zap.String("provider", h.replier.ProviderName()),
		zap.String("mode", req.Mode),
		zap.String("level", req.Level),
		zap.Int("turns", len(req.Messages)))

	utils.JSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// requestIDFrom prefers the id assigned by chi's RequestID middleware.
func requestIDFrom(r *http.Request) string {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.New().String()
}
