package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"intervai/server/internal/middleware"
	"intervai/server/internal/models"
	"intervai/server/internal/records"
	"intervai/server/internal/utils"
)

const (
	defaultRecordLimit = 20
	maxRecordLimit     = 100
)

// RecordLister reads back a user's completed interviews.
type RecordLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error)
}

type RecordHandler struct {
	store  records.Store
	lister RecordLister
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordHandler accepts a nil store or lister when that side is not
// configured; the matching endpoint then answers 503.
func NewRecordHandler(store records.Store, lister RecordLister, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &RecordHandler{
		store:  store,
		lister: lister,
		logger: logger,
		now:    time.Now,
	}
}

func (h *RecordHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "Authentication required"})
		return
	}
	if h.store == nil {
		storeUnavailable(w)
		return
	}
	req := middleware.GetValidatedRequest[*models.RecordRequest](r)

	record := &models.InterviewRecord{
		UserID:      identity.UserID,
		UserEmail:   identity.Email,
		Mode:        req.Mode,
		Level:       req.Level,
		Score:       req.Score,
		CompletedAt: h.now(),
	}
	if err := h.store.Append(r.Context(), record); err != nil {
		h.logger.Error("Failed to store interview record",
			zap.String("request_id", requestIDFrom(r)),
			zap.String("user_id", identity.UserID),
			zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "record_error",
			Message: "Failed to store interview record",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, record)
}

func (h *RecordHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "Authentication required"})
		return
	}
	if h.lister == nil {
		storeUnavailable(w)
		return
	}

	limit := defaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "invalid_limit",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxRecordLimit)
	}

	list, err := h.lister.ListByUser(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Error("Failed to list interview records", zap.String("user_id", identity.UserID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "record_error",
			Message: "Failed to load interview records",
		})
		return
	}

	utils.JSON(w, http.StatusOK, list)
}

func storeUnavailable(w http.ResponseWriter) {
	utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
		Code:    "records_disabled",
		Message: "Interview record store is not configured",
	})
}
