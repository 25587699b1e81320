package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quran-mood-gateway/internal/middleware"
	"quran-mood-gateway/internal/normalize"
	"quran-mood-gateway/internal/verses"
	"quran-mood-gateway/pkg/logging/logging"
	"quran-mood-gateway/pkg/types"
)

// MoodService is satisfied by *verses.Service.
type MoodService interface {
	VersesByMood(ctx context.Context, clientID, raw string) (*types.MoodResponse, error)
}

// MoodRequest is the body of POST /v1/verses.
type MoodRequest struct {
	Mood   string `json:"mood" validate:"required,max=200"`
	Locale string `json:"locale,omitempty" validate:"omitempty,oneof=en bn"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VersesHandler is the REST mirror of the getVersesByMood query.
type VersesHandler struct {
	svc      MoodService
	validate *validator.Validate
}

func NewVersesHandler(svc MoodService) *VersesHandler {
	return &VersesHandler{svc: svc, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// VersesByMood handles POST /v1/verses.
func (h *VersesHandler) VersesByMood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, verses.CodeInvalidInput, "request body too large")
			return
		}
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, verses.CodeInvalidInput, "invalid JSON")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		msg := validationMessage(err)
		logger.Info("request validation failed", zap.String("reason", msg))
		writeError(w, http.StatusBadRequest, verses.CodeInvalidInput, msg)
		return
	}

	resp, err := h.svc.VersesByMood(ctx, middleware.ClientIPFromContext(ctx), req.Mood)
	if err != nil {
		status := statusFor(err)
		var rl *verses.RateLimitedError
		if errors.As(err, &rl) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfterSeconds))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("verses request failed", zap.Error(err), zap.Int("status", status))
		}
		writeError(w, status, verses.Code(err), verses.PublicMessage(err))
		return
	}

	logger.Debug("verses request completed",
		zap.Int("verses", len(resp.Verses)),
		zap.Duration("total_latency", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid mood input"
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Mood" && fe.Tag() == "required":
		return "invalid mood input: " + normalize.ErrEmpty.Error()
	case fe.Field() == "Mood" && fe.Tag() == "max":
		return "invalid mood input: " + normalize.ErrTooLong.Error()
	case fe.Field() == "Locale":
		return fmt.Sprintf("unsupported locale %q", fe.Value())
	default:
		return fmt.Sprintf("invalid %s", fe.Field())
	}
}

func statusFor(err error) int {
	switch verses.Code(err) {
	case verses.CodeInvalidInput:
		return http.StatusBadRequest
	case verses.CodeRateLimited:
		return http.StatusTooManyRequests
	case verses.CodeNoVersesFound:
		return http.StatusUnprocessableEntity
	case verses.CodeNoContentFetched:
		return http.StatusBadGateway
	case verses.CodeUsageLimit, verses.CodeNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
