package tasks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"task-analyzer-backend/internal/analytics"
	"task-analyzer-backend/internal/logging"
	"task-analyzer-backend/internal/schema"
)

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 64 << 10

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, "")
	return false
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeBody reads a single JSON object into dst. An empty body decodes to
// the zero value, so the caller reports the missing field instead.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// fail maps a pipeline error to a 500 response. Validation failures carry
// their classification; anything else gets only the generic message.
func (h *TaskHandler) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error, generic string) (outcome, kind string) {
	log := logging.For(r.Context(), h.Log).With(zap.String("endpoint", endpoint))

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		log.Warn("model returned invalid structure",
			zap.String("kind", string(ve.Kind)),
			zap.String("field", ve.Field),
			zap.String("value", ve.Value),
			zap.NamedError("cause", ve.Err),
		)
		h.Metrics.RecordValidationFailure(r.Context(), endpoint, string(ve.Kind))
		writeError(w, http.StatusInternalServerError, msgInvalidStructure, ve.Details())
		return outcomeInvalidOutput, string(ve.Kind)
	}

	log.Error("provider call failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, generic, "")
	return outcomeTransportError, ""
}

func (h *TaskHandler) finish(r *http.Request, endpoint, outcome, kind string, textLen int, start time.Time) {
	took := time.Since(start).Milliseconds()
	h.Metrics.RecordRequest(r.Context(), endpoint, outcome, took)

	env := analytics.FromRequest(r)
	env.RequestID, _ = logging.RequestIDFromContext(r.Context())

	// не логируем сырой текст, только длину
	props := map[string]any{
		"endpoint":    endpoint,
		"outcome":     outcome,
		"text_len":    textLen,
		"duration_ms": took,
	}
	if kind != "" {
		props["failure_kind"] = kind
	}

	if err := h.Events.Record(r.Context(), env, "task_"+endpoint, props, analytics.SourceEventKeyFromRequest(r)); err != nil {
		logging.For(r.Context(), h.Log).Warn("analytics event not stored", zap.Error(err))
	}
}
