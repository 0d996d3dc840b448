package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"task-analyzer-backend/internal/ai"
	"task-analyzer-backend/internal/analytics"
	"task-analyzer-backend/internal/logging"
	"task-analyzer-backend/internal/metrics"
	"task-analyzer-backend/internal/schema"
)

// TaskHandler serves /api/analyze and /api/suggest. It holds no per-request
// state; every field is set once at startup and only read afterwards.
type TaskHandler struct {
	AI      ai.Provider
	Log     *zap.Logger
	Metrics metrics.Collector
	Events  analytics.Recorder

	// Now supplies "today" for analysis prompts; it is read per request.
	Now func() time.Time
}

func New(provider ai.Provider, log *zap.Logger, m metrics.Collector, events analytics.Recorder) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNoopCollector()
	}
	if events == nil {
		events = analytics.NopRecorder{}
	}
	return &TaskHandler{
		AI:      provider,
		Log:     log,
		Metrics: m,
		Events:  events,
		Now:     time.Now,
	}
}

// AnalyzeTask runs the analysis pipeline: prompt, provider call, validation.
func (h *TaskHandler) AnalyzeTask(ctx context.Context, taskText string) (schema.TaskAnalysis, error) {
	prompt := ai.BuildAnalysisPrompt(schema.TaskAnalysisSchema, taskText, h.Now())

	raw, err := h.generate(ctx, endpointAnalyze, prompt.Request(schema.TaskAnalysisSchema))
	if err != nil {
		return schema.TaskAnalysis{}, err
	}
	return schema.ValidateTaskAnalysis(raw)
}

// SuggestTasks runs the suggestion pipeline: prompt, provider call, validation.
func (h *TaskHandler) SuggestTasks(ctx context.Context, partial string) (schema.SuggestionList, error) {
	prompt := ai.BuildSuggestionPrompt(schema.SuggestionListSchema, partial)

	raw, err := h.generate(ctx, endpointSuggest, prompt.Request(schema.SuggestionListSchema))
	if err != nil {
		return schema.SuggestionList{}, err
	}
	return schema.ValidateSuggestionList(raw)
}

func (h *TaskHandler) generate(ctx context.Context, endpoint string, req ai.Request) (string, error) {
	start := time.Now()
	raw, err := h.AI.Generate(ctx, req)

	status := outcomeOK
	if err != nil {
		status = "error"
	}
	h.Metrics.RecordProviderCall(ctx, endpoint, status, time.Since(start).Milliseconds())

	logging.For(ctx, h.Log).Debug("provider call finished",
		zap.String("endpoint", endpoint),
		zap.Duration("took", time.Since(start)),
		zap.Int("response_len", len(raw)),
		zap.Error(err),
	)
	return raw, err
}

// Analyze handles POST /api/analyze.
func (h *TaskHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !requirePost(w, r) {
		h.finish(r, endpointAnalyze, outcomeMethodNotAllowed, "", 0, start)
		return
	}

	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		logging.For(r.Context(), h.Log).Debug("rejected request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidJSON, detailsInvalidJSON)
		h.finish(r, endpointAnalyze, outcomeBadRequest, "", 0, start)
		return
	}
	if strings.TrimSpace(req.TaskText) == "" {
		writeError(w, http.StatusBadRequest, msgMissingTaskText, "")
		h.finish(r, endpointAnalyze, outcomeBadRequest, "", 0, start)
		return
	}

	result, err := h.AnalyzeTask(r.Context(), req.TaskText)
	if err != nil {
		outcome, kind := h.fail(w, r, endpointAnalyze, err, msgAnalyzeFailed)
		h.finish(r, endpointAnalyze, outcome, kind, len(req.TaskText), start)
		return
	}

	writeJSON(w, http.StatusOK, result)
	h.finish(r, endpointAnalyze, outcomeOK, "", len(req.TaskText), start)
}

// Suggest handles POST /api/suggest.
func (h *TaskHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !requirePost(w, r) {
		h.finish(r, endpointSuggest, outcomeMethodNotAllowed, "", 0, start)
		return
	}

	var req SuggestRequest
	if err := decodeBody(w, r, &req); err != nil {
		logging.For(r.Context(), h.Log).Debug("rejected request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidJSON, detailsInvalidJSON)
		h.finish(r, endpointSuggest, outcomeBadRequest, "", 0, start)
		return
	}
	if strings.TrimSpace(req.PartialTask) == "" {
		writeError(w, http.StatusBadRequest, msgMissingPartial, "")
		h.finish(r, endpointSuggest, outcomeBadRequest, "", 0, start)
		return
	}

	result, err := h.SuggestTasks(r.Context(), req.PartialTask)
	if err != nil {
		outcome, kind := h.fail(w, r, endpointSuggest, err, msgSuggestFailed)
		h.finish(r, endpointSuggest, outcome, kind, len(req.PartialTask), start)
		return
	}

	writeJSON(w, http.StatusOK, result)
	h.finish(r, endpointSuggest, outcomeOK, "", len(req.PartialTask), start)
}
