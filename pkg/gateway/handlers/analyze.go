package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stratus-hq/helios/pkg/gateway/middleware"
	"stratus-hq/helios/pkg/gateway/types"
	"stratus-hq/helios/pkg/providers"
	"stratus-hq/helios/pkg/routing"
	"stratus-hq/helios/pkg/telemetry/logging"
	"stratus-hq/helios/pkg/telemetry/metrics"
	"stratus-hq/helios/pkg/usage"
)

// maxRequestBody bounds the analyze request body at 1MB.
const maxRequestBody = 1 << 20

var tracer = otel.Tracer("stratus-hq/helios/pkg/gateway/handlers")

// Analyzer is the provider chain as seen by the analyze handler.
type Analyzer interface {
	Analyze(ctx context.Context, req *providers.AnalysisRequest) (*providers.AnalysisResult, error)
}

// AnalyzeHandler serves POST /v1/analyze.
type AnalyzeHandler struct {
	chain      Analyzer
	collector  *metrics.Collector
	store      *usage.Store
	calculator *usage.Calculator
}

// NewAnalyzeHandler creates the analyze handler. The store and calculator
// may be nil when usage tracking is disabled; the collector may be nil when
// metrics are disabled.
func NewAnalyzeHandler(chain Analyzer, collector *metrics.Collector, store *usage.Store, calculator *usage.Calculator) *AnalyzeHandler {
	return &AnalyzeHandler{
		chain:      chain,
		collector:  collector,
		store:      store,
		calculator: calculator,
	}
}

// ServeHTTP handles a single analysis request.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var body types.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		types.WriteError(w, http.StatusBadRequest,
			types.ErrTypeInvalidRequest, "request body is not valid JSON")
		return
	}

	req := &providers.AnalysisRequest{
		SystemPrompt: body.SystemPrompt,
		UserPrompt:   body.UserPrompt,
		MaxTokens:    body.MaxTokens,
	}
	if err := req.Validate(); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrTypeInvalidRequest, err.Error())
		return
	}

	ctx, span := tracer.Start(r.Context(), "gateway.analyze")
	defer span.End()

	start := time.Now()
	result, err := h.chain.Analyze(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		h.writeAnalyzeError(w, r, err, elapsed)
		return
	}

	span.SetAttributes(
		attribute.String("provider", result.Provider),
		attribute.String("model", result.Model),
		attribute.Int("tokens.input", result.InputTokens),
		attribute.Int("tokens.output", result.OutputTokens),
	)

	var cost float64
	if h.calculator != nil {
		cost = h.calculator.Cost(result.Model, result.InputTokens, result.OutputTokens)
	}
	if h.collector != nil {
		h.collector.RecordRequest(result.Provider, result.Model, "success", elapsed,
			result.InputTokens, result.OutputTokens)
	}
	h.recordUsage(r, result, cost, elapsed, logger)

	types.WriteJSON(w, http.StatusOK, types.AnalyzeResponse{
		ID:       middleware.GetRequestID(r.Context()),
		Content:  result.Content,
		Model:    result.Model,
		Provider: result.Provider,
		Usage: types.Usage{
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			TotalTokens:  result.TotalTokens(),
		},
		Cost: cost,
	})
}

func (h *AnalyzeHandler) writeAnalyzeError(w http.ResponseWriter, r *http.Request, err error, elapsed time.Duration) {
	logger := logging.FromContext(r.Context())

	if h.collector != nil {
		h.collector.RecordRequest("", "", "error", elapsed, 0, 0)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		types.WriteError(w, http.StatusGatewayTimeout,
			types.ErrTypeTimeout, "analysis timed out")

	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		logger.Debug("request cancelled by client")

	case errors.Is(err, routing.ErrAllProvidersFailed):
		logger.Error("all providers failed", "error", err)
		types.WriteError(w, http.StatusBadGateway,
			types.ErrTypeUpstream, "all configured providers failed")

	default:
		var validationErr *providers.ValidationError
		if errors.As(err, &validationErr) {
			types.WriteError(w, http.StatusBadRequest,
				types.ErrTypeInvalidRequest, validationErr.Message)
			return
		}

		logger.Error("analysis failed", "error", err)
		types.WriteError(w, http.StatusBadGateway,
			types.ErrTypeUpstream, "upstream provider error")
	}
}

func (h *AnalyzeHandler) recordUsage(r *http.Request, result *providers.AnalysisResult, cost float64, elapsed time.Duration, logger *slog.Logger) {
	if h.store == nil {
		return
	}

	rec := &usage.Record{
		ID:           middleware.GetRequestID(r.Context()),
		Timestamp:    time.Now(),
		Key:          middleware.GetClientKey(r.Context()),
		Provider:     result.Provider,
		Model:        result.Model,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		Cost:         cost,
		LatencyMs:    elapsed.Milliseconds(),
	}

	// Usage accounting must not fail the request; write with a fresh
	// context so client disconnects cannot abort it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.Record(ctx, rec); err != nil {
		logger.Warn("failed to record usage", "error", err)
	}
}
