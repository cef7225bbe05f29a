package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName         = "kanban-api/api"
	requestSpanName    = "board.request"
	observabilityEvent = "observability.event"
	eventDomain        = "kanban"

	boardEventName    = "board.read"
	commandsEventName = "board.commands"
	streamEventName   = "board.stream"
)

// requestMetrics records one request as a span plus a structured log entry.
type requestMetrics struct {
	logger    *log.Logger
	span      trace.Span
	route     string
	eventName string
	start     time.Time

	decodeDuration time.Duration
	applyDuration  time.Duration
	commands       int
	applied        int
	duplicates     int
	version        uint64
	notModified    bool
	errorStage     string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, route, eventName string) (*requestMetrics, context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, requestSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.route", route)),
	)
	return &requestMetrics{
		logger:    logger,
		span:      span,
		route:     route,
		eventName: eventName,
		start:     time.Now(),
	}, ctx
}

func (m *requestMetrics) ObserveDecode(d time.Duration) {
	if d > 0 {
		m.decodeDuration = d
	}
}

func (m *requestMetrics) ObserveApply(d time.Duration) {
	if d > 0 {
		m.applyDuration = d
	}
}

func (m *requestMetrics) SetCommands(total, applied, duplicates int) {
	m.commands = total
	m.applied = applied
	m.duplicates = duplicates
}

func (m *requestMetrics) SetVersion(v uint64) { m.version = v }

func (m *requestMetrics) SetNotModified(v bool) { m.notModified = v }

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log ends the span and emits the observability event.
func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.Float64("board.total_ms", durationToMillis(time.Since(m.start))),
		attribute.Int64("board.version", int64(m.version)),
	}
	if m.eventName == commandsEventName {
		attrs = append(attrs,
			attribute.Int("board.commands", m.commands),
			attribute.Int("board.commands_applied", m.applied),
			attribute.Int("board.commands_duplicate", m.duplicates),
		)
	}
	if m.notModified {
		attrs = append(attrs, attribute.Bool("board.not_modified", true))
	}
	if m.decodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("board.decode_ms", durationToMillis(m.decodeDuration)))
	}
	if m.applyDuration > 0 {
		attrs = append(attrs, attribute.Float64("board.apply_ms", durationToMillis(m.applyDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("board.error_stage", m.errorStage))
	}

	severityText, severityNumber := severityForStatus(status, err)
	eventAttrs := append([]attribute.KeyValue{
		attribute.String("event.name", m.eventName),
		attribute.String("event.domain", eventDomain),
		attribute.String("severity_text", severityText),
		attribute.Int("severity_number", severityNumber),
	}, attrs...)
	if err != nil {
		eventAttrs = append(eventAttrs, attribute.String("error.message", err.Error()))
	}

	m.span.SetAttributes(attrs...)
	m.span.AddEvent(observabilityEvent, trace.WithAttributes(eventAttrs...))
	switch {
	case err != nil:
		m.span.RecordError(err)
		m.span.SetStatus(codes.Error, err.Error())
	case status >= http.StatusInternalServerError:
		m.span.SetStatus(codes.Error, http.StatusText(status))
	default:
		m.span.SetStatus(codes.Ok, "")
	}
	m.span.End()

	if m.logger == nil {
		return
	}
	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      m.eventName,
		"event.domain":    eventDomain,
		"attributes":      attrMap,
		"severity_text":   severityText,
		"severity_number": severityNumber,
	}
	if sc := m.span.SpanContext(); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error(observabilityEvent)
	case "WARN":
		entry.Warn(observabilityEvent)
	default:
		entry.Info(observabilityEvent)
	}
}

func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
