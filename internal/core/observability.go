package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"retailcore/pkg/domain"
)

// AuditStatus describes the outcome recorded for an audited operation.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry captures a single service operation for the audit trail.
type AuditEntry struct {
	ID         string            `json:"id"`
	Operation  string            `json:"operation"`
	Actor      string            `json:"actor,omitempty"`
	Entity     domain.EntityType `json:"entity,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	Status     AuditStatus       `json:"status"`
	Error      string            `json:"error,omitempty"`
	DurationMS float64           `json:"duration_ms"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// AuditRecorder receives audit entries emitted by the service layer.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder aggregates operation outcomes and latencies.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer creates spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// SlogAuditRecorder writes audit entries as structured log records. Entry ids
// are assigned on record when absent.
type SlogAuditRecorder struct {
	logger *slog.Logger
}

// NewSlogAuditRecorder constructs a recorder over the supplied logger. A nil
// logger falls back to slog.Default.
func NewSlogAuditRecorder(logger *slog.Logger) *SlogAuditRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditRecorder{logger: logger}
}

// Record implements AuditRecorder.
func (r *SlogAuditRecorder) Record(ctx context.Context, entry AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	level := slog.LevelInfo
	if entry.Status == AuditStatusError {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "audit",
		slog.String("audit_id", entry.ID),
		slog.String("operation", entry.Operation),
		slog.String("actor", entry.Actor),
		slog.String("entity", string(entry.Entity)),
		slog.String("entity_id", entry.EntityID),
		slog.String("status", string(entry.Status)),
		slog.String("error", entry.Error),
		slog.Float64("duration_ms", entry.DurationMS),
	)
}
