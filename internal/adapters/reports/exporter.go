// Package reports exports aggregate reports as JSON and CSV artifacts through
// a queued background worker.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"retailcore/internal/blob"
	"retailcore/internal/core"
)

// Kind identifies one of the built-in aggregate reports.
type Kind string

const (
	KindDailyRevenue    Kind = "daily_revenue"
	KindTopProducts     Kind = "top_products"
	KindRevenueBySeller Kind = "revenue_by_seller"
	KindLowStock        Kind = "low_stock"
)

// Valid reports whether the kind names a built-in report.
func (k Kind) Valid() bool {
	switch k {
	case KindDailyRevenue, KindTopProducts, KindRevenueBySeller, KindLowStock:
		return true
	}
	return false
}

// Format identifies an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportInput represents an enqueue request for the worker. Limit applies to
// the top-products report and Threshold to low-stock; zero values take the
// report defaults.
type ExportInput struct {
	Report      Kind
	Formats     []Format
	Limit       int
	Threshold   int
	RequestedBy string
}

// ExportArtifact captures a stored report artifact.
type ExportArtifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportRecord tracks an export request and resulting artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	Report      Kind             `json:"report"`
	Formats     []Format         `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	return dup
}

// Worker executes report exports asynchronously. Artifacts land in the blob
// store under reports/<kind>/<export id>.<ext>.
type Worker struct {
	generator *core.ReportGenerator
	store     blob.Store
	audit     core.AuditRecorder

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id    string
	input ExportInput
}

// NewWorker constructs an export worker over the report generator and blob
// store. The audit recorder may be nil.
func NewWorker(generator *core.ReportGenerator, store blob.Store, audit core.AuditRecorder) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		generator: generator,
		store:     store,
		audit:     audit,
		queue:     make(chan exportTask, 32),
		jobs:      make(map[string]*ExportRecord),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// Enqueue schedules an export job and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if !input.Report.Valid() {
		return ExportRecord{}, fmt.Errorf("unknown report %q", input.Report)
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	seen := make(map[Format]struct{}, len(formats))
	uniq := make([]Format, 0, len(formats))
	for _, format := range formats {
		if format != FormatJSON && format != FormatCSV {
			return ExportRecord{}, fmt.Errorf("unsupported format %q", format)
		}
		if _, dup := seen[format]; dup {
			continue
		}
		seen[format] = struct{}{}
		uniq = append(uniq, format)
	}

	now := time.Now().UTC()
	record := ExportRecord{
		ID:          uuid.NewString(),
		Report:      input.Report,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[record.ID] = &record
	queued := record.copy()
	w.mu.Unlock()

	select {
	case w.queue <- exportTask{id: record.ID, input: input}:
	default:
		w.mu.Lock()
		delete(w.jobs, record.ID)
		w.mu.Unlock()
		return ExportRecord{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task exportTask) {
	w.setStatus(task.id, ExportStatusRunning, "")

	table, err := w.render(task.input)
	if err != nil {
		w.fail(task.id, err.Error())
		return
	}

	record, ok := w.Get(task.id)
	if !ok {
		return
	}
	artifacts := make([]ExportArtifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, contentType, err := encode(table, format)
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		key := fmt.Sprintf("reports/%s/%s.%s", record.Report, record.ID, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"report": string(record.Report), "rows": strconv.Itoa(len(table.rows))},
		})
		if err != nil {
			w.fail(task.id, fmt.Sprintf("store artifact: %v", err))
			return
		}
		artifacts = append(artifacts, ExportArtifact{
			Key:         info.Key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			CreatedAt:   info.LastModified,
		})
	}
	w.complete(task.id, artifacts)
}

// table is the normalized shape every report renders to. value carries the
// typed rows for JSON output; rows carries the CSV projection.
type table struct {
	columns []string
	rows    [][]string
	value   any
}

func (w *Worker) render(input ExportInput) (table, error) {
	switch input.Report {
	case KindDailyRevenue:
		rows, err := w.generator.DailyRevenue(w.ctx)
		if err != nil {
			return table{}, err
		}
		out := table{columns: []string{"date", "revenue"}, value: rows}
		for _, row := range rows {
			out.rows = append(out.rows, []string{row.Date, formatAmount(row.Revenue)})
		}
		return out, nil
	case KindTopProducts:
		rows, err := w.generator.TopProducts(w.ctx, input.Limit)
		if err != nil {
			return table{}, err
		}
		out := table{columns: []string{"product_id", "name", "quantity"}, value: rows}
		for _, row := range rows {
			out.rows = append(out.rows, []string{row.ProductID, row.Name, strconv.Itoa(row.Quantity)})
		}
		return out, nil
	case KindRevenueBySeller:
		rows, err := w.generator.RevenueBySeller(w.ctx)
		if err != nil {
			return table{}, err
		}
		out := table{columns: []string{"seller_id", "name", "revenue"}, value: rows}
		for _, row := range rows {
			out.rows = append(out.rows, []string{row.SellerID, row.Name, formatAmount(row.Revenue)})
		}
		return out, nil
	case KindLowStock:
		rows, err := w.generator.LowStock(w.ctx, input.Threshold)
		if err != nil {
			return table{}, err
		}
		out := table{columns: []string{"product_id", "name", "category", "price", "stock"}, value: rows}
		for _, row := range rows {
			out.rows = append(out.rows, []string{row.ID, row.Name, row.Category, formatAmount(row.Price), strconv.Itoa(row.Stock)})
		}
		return out, nil
	default:
		return table{}, fmt.Errorf("unknown report %q", input.Report)
	}
}

func encode(t table, format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(t.value, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(t.columns); err != nil {
			return nil, "", err
		}
		for _, row := range t.rows {
			if err := writer.Write(row); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (w *Worker) setStatus(id string, status ExportStatus, message string) {
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = time.Now().UTC()
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, artifacts []ExportArtifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor string
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor = record.RequestedBy
	}
	w.mu.Unlock()
	if w.audit != nil {
		w.audit.Record(w.ctx, core.AuditEntry{
			Operation:  "export_report",
			Actor:      actor,
			EntityID:   id,
			Status:     core.AuditStatusSuccess,
			RecordedAt: now,
		})
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor string
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor = record.RequestedBy
	}
	w.mu.Unlock()
	if w.audit != nil {
		w.audit.Record(w.ctx, core.AuditEntry{
			Operation:  "export_report",
			Actor:      actor,
			EntityID:   id,
			Status:     core.AuditStatusError,
			Error:      reason,
			RecordedAt: now,
		})
	}
}
