package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/vlm-transcriber/internal/config"
	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
	"github.com/kirillkom/vlm-transcriber/internal/core/ports"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/export"
	"github.com/kirillkom/vlm-transcriber/internal/observability/metrics"
)

const serviceName = "vlm-transcriber"

// multipart parse ceiling; individual file limits are enforced by the
// validator, this only bounds in-memory form buffering
const maxMultipartMemory = 32 << 20

type Router struct {
	cfg       config.Config
	processor ports.BatchProcessor
	exporter  ports.ResultExporter
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	processor ports.BatchProcessor,
	exporter ports.ResultExporter,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		processor: processor,
		exporter:  exporter,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.index)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/batches", rt.processBatch)
	mux.HandleFunc("/v1/exports/csv", rt.exportCSV)
	mux.HandleFunc("/v1/exports/xlsx", rt.exportXLSX)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 5*time.Second)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type batchResponse struct {
	BatchID string                    `json:"batch_id"`
	Count   int                       `json:"count"`
	Results []domain.ExtractionResult `json:"results"`
	Columns domain.ColumnMapping      `json:"columns"`
}

func (rt *Router) processBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'images' is required"})
		return
	}

	items := make([]domain.ImageItem, 0, len(files))
	for _, fh := range files {
		item, err := readUpload(fh, r.FormValue("description_"+fh.Filename))
		if err != nil {
			writeError(w, err)
			return
		}
		items = append(items, item)
	}

	mapping := domain.DefaultColumnMapping()
	if raw := r.FormValue("columns"); raw != "" {
		overrides := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'columns' JSON"})
			return
		}
		mapping = mapping.Merge(overrides)
	}

	start := time.Now()
	results, err := rt.processor.ProcessBatch(r.Context(), items)
	if err != nil {
		rt.recordBatch("rejected", nil, len(items), 0)
		writeError(w, err)
		return
	}
	rt.recordBatch("completed", results, len(items), time.Since(start))

	switch r.FormValue("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, batchResponse{
			BatchID: uuid.NewString(),
			Count:   len(results),
			Results: results,
			Columns: mapping,
		})
	case "csv":
		rt.sendCSV(w, results, mapping)
	case "xlsx":
		rt.sendXLSX(w, results, mapping, rt.separateSheets(r.FormValue("separate_sheets")))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json, csv or xlsx"})
	}
}

type exportRequest struct {
	Results        []domain.ExtractionResult `json:"results"`
	Columns        map[string]string         `json:"columns,omitempty"`
	SeparateSheets *bool                     `json:"separate_sheets,omitempty"`
}

func (rt *Router) exportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}
	rt.sendCSV(w, req.Results, domain.DefaultColumnMapping().Merge(req.Columns))
}

func (rt *Router) exportXLSX(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}
	separate := rt.cfg.SeparateSheets
	if req.SeparateSheets != nil {
		separate = *req.SeparateSheets
	}
	rt.sendXLSX(w, req.Results, domain.DefaultColumnMapping().Merge(req.Columns), separate)
}

func decodeExportRequest(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	var req exportRequest
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return req, false
	}
	if len(req.Results) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "'results' is required"})
		return req, false
	}
	return req, true
}

func (rt *Router) sendCSV(w http.ResponseWriter, results []domain.ExtractionResult, mapping domain.ColumnMapping) {
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, "csv")
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.DownloadFilename("csv", time.Now())))
	if err := rt.exporter.WriteCSV(w, results, mapping); err != nil {
		// headers are already out; nothing sensible left to send
		return
	}
}

func (rt *Router) sendXLSX(w http.ResponseWriter, results []domain.ExtractionResult, mapping domain.ColumnMapping, separateSheets bool) {
	data, err := rt.exporter.Workbook(results, mapping, separateSheets)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, "xlsx")
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.DownloadFilename("xlsx", time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (rt *Router) separateSheets(formValue string) bool {
	if formValue == "" {
		return rt.cfg.SeparateSheets
	}
	parsed, err := strconv.ParseBool(formValue)
	if err != nil {
		return rt.cfg.SeparateSheets
	}
	return parsed
}

func (rt *Router) recordBatch(outcome string, results []domain.ExtractionResult, size int, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	statuses := make([]string, 0, len(results))
	for _, r := range results {
		statuses = append(statuses, string(r.Status))
	}
	rt.metrics.RecordBatch(serviceName, outcome, statuses, size, duration)
}

func readUpload(fh *multipart.FileHeader, description string) (domain.ImageItem, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.ImageItem{}, domain.WrapError(domain.ErrInvalidInput, "read_upload", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageItem{}, domain.WrapError(domain.ErrInvalidInput, "read_upload", err)
	}
	return domain.NewImageItem(fh.Filename, raw, description)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
