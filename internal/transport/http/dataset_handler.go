package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tabcleaner/internal/chartprep"
	"tabcleaner/internal/cleaning"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/services"
)

// DatasetServiceInterface is the service surface the handler needs;
// tests substitute a fake.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, content []byte, filename string) (*services.UploadResult, error)
	Preview(ctx context.Context, id string, headRows int) (*services.Preview, error)
	Clean(ctx context.Context, id string, cfg cleaning.Config) (*cleaning.Report, error)
	Chart(ctx context.Context, id string, req chartprep.Request) (*chartprep.Chart, error)
	Export(ctx context.Context, id string, format services.ExportFormat, w io.Writer) error
	Delete(ctx context.Context, id string) error
}

// DatasetHandler serves the dataset REST surface.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apperrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewDatasetHandler creates the handler.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Preview)
		r.Delete("/", h.Delete)
		r.Post("/clean", h.Clean)
		r.Post("/chart", h.Chart)
		r.Get("/export/summary", h.ExportSummary)
		r.Get("/export/{format}", h.Export)
	})
	return r
}

// DatasetCtx validates the dataset id parameter.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "" {
			h.errorHandler.HandleError(w, r,
				apperrors.New(apperrors.ErrTypeValidation, "dataset id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets: a multipart form with a "file"
// part. The body is capped at the configured upload limit.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "multipart form needs a file part", err))
		return
	}
	defer file.Close()

	content, err := readUpload(file)
	if err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "failed to read upload", err))
		return
	}

	result, err := h.service.Upload(r.Context(), content, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// Preview handles GET /api/datasets/{id}?rows=N.
func (h *DatasetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	headRows := 0
	if raw := r.URL.Query().Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorHandler.HandleError(w, r,
				apperrors.Newf(apperrors.ErrTypeValidation, "invalid rows parameter %q", raw))
			return
		}
		headRows = n
	}

	preview, err := h.service.Preview(r.Context(), chi.URLParam(r, "id"), headRows)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, preview)
}

// Clean handles POST /api/datasets/{id}/clean with a CleaningConfig
// body. Structural validation runs here; strategy and column checks run
// inside the pipeline, before any mutation.
func (h *DatasetHandler) Clean(w http.ResponseWriter, r *http.Request) {
	var cfg cleaning.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "invalid cleaning config body", err))
		return
	}
	if err := h.validate.Struct(cfg); err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "cleaning config failed validation", err))
		return
	}

	report, err := h.service.Clean(r.Context(), chi.URLParam(r, "id"), cfg)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Chart handles POST /api/datasets/{id}/chart.
func (h *DatasetHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req chartprep.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "invalid chart request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r,
			apperrors.Wrap(apperrors.ErrTypeValidation, "chart request failed validation", err))
		return
	}

	chart, err := h.service.Chart(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, chart)
}

// exportContentTypes maps formats onto download headers.
var exportContentTypes = map[services.ExportFormat]struct {
	contentType string
	extension   string
}{
	services.FormatCSV:  {"text/csv; charset=utf-8", "csv"},
	services.FormatXLSX: {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
	services.FormatJSON: {"application/json", "json"},
}

// Export handles GET /api/datasets/{id}/export/{format}.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := services.ExportFormat(chi.URLParam(r, "format"))
	meta, ok := exportContentTypes[format]
	if !ok {
		h.errorHandler.HandleError(w, r,
			apperrors.Newf(apperrors.ErrTypeValidation, "unsupported export format %q", string(format)))
		return
	}

	w.Header().Set("Content-Type", meta.contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="cleaned_data.`+meta.extension+`"`)
	if err := h.service.Export(r.Context(), chi.URLParam(r, "id"), format, w); err != nil {
		// Headers may already be out; log rather than re-render.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// ExportSummary handles GET /api/datasets/{id}/export/summary, the
// multi-sheet analysis report.
func (h *DatasetHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="data_analysis_report.xlsx"`)
	if err := h.service.Export(r.Context(), chi.URLParam(r, "id"), services.FormatSummary, w); err != nil {
		h.logger.ErrorContext(r.Context(), "summary export failed",
			slog.String("error", err.Error()))
	}
}

// Delete handles DELETE /api/datasets/{id}.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func readUpload(file multipart.File) ([]byte, error) {
	return io.ReadAll(file)
}
