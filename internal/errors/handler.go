package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tabcleaner/internal/middleware"
)

// Problem type URIs following RFC 7807.
const (
	TypeValidation        = "/errors/validation"
	TypeNotFound          = "/errors/not-found"
	TypeUnsupportedFormat = "/errors/upload/unsupported-format"
	TypeDecodeFailed      = "/errors/upload/decode-failed"
	TypeEmptyFile         = "/errors/upload/empty-file"
	TypeInvalidStrategy   = "/errors/cleaning/invalid-strategy"
	TypeInvalidColumn     = "/errors/cleaning/invalid-column"
	TypeProcessingFailed  = "/errors/cleaning/processing-failed"
	TypeInternal          = "/errors/internal"
	TypeTimeout           = "/errors/timeout"
)

// ProblemDetails is the RFC 7807 response body.
type ProblemDetails struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     int                    `json:"status"`
	Detail     string                 `json:"detail,omitempty"`
	Instance   string                 `json:"instance,omitempty"`
	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails creates a problem details response.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// WithExtension attaches an extension member to the problem.
func (p *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if p.Extensions == nil {
		p.Extensions = make(map[string]interface{})
	}
	p.Extensions[key] = value
	return p
}

// Render writes the problem with its RFC 7807 media type. Problems
// bypass the render package's JSON responder so the content type stays
// application/problem+json.
func (p *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

// MarshalJSON flattens extensions into the problem object.
func (p *ProblemDetails) MarshalJSON() ([]byte, error) {
	base := map[string]interface{}{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		base["detail"] = p.Detail
	}
	if p.Instance != "" {
		base["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		base[k] = v
	}
	return json.Marshal(base)
}

// ErrorHandler converts application errors to RFC 7807 responses and logs
// them with request context.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger.With(slog.String("component", "error_handler"))}
}

// HandleError logs err and writes its problem-details rendering.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("error_type", string(TypeOf(err))),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := ErrorToProblem(err, r)
	if reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	if renderErr := problem.Render(w, r); renderErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to write problem response",
			slog.String("error", renderErr.Error()))
	}
}

// ErrorToProblem maps the error taxonomy onto HTTP problem details.
// Loader errors and configuration errors are client errors; anything
// unrecognized reports as an opaque processing failure.
func ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "The request took too long to process", r.URL.Path)
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", "An unexpected error occurred", r.URL.Path)
	}

	switch appErr.Type {
	case ErrTypeUnsupportedFormat:
		return NewProblemDetails(http.StatusUnsupportedMediaType, TypeUnsupportedFormat,
			"Unsupported File Format", appErr.Message, r.URL.Path)
	case ErrTypeDecode:
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeDecodeFailed,
			"File Could Not Be Decoded", appErr.Message, r.URL.Path)
	case ErrTypeEmptyFile:
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyFile,
			"Empty File", appErr.Message, r.URL.Path)
	case ErrTypeInvalidStrategy:
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidStrategy,
			"Invalid Cleaning Strategy", appErr.Message, r.URL.Path)
	case ErrTypeInvalidColumn:
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidColumn,
			"Invalid Column Reference", appErr.Message, r.URL.Path)
	case ErrTypeNotFound:
		return NewProblemDetails(http.StatusNotFound, TypeNotFound,
			"Resource Not Found", appErr.Message, r.URL.Path)
	case ErrTypeValidation:
		return NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", appErr.Message, r.URL.Path)
	case ErrTypeProcessingFailed:
		return NewProblemDetails(http.StatusInternalServerError, TypeProcessingFailed,
			"Processing Failed", appErr.Message, r.URL.Path)
	default:
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", appErr.Message, r.URL.Path)
	}
}
