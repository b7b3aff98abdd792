package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"municipal-statements/internal/audit"
	"municipal-statements/internal/observability/metrics"
	"municipal-statements/internal/statement/application"
	statement "municipal-statements/internal/statement/domain"
)

// Route patterns served by StatementHandler.
const (
	RoutePDF  = "/api/v1/statements/{accountNumber}/{year}/{month}/statement.pdf"
	RouteXLSX = "/api/v1/statements/{accountNumber}/{year}/{month}/statement.xlsx"
)

// StatementService generates statements.
type StatementService interface {
	Generate(ctx context.Context, req application.Request) (application.Document, error)
	BuildModel(ctx context.Context, req application.Request) (statement.StatementModel, error)
}

type statementPath struct {
	AccountNumber string `validate:"required,max=32,alphanum"`
	Year          string `validate:"required,len=4,numeric"`
	Month         string `validate:"required,len=2,numeric"`
}

// StatementHandler serves statement downloads.
type StatementHandler struct {
	service     StatementService
	auditLogger audit.Logger
	logger      *slog.Logger
	validate    *validator.Validate
	rateLimit   func(http.Handler) http.Handler
}

// HandlerOption configures a StatementHandler.
type HandlerOption func(*StatementHandler)

// WithRateLimit throttles downloads per client IP to requests per window.
func WithRateLimit(requests int, window time.Duration) HandlerOption {
	return func(h *StatementHandler) {
		if requests <= 0 || window <= 0 {
			h.rateLimit = nil
			return
		}
		h.rateLimit = httprate.Limit(requests, window, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			ip := audit.ClientIP(r)
			if parsed := net.ParseIP(ip); parsed != nil {
				return "ip:" + parsed.String(), nil
			}
			return "ip:" + ip, nil
		}))
	}
}

// WithHandlerLogger sets the handler logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *StatementHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewStatementHandler constructs a handler.
func NewStatementHandler(service StatementService, auditLogger audit.Logger, opts ...HandlerOption) (*StatementHandler, error) {
	if service == nil {
		return nil, errors.New("statement handler: nil service")
	}
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	h := &StatementHandler{
		service:     service,
		auditLogger: auditLogger,
		logger:      slog.Default(),
		validate:    validator.New(),
	}
	WithRateLimit(30, time.Minute)(h)
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// MountRoutes registers the statement download endpoints.
func (h *StatementHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.rateLimit != nil {
			r.Use(h.rateLimit)
		}
		r.Get(RoutePDF, h.HandleDownloadPDF)
		r.Get(RouteXLSX, h.HandleDownloadXLSX)
	})
}

// HandleDownloadPDF streams the PDF statement as an attachment.
func (h *StatementHandler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport("pdf", result, time.Since(start))
	}()

	req, ok := h.parseRequest(w, r)
	if !ok {
		result = metrics.ResultError
		return
	}
	doc, err := h.service.Generate(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		h.respondServiceError(w, r, req, err)
		return
	}
	writeAttachment(w, doc.ContentType, doc.Filename, doc.Data)
	h.logAudit(r, audit.ActionStatementDownload, "pdf", doc.Filename, doc.Model, map[string]any{
		"pages": doc.Pages,
		"bytes": len(doc.Data),
	})
}

// HandleDownloadXLSX streams the spreadsheet export as an attachment.
func (h *StatementHandler) HandleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport("xlsx", result, time.Since(start))
	}()

	req, ok := h.parseRequest(w, r)
	if !ok {
		result = metrics.ResultError
		return
	}
	model, err := h.service.BuildModel(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		h.respondServiceError(w, r, req, err)
		return
	}
	data, err := BuildStatementXLSX(model)
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("statement xlsx export failed", "account", model.AccountNumber, "error", err)
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	filename := XLSXFilename(model)
	writeAttachment(w, XLSXContentType, filename, data)
	h.logAudit(r, audit.ActionStatementExport, "xlsx", filename, model, map[string]any{
		"bytes": len(data),
	})
}

func (h *StatementHandler) parseRequest(w http.ResponseWriter, r *http.Request) (application.Request, bool) {
	path := statementPath{
		AccountNumber: chi.URLParam(r, "accountNumber"),
		Year:          chi.URLParam(r, "year"),
		Month:         chi.URLParam(r, "month"),
	}
	if err := h.validate.Struct(path); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return application.Request{}, false
	}
	return application.Request{AccountNumber: path.AccountNumber, Year: path.Year, Month: path.Month}, true
}

func (h *StatementHandler) respondServiceError(w http.ResponseWriter, r *http.Request, req application.Request, err error) {
	log := h.logger.With("account", req.AccountNumber, "year", req.Year, "month", req.Month)
	switch {
	case errors.Is(err, statement.ErrInvalidPeriod), errors.Is(err, statement.ErrEmptyAccountNumber):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, statement.ErrCustomerNotFound):
		log.Info("statement customer not found", "error", err)
		writeJSONError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		log.Info("statement request cancelled")
	default:
		log.Error("statement generation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "statement generation failed")
	}
}

func (h *StatementHandler) logAudit(r *http.Request, action, format, resourceID string, model statement.StatementModel, meta map[string]any) {
	payload, _ := json.Marshal(meta)
	err := h.auditLogger.Log(r.Context(), audit.Entry{
		Action:        action,
		ResourceType:  audit.ResourceStatement,
		ResourceID:    resourceID,
		AccountNumber: model.AccountNumber,
		Period:        model.Period.String(),
		Format:        format,
		Metadata:      payload,
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		h.logger.Warn("statement audit failed", "account", model.AccountNumber, "error", err)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid " + fe.Field() + ": failed " + fe.Tag()
	}
	return "invalid request"
}
