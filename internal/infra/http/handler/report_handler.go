package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openctemio/scanhistory/internal/app/report"
	"github.com/openctemio/scanhistory/internal/infra/http/middleware"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
	"github.com/openctemio/scanhistory/pkg/logger"
)

// Messages rendered in place of a report.
const (
	MessageDatabaseError  = "Error fetching data from the database."
	MessageReportNotFound = "Report not found."
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ReportService is the read side used by the report pages.
type ReportService interface {
	Get(ctx context.Context, slug string) (*report.Table, error)
}

// ReportHandler renders the report menu and report pages.
type ReportHandler struct {
	service   ReportService
	pageTitle string
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc ReportService, pageTitle string, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service:   svc,
		pageTitle: pageTitle,
		logger:    log.With("handler", "report"),
	}
}

type page struct {
	PageTitle string
	Menu      []report.Definition
	Table     *report.Table
	Headers   []string
	Message   string
}

// Index renders the navigation menu.
func (h *ReportHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, page{Menu: report.Catalogue()})
}

// Report renders the report named by the {report} path parameter.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "report")

	table, err := h.service.Get(r.Context(), slug)
	switch {
	case err == nil:
		h.render(w, r, http.StatusOK, page{Table: table, Headers: h.headers(table.Columns)})
	case errors.Is(err, shared.ErrNotFound):
		h.render(w, r, http.StatusNotFound, page{Message: MessageReportNotFound})
	default:
		h.logger.Error("failed to build report",
			"report", slug,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.render(w, r, http.StatusInternalServerError, page{Message: MessageDatabaseError})
	}
}

// NotFound renders the not-found page for unmatched paths.
func (h *ReportHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, page{Message: MessageReportNotFound})
}

func (h *ReportHandler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	p.PageTitle = h.pageTitle

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.logger.Error("failed to render page",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var acronyms = map[string]string{
	"ip": "IP", "id": "ID", "cve": "CVE", "cwe": "CWE", "cvss": "CVSS", "cpe": "CPE",
}

// headers turns column names like "info_classification_cpe" into
// "Info Classification CPE".
func (h *ReportHandler) headers(columns []string) []string {
	titler := cases.Title(language.English)
	out := make([]string, len(columns))
	for i, col := range columns {
		words := strings.Split(col, "_")
		for j, word := range words {
			if a, ok := acronyms[word]; ok {
				words[j] = a
				continue
			}
			words[j] = titler.String(word)
		}
		out[i] = strings.Join(words, " ")
	}
	return out
}
