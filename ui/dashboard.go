package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"plaquerisk/internal"
	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

//go:embed templates/*.html
var dashboardTemplates embed.FS

// Dashboard is the operator view: latest validation report, leaderboard, and
// a rendered model card.
type Dashboard struct {
	router    *chi.Mux
	reports   ports.ReportRepository
	templates *template.Template
	logger    *internal.Logger
}

func NewDashboard(reports ports.ReportRepository, logger *internal.Logger) (*Dashboard, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"f4":  func(v float64) string { return fmt.Sprintf("%.4f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(dashboardTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard templates: %w", err)
	}

	d := &Dashboard{
		router:    chi.NewRouter(),
		reports:   reports,
		templates: templates,
		logger:    logger.WithComponent("dashboard"),
	}
	d.router.Use(middleware.Logger)
	d.router.Use(middleware.Recoverer)
	d.router.Use(middleware.Compress(5))
	d.router.Get("/", d.handleIndex)
	d.router.Get("/modelcard", d.handleModelCard)
	return d, nil
}

// Start blocks serving the dashboard on addr.
func (d *Dashboard) Start(addr string) error {
	d.logger.Info("dashboard listening on %s", addr)
	return http.ListenAndServe(addr, d.router)
}

// Router exposes the mux for httptest.
func (d *Dashboard) Router() http.Handler { return d.router }

type dashboardView struct {
	Report      *ports.ReportRecord
	Leaderboard []ports.LeaderboardEntry
	GeneratedAt time.Time
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view := dashboardView{GeneratedAt: time.Now()}
	report, err := d.reports.LatestReport(ctx)
	switch {
	case err == nil:
		view.Report = report
	case apperrors.GetCode(err) == apperrors.CodeNotFound:
		// no runs yet, the template renders an empty state
	default:
		d.renderError(w, err)
		return
	}

	entries, err := d.reports.Leaderboard(ctx, 10)
	if err != nil {
		d.renderError(w, err)
		return
	}
	view.Leaderboard = entries

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		d.logger.Error("render dashboard: %v", err)
	}
}

func (d *Dashboard) handleModelCard(w http.ResponseWriter, r *http.Request) {
	report, err := d.reports.LatestReport(r.Context())
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeNotFound {
			http.Error(w, "no validation report available yet", http.StatusNotFound)
			return
		}
		d.renderError(w, err)
		return
	}

	card := modelCardMarkdown(report)
	body := renderMarkdown(card)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.templates.ExecuteTemplate(w, "modelcard.html", template.HTML(body)); err != nil {
		d.logger.Error("render model card: %v", err)
	}
}

func (d *Dashboard) renderError(w http.ResponseWriter, err error) {
	d.logger.Error("dashboard request failed: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// modelCardMarkdown composes a short model card from the latest run.
func modelCardMarkdown(r *ports.ReportRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Model Card: %s\n\n", r.ModelName)
	fmt.Fprintf(&b, "Run `%s`, validated %s.\n\n", r.RunID, r.CreatedAt.Format(time.RFC1123))
	b.WriteString("## Bootstrap validation\n\n")
	fmt.Fprintf(&b, "- Iterations: %d (%d degenerate folds skipped)\n", r.Iterations, r.Degenerate)
	fmt.Fprintf(&b, "- Seed: %d, optimism mode: %s\n\n", r.Seed, r.OptimismMode)
	b.WriteString("| Metric | Apparent | Optimism | Corrected |\n")
	b.WriteString("|--------|----------|----------|-----------|\n")
	fmt.Fprintf(&b, "| ROC-AUC | %.4f | %.4f | %.4f |\n", r.ApparentROCAUC, r.OptimismROCAUC, r.CorrectedROCAUC)
	fmt.Fprintf(&b, "| PR-AUC | %.4f | %.4f | %.4f |\n\n", r.ApparentPRAUC, r.OptimismPRAUC, r.CorrectedPRAUC)
	b.WriteString("## Intended use\n\n")
	b.WriteString("Research prototype for adverse-outcome risk exploration. ")
	b.WriteString("Not a medical device; outputs require clinical review.\n")
	return b.String()
}

func renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
