package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/a11yscan/a11yscan/internal/auditor"
	"github.com/a11yscan/a11yscan/internal/embed"
	"github.com/a11yscan/a11yscan/internal/model"
)

// DefaultAddr is the default listen address for the web UI.
const DefaultAddr = "localhost:8417"

// Server serves the audit submission form and rendered results.
type Server struct {
	// addr is the listen address.
	addr string

	// batch runs submitted requests, one per device profile.
	batch *auditor.Batch

	// store holds completed runs for result pages.
	store *resultStore

	// sanitizer strips markup from auditor-provided text before
	// it reaches the result page.
	sanitizer *bluemonday.Policy

	// logger is used for request-level logging.
	logger *slog.Logger

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Default is DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithResultTTL sets how long results stay retrievable.
func WithResultTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.store = newResultStore(ttl)
	}
}

// New creates a Server that runs audits through the given runner.
func New(runner auditor.Runner, opts ...Option) *Server {
	s := &Server{
		addr:      DefaultAddr,
		batch:     auditor.NewBatch(runner),
		store:     newResultStore(defaultResultTTL),
		sanitizer: bluemonday.StrictPolicy(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Handler returns the HTTP handler serving the UI.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/audit", s.handleAudit)
	r.Get("/result/{id}", s.handleResult)
	r.Get("/result/{id}/frame", s.handleFrame)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Start runs the server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting web UI", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// indexView is the data for the submission form.
type indexView struct {
	URL   string
	Error string
}

// handleIndex serves the audit submission form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, indexView{})
}

// renderIndex renders the form with the given status and view data.
func (s *Server) renderIndex(w http.ResponseWriter, status int, view indexView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "index", view); err != nil {
		s.logger.Error("failed to render form", "error", err)
	}
}

// handleAudit runs the submitted audit and redirects to its result page.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexView{Error: "Invalid form submission."})
		return
	}

	url := strings.TrimSpace(r.FormValue("url"))
	standards, err := model.ParseStandards(r.Form["standards"])
	if err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexView{URL: url, Error: err.Error()})
		return
	}

	req := model.AuditRequest{
		URL:             url,
		Standards:       standards,
		KeyboardTesting: r.FormValue("keyboard") == "on",
	}

	profiles, err := formProfiles(r.FormValue("device"))
	if err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexView{URL: url, Error: err.Error()})
		return
	}
	req.Profile = profiles[0]

	if err := req.Validate(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexView{URL: url, Error: err.Error()})
		return
	}

	s.logger.Info("running audit from web UI", "url", url, "profiles", len(profiles))

	outcomes, err := s.batch.RunProfiles(r.Context(), req, profiles)
	if err != nil {
		s.renderIndex(w, http.StatusServiceUnavailable, indexView{URL: url, Error: "Audit canceled."})
		return
	}

	id := s.store.Put(req, outcomes)
	http.Redirect(w, r, "/result/"+id, http.StatusSeeOther)
}

// formProfiles maps the device form value to the profiles to run.
func formProfiles(device string) ([]model.DeviceProfile, error) {
	switch device {
	case "", "both":
		return []model.DeviceProfile{model.ProfileDesktop, model.ProfileMobile}, nil
	default:
		profile, err := model.ParseDeviceProfile(device)
		if err != nil {
			return nil, err
		}
		return []model.DeviceProfile{profile}, nil
	}
}

// filterView is one issue-type filter link.
type filterView struct {
	Value string
	Label string
}

// issueView is one issue row on the result page.
type issueView struct {
	Type string
	Code string

	// Message has been through the sanitizer, so it is safe to
	// render without re-escaping.
	Message  template.HTML
	Selector string
	Context  string
}

// runView is the rendered state of one device-profile run.
type runView struct {
	Profile  string
	Status   string
	OK       bool
	Total    int
	Errors   int
	Warnings int
	Notices  int
	Filter   string
	Filters  []filterView
	Issues   []issueView
}

// resultView is the data for the result page.
type resultView struct {
	ID        string
	URL       string
	PageTitle string
	Runs      []runView
}

// handleResult renders the stored outcomes of one run.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	filter := r.URL.Query().Get("type")
	switch filter {
	case "error", "warning", "notice":
	default:
		filter = "all"
	}

	view := resultView{
		ID:        chi.URLParam(r, "id"),
		URL:       entry.request.URL,
		PageTitle: s.pageTitle(entry),
		Runs:      make([]runView, 0, len(entry.outcomes)),
	}

	for _, outcome := range entry.outcomes {
		view.Runs = append(view.Runs, s.buildRunView(&outcome, filter))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "result", view); err != nil {
		s.logger.Error("failed to render result page", "error", err)
	}
}

// buildRunView converts one outcome into its rendered state.
func (s *Server) buildRunView(outcome *model.AuditOutcome, filter string) runView {
	view := runView{
		Profile: outcome.Profile.String(),
		OK:      outcome.OK(),
		Filter:  filter,
		Filters: []filterView{
			{Value: "all", Label: "All"},
			{Value: "error", Label: "Errors"},
			{Value: "warning", Label: "Warnings"},
			{Value: "notice", Label: "Notices"},
		},
	}

	if !outcome.OK() {
		view.Status = outcome.ErrorText()
		return view
	}

	if outcome.Summary != nil {
		view.Total = outcome.Summary.TotalIssues
		view.Errors = outcome.Summary.Errors
		view.Warnings = outcome.Summary.Warnings
		view.Notices = outcome.Summary.Notices

		for _, issue := range outcome.Summary.Issues {
			if filter != "all" && issue.Type.String() != filter {
				continue
			}
			view.Issues = append(view.Issues, issueView{
				Type:     issue.Type.String(),
				Code:     issue.Code,
				Message:  template.HTML(s.sanitizer.Sanitize(issue.Message)),
				Selector: issue.Selector,
				Context:  issue.Context,
			})
		}
	}

	return view
}

// pageTitle extracts the audited page's title from the first
// successful outcome. Falls back to the URL.
func (s *Server) pageTitle(entry *resultEntry) string {
	for _, outcome := range entry.outcomes {
		if !outcome.OK() || outcome.HTML == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(outcome.HTML))
		if err != nil {
			continue
		}
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			return title
		}
	}
	return entry.request.URL
}

// handleFrame serves one outcome's document for iframe embedding.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	profile := r.URL.Query().Get("profile")
	var outcome *model.AuditOutcome
	for i := range entry.outcomes {
		if profile == "" || entry.outcomes[i].Profile.String() == profile {
			outcome = &entry.outcomes[i]
			break
		}
	}
	if outcome == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(embed.PrepareForEmbedding(outcome.HTML))); err != nil {
		s.logger.Error("failed to write frame", "error", err)
	}
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}
