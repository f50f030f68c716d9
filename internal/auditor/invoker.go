package auditor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Default invocation settings.
const (
	// DefaultBudget is the wall-clock budget for one auditor run.
	// 60 seconds covers a headless-browser page load plus rule
	// evaluation on slow pages; exceeding it aborts the process.
	DefaultBudget = 60 * time.Second

	// DefaultNodePath is the Node.js binary used to run the auditor
	// script. Resolved via PATH unless overridden.
	DefaultNodePath = "node"
)

// Mode selects which integration contract the auditor script follows.
type Mode int

const (
	// ModeFile invokes the auditor with positional arguments
	// [url, standardsCSV, deviceProfile, outputPath, keyboardFlag].
	// Exit 0 means outputPath contains a complete annotated HTML
	// document; no structured summary is produced.
	ModeFile Mode = iota

	// ModeJSON invokes the auditor with the single positional
	// argument [url] and expects exactly one JSON document on stdout,
	// shaped {success, summary?, streamlitHtml?, error?}.
	ModeJSON
)

// String returns the configuration token for the mode.
func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrUnknownMode is returned when a token does not name an integration mode.
var ErrUnknownMode = errors.New("unknown auditor mode")

// ParseMode converts a configuration token into a Mode.
func ParseMode(token string) (Mode, error) {
	switch token {
	case "file":
		return ModeFile, nil
	case "json":
		return ModeJSON, nil
	default:
		return 0, ErrUnknownMode
	}
}

// Runner executes one audit request and returns its outcome.
// Invoker is the production implementation; tests and the HTTP server
// accept the interface so the subprocess can be stubbed out.
type Runner interface {
	Run(ctx context.Context, req model.AuditRequest) model.AuditOutcome
}

// Invoker runs the external auditor process. Each call spawns exactly
// one process, creates at most one temporary artifact (file mode), and
// removes it on every exit path. Invoker carries no per-run state, so
// concurrent calls for different device profiles need no locking.
type Invoker struct {
	// nodePath is the Node.js binary.
	nodePath string

	// scriptPath is the auditor script passed to node.
	scriptPath string

	// mode selects the integration contract.
	mode Mode

	// budget is the hard wall-clock limit per invocation.
	budget time.Duration

	// logger is used for structured logging during invocations.
	logger *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithNodePath overrides the Node.js binary.
func WithNodePath(path string) Option {
	return func(in *Invoker) {
		if path != "" {
			in.nodePath = path
		}
	}
}

// WithMode selects the integration contract. Default is ModeFile.
func WithMode(mode Mode) Option {
	return func(in *Invoker) {
		in.mode = mode
	}
}

// WithBudget overrides the wall-clock budget per invocation.
func WithBudget(budget time.Duration) Option {
	return func(in *Invoker) {
		if budget > 0 {
			in.budget = budget
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Invoker) {
		in.logger = logger
	}
}

// NewInvoker creates an Invoker for the given auditor script.
func NewInvoker(scriptPath string, opts ...Option) *Invoker {
	in := &Invoker{
		nodePath:   DefaultNodePath,
		scriptPath: scriptPath,
		mode:       ModeFile,
		budget:     DefaultBudget,
	}

	for _, opt := range opts {
		opt(in)
	}

	if in.logger == nil {
		in.logger = slog.Default()
	}

	return in
}

// Run executes one audit and maps the raw result into an AuditOutcome.
// It blocks until the auditor exits, fails, or the budget elapses.
// Run never returns an error: every failure is absorbed into the
// outcome, and the outcome always carries renderable HTML.
func (in *Invoker) Run(ctx context.Context, req model.AuditRequest) model.AuditOutcome {
	start := time.Now()

	// Callers validate before dispatch; a request that slips through
	// anyway must not spawn a process.
	if err := req.Validate(); err != nil {
		return in.invocationError(req, start, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, in.budget)
	defer cancel()

	in.logger.Debug("invoking auditor",
		"url", req.URL,
		"profile", req.Profile.String(),
		"mode", in.mode.String(),
		"budget", in.budget,
	)

	switch in.mode {
	case ModeJSON:
		return in.runJSON(ctx, req, start)
	default:
		return in.runFile(ctx, req, start)
	}
}

// runFile performs a file-mode invocation: the auditor writes the
// annotated document to a temporary path handed to it as a positional
// argument.
func (in *Invoker) runFile(ctx context.Context, req model.AuditRequest, start time.Time) model.AuditOutcome {
	tmp, err := os.CreateTemp("", "a11yscan-*.html")
	if err != nil {
		return in.invocationError(req, start, "failed to create output artifact: "+err.Error())
	}
	outPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(outPath) //nolint:errcheck // Best effort on an already failing path
		return in.invocationError(req, start, "failed to create output artifact: "+err.Error())
	}

	// The artifact is removed on every exit path: success, failure,
	// and timeout alike.
	defer func() {
		if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
			in.logger.Warn("failed to remove output artifact", "path", outPath, "error", err)
		}
	}()

	keyboardFlag := "false"
	if req.KeyboardTesting {
		keyboardFlag = "true"
	}

	args := []string{
		in.scriptPath,
		req.URL,
		model.StandardsCSV(req.Standards),
		req.Profile.String(),
		outPath,
		keyboardFlag,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, in.nodePath, args...) //nolint:gosec // Auditor path comes from trusted config
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if outcome, handled := in.classifyRunError(ctx, req, start, runErr, stderr.String()); handled {
		return outcome
	}

	data, err := os.ReadFile(outPath) //nolint:gosec // Path created by os.CreateTemp above
	if err != nil {
		return in.invocationError(req, start, "output artifact unreadable: "+err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return in.invocationError(req, start, "auditor produced an empty document")
	}

	return model.AuditOutcome{
		Kind:    model.OutcomeOK,
		URL:     req.URL,
		Profile: req.Profile,
		HTML:    string(data),
		Elapsed: time.Since(start),
		RanAt:   start,
	}
}

// runJSON performs a JSON-mode invocation: the auditor emits one JSON
// document on stdout and the normalizer maps it into an outcome.
func (in *Invoker) runJSON(ctx context.Context, req model.AuditRequest, start time.Time) model.AuditOutcome {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, in.nodePath, in.scriptPath, req.URL) //nolint:gosec // Auditor path comes from trusted config
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if outcome, handled := in.classifyRunError(ctx, req, start, runErr, stderr.String()); handled {
		return outcome
	}

	outcome := NormalizeJSON(stdout.Bytes(), req)
	outcome.Elapsed = time.Since(start)
	outcome.RanAt = start
	return outcome
}

// classifyRunError maps a cmd.Run error into the timeout, process
// failure, or invocation error variants. handled is false when the
// process completed successfully and the caller should read its output.
func (in *Invoker) classifyRunError(ctx context.Context, req model.AuditRequest, start time.Time, runErr error, stderrText string) (model.AuditOutcome, bool) {
	// The budget elapsing kills the process; any partial output is
	// discarded and the run reports exactly the timeout variant.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		in.logger.Warn("auditor timed out",
			"url", req.URL,
			"profile", req.Profile.String(),
			"budget", in.budget,
		)
		return model.AuditOutcome{
			Kind:    model.OutcomeTimeout,
			URL:     req.URL,
			Profile: req.Profile,
			Budget:  in.budget,
			HTML:    FallbackBlock("Request timed out after " + in.budget.String()),
			Elapsed: time.Since(start),
			RanAt:   start,
		}, true
	}

	if runErr == nil {
		return model.AuditOutcome{}, false
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		in.logger.Warn("auditor exited non-zero",
			"url", req.URL,
			"profile", req.Profile.String(),
			"exitCode", exitErr.ExitCode(),
		)
		return model.AuditOutcome{
			Kind:     model.OutcomeProcessFailure,
			URL:      req.URL,
			Profile:  req.Profile,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderrText,
			HTML:     FallbackDocument("Error running accessibility test: " + stderrText),
			Elapsed:  time.Since(start),
			RanAt:    start,
		}, true
	}

	// Spawn-level failure: missing executable, permission denied, and
	// similar OS errors that never produced an exit code.
	return in.invocationError(req, start, "failed to start auditor: "+runErr.Error()), true
}

// invocationError builds the InvocationError variant with fallback HTML.
func (in *Invoker) invocationError(req model.AuditRequest, start time.Time, msg string) model.AuditOutcome {
	in.logger.Warn("auditor invocation failed",
		"url", req.URL,
		"profile", req.Profile.String(),
		"reason", msg,
	)
	return model.AuditOutcome{
		Kind:    model.OutcomeInvocationError,
		URL:     req.URL,
		Profile: req.Profile,
		Message: msg,
		HTML:    FallbackBlock(msg),
		Elapsed: time.Since(start),
		RanAt:   start,
	}
}
