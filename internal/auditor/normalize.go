package auditor

import (
	"bytes"
	"encoding/json"

	"github.com/a11yscan/a11yscan/internal/model"
)

// payload is the JSON-mode wire shape the auditor emits on stdout.
//
// Success is a pointer so a document that omits the field entirely can
// be told apart from {"success": false}; the former is a schema
// violation, the latter an auditor-reported failure.
type payload struct {
	Success       *bool               `json:"success"`
	Summary       *model.IssueSummary `json:"summary"`
	StreamlitHTML string              `json:"streamlitHtml"` //nolint:tagliatelle // auditor wire format
	Error         string              `json:"error"`
}

// NormalizeJSON maps the auditor's stdout into an AuditOutcome. It is
// a pure function: no I/O, no process state.
//
// The stream must contain exactly one JSON document. A bare parse is
// not trusted: missing fields and summaries whose counts disagree with
// their issue lists are schema violations and produce the
// InvocationError variant, never a partially-populated success.
func NormalizeJSON(stdout []byte, req model.AuditRequest) model.AuditOutcome {
	var p payload

	dec := json.NewDecoder(bytes.NewReader(stdout))
	if err := dec.Decode(&p); err != nil {
		return normalizeError(req, "auditor output is not valid JSON: "+err.Error())
	}
	if dec.More() {
		return normalizeError(req, "auditor emitted more than one JSON document")
	}

	if p.Success == nil {
		return normalizeError(req, "auditor payload is missing the success field")
	}

	if !*p.Success {
		// Auditor-reported failure: carry the embedded error string,
		// and prefer the auditor's own error HTML when it sent one so
		// the viewer shows what the auditor wanted shown.
		msg := p.Error
		if msg == "" {
			msg = "auditor reported failure without an error message"
		}
		html := p.StreamlitHTML
		if html == "" {
			html = FallbackBlock(msg)
		}
		out := normalizeError(req, msg)
		out.HTML = html
		return out
	}

	if p.Summary == nil {
		return normalizeError(req, "auditor payload is missing the summary")
	}
	if err := p.Summary.Validate(); err != nil {
		return normalizeError(req, "auditor summary failed validation: "+err.Error())
	}
	if p.StreamlitHTML == "" {
		return normalizeError(req, "auditor payload is missing the annotated document")
	}

	return model.AuditOutcome{
		Kind:    model.OutcomeOK,
		URL:     req.URL,
		Profile: req.Profile,
		HTML:    p.StreamlitHTML,
		Summary: p.Summary,
	}
}

// normalizeError builds the InvocationError variant for payload-level
// failures, with fallback HTML embedding the message.
func normalizeError(req model.AuditRequest, msg string) model.AuditOutcome {
	return model.AuditOutcome{
		Kind:    model.OutcomeInvocationError,
		URL:     req.URL,
		Profile: req.Profile,
		Message: msg,
		HTML:    FallbackBlock(msg),
	}
}
