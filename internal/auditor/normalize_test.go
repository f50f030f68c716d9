package auditor

import (
	"strings"
	"testing"

	"github.com/a11yscan/a11yscan/internal/model"
)

// normalizeRequest returns a request for normalizer tests.
func normalizeRequest() model.AuditRequest {
	return model.AuditRequest{
		URL:       "https://example.com",
		Standards: []model.Standard{model.StandardWCAG2AA},
		Profile:   model.ProfileDesktop,
	}
}

// TestNormalizeJSONSuccess tests mapping of a well-formed success payload.
func TestNormalizeJSONSuccess(t *testing.T) {
	t.Parallel()

	payload := `{
		"success": true,
		"summary": {
			"totalIssues": 1,
			"errors": 1,
			"warnings": 0,
			"notices": 0,
			"issues": [{"type": "error", "code": "img-alt", "message": "m", "selector": "img"}]
		},
		"streamlitHtml": "<html><head></head><body>ok</body></html>"
	}`

	outcome := NormalizeJSON([]byte(payload), normalizeRequest())

	if outcome.Kind != model.OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %v (%s)", outcome.Kind, outcome.Message)
	}
	if outcome.Summary == nil || outcome.Summary.TotalIssues != 1 {
		t.Errorf("unexpected summary: %+v", outcome.Summary)
	}
	if outcome.HTML != "<html><head></head><body>ok</body></html>" {
		t.Errorf("unexpected HTML: %q", outcome.HTML)
	}
}

// TestNormalizeJSONReportedFailure tests that success=false carries the
// embedded error string into renderable fallback HTML.
func TestNormalizeJSONReportedFailure(t *testing.T) {
	t.Parallel()

	outcome := NormalizeJSON([]byte(`{"success": false, "error": "boom"}`), normalizeRequest())

	if outcome.Kind != model.OutcomeInvocationError {
		t.Fatalf("expected OutcomeInvocationError, got %v", outcome.Kind)
	}
	if outcome.Message != "boom" {
		t.Errorf("expected message %q, got %q", "boom", outcome.Message)
	}
	if !strings.Contains(outcome.HTML, "boom") {
		t.Errorf("fallback HTML does not contain %q: %q", "boom", outcome.HTML)
	}
}

// TestNormalizeJSONFailureWithHTML tests that an auditor-provided error
// document is preferred over the synthesized fallback block.
func TestNormalizeJSONFailureWithHTML(t *testing.T) {
	t.Parallel()

	payload := `{"success": false, "error": "nav failed",
		"streamlitHtml": "<div style=\"color: red;\">Error: nav failed</div>"}`
	outcome := NormalizeJSON([]byte(payload), normalizeRequest())

	if outcome.Kind != model.OutcomeInvocationError {
		t.Fatalf("expected OutcomeInvocationError, got %v", outcome.Kind)
	}
	if outcome.HTML != `<div style="color: red;">Error: nav failed</div>` {
		t.Errorf("auditor error HTML not preserved: %q", outcome.HTML)
	}
}

// TestNormalizeJSONSchemaViolations tests that bare-parse success is
// not enough: structurally invalid payloads are InvocationError.
func TestNormalizeJSONSchemaViolations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload string
	}{
		{"not JSON", `<html>definitely not json</html>`},
		{"empty stream", ``},
		{"missing success field", `{"summary": null}`},
		{"two documents", `{"success": false, "error": "a"}{"success": false}`},
		{"success without summary", `{"success": true, "streamlitHtml": "<html></html>"}`},
		{
			"success without document",
			`{"success": true, "summary": {"totalIssues": 0, "errors": 0, "warnings": 0, "notices": 0, "issues": []}}`,
		},
		{
			"inconsistent summary counts",
			`{"success": true, "streamlitHtml": "<html></html>",
			  "summary": {"totalIssues": 5, "errors": 1, "warnings": 0, "notices": 0, "issues": []}}`,
		},
		{
			"unknown issue type",
			`{"success": true, "streamlitHtml": "<html></html>",
			  "summary": {"totalIssues": 1, "errors": 1, "warnings": 0, "notices": 0,
			              "issues": [{"type": "fatal", "code": "c", "message": "m", "selector": "s"}]}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			outcome := NormalizeJSON([]byte(tc.payload), normalizeRequest())
			if outcome.Kind != model.OutcomeInvocationError {
				t.Errorf("expected OutcomeInvocationError, got %v", outcome.Kind)
			}
			if outcome.HTML == "" {
				t.Error("schema violation must still yield renderable HTML")
			}
		})
	}
}

// TestFallbackBlockEscapes tests that fallback HTML escapes markup in
// the message while keeping the literal text visible.
func TestFallbackBlockEscapes(t *testing.T) {
	t.Parallel()

	block := FallbackBlock(`<script>alert("x")</script> boom`)

	if strings.Contains(block, "<script>") {
		t.Errorf("message markup not escaped: %q", block)
	}
	if !strings.Contains(block, "boom") {
		t.Errorf("message text lost: %q", block)
	}
}

// TestFallbackDocumentIsCompleteHTML tests the file-mode fallback shape.
func TestFallbackDocumentIsCompleteHTML(t *testing.T) {
	t.Parallel()

	doc := FallbackDocument("it broke")

	for _, want := range []string{"<html>", "<head>", "<body>", "Error running test", "it broke"} {
		if !strings.Contains(doc, want) {
			t.Errorf("fallback document missing %q:\n%s", want, doc)
		}
	}
}
