// Package auditor invokes the external Node.js accessibility auditor
// and normalizes every possible raw outcome into the uniform
// model.AuditOutcome record.
//
// The auditor itself (axe-core / pa11y driving a headless browser) is
// an external collaborator reached over a subprocess boundary. This
// package owns that boundary: command-line construction, the
// wall-clock budget, temporary artifact lifecycle, and the mapping of
// success, non-zero exit, timeout, and spawn or parse failures into
// one result shape. Nothing escapes it as an unhandled fault.
package auditor
