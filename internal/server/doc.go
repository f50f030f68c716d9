// Package server provides the embedded web UI for running audits.
//
// The server presents a form for submitting a URL, runs the audit
// through the configured runner, and renders the outcome: metric
// tiles, a filterable issue list, and the annotated page in an
// iframe. Results are held in memory and expire after a TTL; the
// SQLite history database remains the durable record.
package server
