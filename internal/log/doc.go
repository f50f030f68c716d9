// Package log provides structured logging with credential masking.
//
// Audit configuration can carry cookies and authorization headers for
// pages behind a login, and auditor stderr occasionally echoes them
// back. The handler in this package masks such values before they
// reach the underlying slog handler, so enabling verbose logging never
// leaks a credential into a terminal or log file.
package log
