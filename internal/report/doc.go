// Package report renders audit outcomes in human-readable text,
// JSON, and Markdown formats.
//
// Each device-profile run produces its own report; outcomes are never
// merged as data, only presented side by side.
package report
