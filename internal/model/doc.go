// Package model defines the core data types for a11yscan:
// audit requests, issue summaries, and the uniform audit outcome
// that every invocation of the external auditor is mapped into.
package model
