// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan runs automated accessibility audits against web pages
// through an external Node.js auditor and reports the results.
//
// Usage:
//
//	a11yscan audit <url>
//	a11yscan serve
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
