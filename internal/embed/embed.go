// Package embed post-processes auditor-returned HTML so it renders
// fully inside a constrained embedded viewer.
//
// The annotated document originates from an arbitrary external page,
// so it may be missing a doctype, charset, or viewport declaration,
// and a restrictive Content-Security-Policy would strip the inline
// highlighting the auditor injected. PrepareForEmbedding patches all
// four in, each guarded by a presence check so the transform is
// idempotent.
package embed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Tags inserted by PrepareForEmbedding. The CSP is maximally
// permissive on purpose: the embedded document is an external audited
// page and must still load its scripts, styles, and data/blob URIs
// inside the viewer.
const (
	doctypeDecl  = "<!DOCTYPE html>\n"
	charsetMeta  = `<meta charset="UTF-8">`
	viewportMeta = `<meta name="viewport" content="width=device-width, initial-scale=1.0">`
	cspMeta      = `<meta http-equiv="Content-Security-Policy" content="default-src * 'unsafe-inline' 'unsafe-eval' data: blob:;">`
)

// headOpenRe matches the opening head tag, with or without attributes.
var headOpenRe = regexp.MustCompile(`(?i)<head[^>]*>`)

// PrepareForEmbedding makes an HTML document safe to embed in an
// iframe-like viewer. Fixed rule order:
//
//  1. prepend a doctype declaration if the document does not start
//     with one;
//  2. insert a UTF-8 charset meta tag inside the head element if none
//     is present;
//  3. insert a responsive viewport meta tag if none is present;
//  4. insert a maximally permissive Content-Security-Policy meta tag
//     if none is present.
//
// Each insertion is guarded by a presence check, so applying the
// function to its own output is a no-op. Meta insertions anchor on the
// head element; a document without a head keeps only the doctype fix.
func PrepareForEmbedding(doc string) string {
	if !hasDoctype(doc) {
		doc = doctypeDecl + doc
	}

	present := scanMetaTags(doc)
	if !present.charset {
		doc = insertInHead(doc, charsetMeta)
	}
	if !present.viewport {
		doc = insertInHead(doc, viewportMeta)
	}
	if !present.csp {
		doc = insertInHead(doc, cspMeta)
	}

	return doc
}

// hasDoctype reports whether the trimmed document starts with a
// doctype declaration, case-insensitively.
func hasDoctype(doc string) bool {
	trimmed := strings.TrimSpace(doc)
	if len(trimmed) < len("<!doctype") {
		return false
	}
	return strings.EqualFold(trimmed[:len("<!doctype")], "<!doctype")
}

// metaPresence records which of the required meta tags already exist.
type metaPresence struct {
	charset  bool
	viewport bool
	csp      bool
}

// scanMetaTags parses the document and records the meta tags present.
//
// Design decision: We use golang.org/x/net/html rather than substring
// checks because the document is arbitrary external markup: a page
// that merely mentions "viewport" in text must not suppress the
// insertion, and the parser tolerates the malformed HTML real pages
// have.
func scanMetaTags(doc string) metaPresence {
	var present metaPresence

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		// Unparseable input: claim nothing is present so all guards
		// insert. The insertions are anchored textually and cannot
		// make the document less renderable.
		return present
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, httpEquiv, hasCharset string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "charset":
					hasCharset = attr.Val
				case "name":
					name = strings.ToLower(attr.Val)
				case "http-equiv":
					httpEquiv = strings.ToLower(attr.Val)
				}
			}
			if hasCharset != "" || httpEquiv == "content-type" {
				present.charset = true
			}
			if name == "viewport" {
				present.viewport = true
			}
			if httpEquiv == "content-security-policy" {
				present.csp = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return present
}

// insertInHead inserts the tag immediately after the opening head tag.
// If the document has no head tag in its source text, the document is
// returned unchanged.
func insertInHead(doc, tag string) string {
	loc := headOpenRe.FindStringIndex(doc)
	if loc == nil {
		return doc
	}
	return doc[:loc[1]] + "\n    " + tag + doc[loc[1]:]
}
