package server

import "html/template"

// indexHTML is the audit submission form.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>a11yscan</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 40px auto; padding: 0 16px; }
h1 { font-size: 1.5em; }
fieldset { border: 1px solid #ccc; margin: 16px 0; padding: 12px; }
legend { font-weight: bold; }
input[type=url] { width: 100%; padding: 8px; box-sizing: border-box; }
button { padding: 8px 24px; font-size: 1em; }
.error { color: #b00020; border: 1px solid #b00020; padding: 8px; }
label { display: block; margin: 4px 0; }
</style>
</head>
<body>
<h1>a11yscan</h1>
<p>Run an accessibility audit against a page.</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/audit">
<fieldset>
<legend>Page</legend>
<input type="url" name="url" placeholder="https://example.com" value="{{.URL}}" required>
</fieldset>
<fieldset>
<legend>Standards</legend>
<label><input type="checkbox" name="standards" value="wcag2a"> WCAG 2.0 Level A</label>
<label><input type="checkbox" name="standards" value="wcag2aa" checked> WCAG 2.0 Level AA</label>
<label><input type="checkbox" name="standards" value="best-practice"> Best practices</label>
<label><input type="checkbox" name="standards" value="aria"> ARIA usage</label>
</fieldset>
<fieldset>
<legend>Options</legend>
<label>Device:
<select name="device">
<option value="both">Desktop and mobile</option>
<option value="desktop">Desktop only</option>
<option value="mobile">Mobile only</option>
</select>
</label>
<label><input type="checkbox" name="keyboard"> Include keyboard navigation testing</label>
</fieldset>
<button type="submit">Run audit</button>
</form>
</body>
</html>
`

// resultHTML renders the outcomes of one submitted audit.
const resultHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Audit results - {{.URL}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 40px auto; padding: 0 16px; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.2em; margin-top: 32px; }
.tiles { display: flex; gap: 12px; margin: 16px 0; }
.tile { flex: 1; border: 1px solid #ccc; padding: 12px; text-align: center; }
.tile .count { font-size: 1.8em; font-weight: bold; }
.tile.errors .count { color: #b00020; }
.tile.warnings .count { color: #a06000; }
.tile.notices .count { color: #00509e; }
.status-failed { color: #b00020; font-weight: bold; }
.filters a { margin-right: 12px; }
.filters a.active { font-weight: bold; text-decoration: none; }
.issue { border-left: 4px solid #ccc; margin: 12px 0; padding: 4px 12px; }
.issue.error { border-color: #b00020; }
.issue.warning { border-color: #a06000; }
.issue.notice { border-color: #00509e; }
.issue .code { color: #555; font-size: 0.85em; }
.issue pre { background: #f4f4f4; padding: 8px; overflow-x: auto; }
iframe { width: 100%; height: 600px; border: 1px solid #ccc; }
</style>
</head>
<body>
<p><a href="/">&larr; New audit</a></p>
<h1>Results for {{.PageTitle}}</h1>
<p><code>{{.URL}}</code></p>
{{range .Runs}}
<h2>{{.Profile}}</h2>
{{if .OK}}
<div class="tiles">
<div class="tile"><div class="count">{{.Total}}</div>Total</div>
<div class="tile errors"><div class="count">{{.Errors}}</div>Errors</div>
<div class="tile warnings"><div class="count">{{.Warnings}}</div>Warnings</div>
<div class="tile notices"><div class="count">{{.Notices}}</div>Notices</div>
</div>
<div class="filters">
{{$run := .}}
{{range .Filters}}
<a href="?type={{.Value}}"{{if eq .Value $run.Filter}} class="active"{{end}}>{{.Label}}</a>
{{end}}
</div>
{{range .Issues}}
<div class="issue {{.Type}}">
<p>{{.Message}}</p>
<p class="code">{{.Code}}{{if .Selector}} &mdash; <code>{{.Selector}}</code>{{end}}</p>
{{if .Context}}<pre>{{.Context}}</pre>{{end}}
</div>
{{end}}
{{else}}
<p class="status-failed">{{.Status}}</p>
{{end}}
<h3>Annotated page</h3>
<iframe src="/result/{{$.ID}}/frame?profile={{.Profile}}" title="Annotated page ({{.Profile}})"></iframe>
{{end}}
</body>
</html>
`

// templates holds the parsed UI templates, keyed by name.
var templates = template.Must(
	template.Must(
		template.New("index").Parse(indexHTML),
	).New("result").Parse(resultHTML),
)
