// Package tmpl provides template rendering utilities for reply texts.
package tmpl

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"
)

// stem returns the file name of path without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var funcs = template.FuncMap{
	"base": filepath.Base,
	"stem": stem,
	"join": strings.Join,
}

func parse(tmpl string) (*template.Template, error) {
	return template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - base: file name of a path
//   - stem: file name of a path without its extension
//   - join: strings.Join
func Render(tmpl string, data any) (string, error) {
	t, err := parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// Check parses tmpl and dry-runs it against data so that syntax errors and
// references to fields data does not have are reported up front.
func Check(tmpl string, data any) error {
	t, err := parse(tmpl)
	if err != nil {
		return err
	}
	return t.Execute(io.Discard, data)
}
