// Package render executes page templates to bytes. Returning bytes
// instead of writing straight to the response lets the index handler
// cache the rendered payload verbatim.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type Renderer struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

func New(glob string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseGlob(glob)
	if err != nil {
		return nil, fmt.Errorf("parse templates %q: %w", glob, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page executes the named template and returns the rendered bytes.
func (r *Renderer) Page(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
