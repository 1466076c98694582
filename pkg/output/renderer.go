// Package output renders command results for the terminal. Templates lay the
// text out and mark it up with style tags such as <success>ok</success>; the
// tags are then expanded to lipgloss styles, or stripped for plain output.
package output

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/genx/pkg/logging"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer writes templated, styled output to a writer
type Renderer struct {
	templates *template.Template
	writer    io.Writer
	noColor   bool
	styles    map[string]lipgloss.Style
}

// ColorEnabled reports whether f is a terminal that should receive colors.
// NO_COLOR disables color regardless.
func ColorEnabled(f *os.File) bool {
	if termenv.EnvNoColor() {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewRenderer creates a renderer writing to w. With noColor set style tags
// are stripped and output is plain text.
func NewRenderer(w io.Writer, noColor bool) (*Renderer, error) {
	log := logging.GetLogger("output.Renderer")

	var opts []termenv.OutputOption
	if noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	lr := lipgloss.NewRenderer(w, opts...)
	log.Debug().
		Bool("noColor", noColor).
		Str("colorProfile", fmt.Sprintf("%v", lr.ColorProfile())).
		Msg("Creating renderer")

	tmpl, err := template.New("output").
		Funcs(template.FuncMap{"esc": template.HTMLEscapeString}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		templates: tmpl,
		writer:    w,
		noColor:   noColor,
		styles:    newStyles(lr),
	}, nil
}

// Render executes the named template with data, expands its style tags and
// writes the result
func (r *Renderer) Render(name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return r.write(buf.String())
}

// RenderReport writes a bootstrap report
func (r *Renderer) RenderReport(report *Report) error {
	return r.Render("report.tmpl", report)
}

// RenderCatalog writes the feature catalog listing
func (r *Renderer) RenderCatalog(catalog *CatalogReport) error {
	return r.Render("catalog.tmpl", catalog)
}

// RenderError writes err with the error style
func (r *Renderer) RenderError(err error) error {
	return r.write("<error>Error:</error> " + template.HTMLEscapeString(err.Error()))
}

// RenderMessage writes message with the named style
func (r *Renderer) RenderMessage(style, message string) error {
	return r.write("<" + style + ">" + template.HTMLEscapeString(message) + "</" + style + ">")
}

func (r *Renderer) write(markup string) error {
	out, err := r.expand(markup)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.writer, strings.TrimRight(out, "\n"))
	return err
}

// expand replaces style tags in markup by their rendering
func (r *Renderer) expand(markup string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<output>" + markup + "</output>"); err != nil {
		return "", fmt.Errorf("invalid output markup: %w", err)
	}

	var sb strings.Builder
	r.expandChildren(&sb, doc.Root())
	return sb.String(), nil
}

func (r *Renderer) expandChildren(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			var inner strings.Builder
			r.expandChildren(&inner, t)
			sb.WriteString(r.apply(t.Tag, inner.String()))
		}
	}
}

func (r *Renderer) apply(tag, text string) string {
	if r.noColor {
		return text
	}
	st, ok := r.styles[tag]
	if !ok {
		return text
	}
	return st.Render(text)
}
