// Package view renders the HTML pages and fragments.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/happeningnu/happening/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Page templates.
const (
	PageHome       = "home.html"
	PageUserEvents = "user_events.html"
	PageNewEvent   = "new_event.html"
	PageLogin      = "login.html"
	PageSignup     = "signup.html"
	PageError      = "error.html"
)

// Page titles.
const (
	TitleHome     = "Happening nu"
	TitleNewEvent = "New event"
	TitleLogin    = "Log in"
	TitleSignup   = "Sign up"
	TitleError    = "Something went wrong"
)

var pageNames = []string{
	PageHome,
	PageUserEvents,
	PageNewEvent,
	PageLogin,
	PageSignup,
	PageError,
}

// Page is the context shared by every full-page render.
type Page struct {
	Title      string
	IsLoggedIn bool
	Username   string
	Messages   []model.Flash
	CSRFField  template.HTML
	CSRFToken  string
	NotHome    bool
	Data       any
}

// NewEventData feeds the event creation form.
type NewEventData struct {
	Locations  []string
	Categories []string
}

// ErrorData feeds the error page.
type ErrorData struct {
	Status  int
	Message string
}

var attendeeCountTmpl = template.Must(template.New("attendee_count").Parse(
	`<span class="attendee-count" id="attendee-count-{{.ID}}">Going: {{.Count}}</span>`,
))

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses all embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}

	for _, name := range pageNames {
		tpl, err := template.New("layout.html").ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tpl
	}

	return r, nil
}

// Render writes page name to w. The page is rendered into a buffer first so
// a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, p *Page) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// AttendeeCount writes the fragment swapped in by the going button.
func AttendeeCount(w io.Writer, eventID, count int64) error {
	return attendeeCountTmpl.Execute(w, struct {
		ID    int64
		Count int64
	}{eventID, count})
}
