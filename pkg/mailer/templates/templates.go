package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
)

//go:embed *.tmpl
var FS embed.FS

// Template names understood by Render.
const (
	Invitation           = "invitation"
	RegistrationReceived = "registration_received"
)

var parsed = htmpl.Must(htmpl.New("emails").Funcs(htmpl.FuncMap{
	"default": defaultFn,
	"upper":   strings.ToUpper,
}).ParseFS(FS, "*.tmpl"))

// RenderHTML renders the named template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubjectFor returns the subject line for a templated job.
func SubjectFor(template string, data map[string]any) string {
	switch template {
	case Invitation:
		return "Your access invitation"
	case RegistrationReceived:
		return fmt.Sprintf("New waitlist registration: %v", data["Name"])
	default:
		return "Notification"
	}
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		return value
	}
}
