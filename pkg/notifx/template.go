package notifx

import (
	"bytes"
	"html/template"
	"sync"
)

// VerificationTemplate is the name of the built-in email confirmation mail.
// Its data carries Email and Link.
const VerificationTemplate = "email_verification"

const verificationBody = `<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Email}},</p>
<p>please confirm your email address by following the link below.</p>
<p><a href="{{.Link}}">Confirm email address</a></p>
<p>If you did not expect this message you can ignore it.</p>
</body>
</html>`

// TemplateRegistry stores and renders named Go html/templates.
type TemplateRegistry struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
}

// NewTemplateRegistry creates a registry holding the built-in templates.
func NewTemplateRegistry() *TemplateRegistry {
	r := &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}
	r.templates[VerificationTemplate] = template.Must(template.New(VerificationTemplate).Parse(verificationBody))
	return r
}

// Register parses and stores a template by name.
func (r *TemplateRegistry) Register(name, tmplString string) error {
	t, err := template.New(name).Parse(tmplString)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()

	return nil
}

// Render executes a named template with the given data and returns the result.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}

	return buf.String(), nil
}
