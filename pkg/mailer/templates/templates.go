package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Template names understood by the email worker.
const (
	Welcome  = "welcome"
	Farewell = "farewell"
)

// Data holds the fields the subscriber email templates render.
type Data struct {
	Name           string
	Email          string
	CompanyName    string
	CompanyAddress string
	SupportURL     string
}

var subjects = map[string]string{
	Welcome:  "Welcome to {{.CompanyName}}",
	Farewell: "Sorry to see you go",
}

var texts = map[string]string{
	Welcome: `Hi {{.Name}},

Thanks for subscribing to {{.CompanyName}}. We'll keep {{.Email}} posted
about new blends, offers and store news.

{{if .SupportURL}}Questions? {{.SupportURL}}
{{end}}— {{.CompanyName}}{{if .CompanyAddress}}, {{.CompanyAddress}}{{end}}
`,
	Farewell: `Hi {{.Name}},

Your subscription for {{.Email}} has been removed. You won't hear from us
again, but you are welcome back any time.

— {{.CompanyName}}
`,
}

var htmls = map[string]string{
	Welcome: `<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Thanks for subscribing to <strong>{{.CompanyName}}</strong>.
     We'll keep <em>{{.Email}}</em> posted about new blends, offers and store news.</p>
  {{if .SupportURL}}<p>Questions? <a href="{{.SupportURL}}">We're happy to help.</a></p>{{end}}
  <p>— {{.CompanyName}}{{if .CompanyAddress}}<br><small>{{.CompanyAddress}}</small>{{end}}</p>
</div>`,
	Farewell: `<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Goodbye, {{.Name}}</h2>
  <p>Your subscription for <em>{{.Email}}</em> has been removed.
     You won't hear from us again, but you are welcome back any time.</p>
  <p>— {{.CompanyName}}</p>
</div>`,
}

// ToMap converts Data to a map[string]any for EmailJob.Data.
func ToMap(d Data) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// FromMap is the inverse of ToMap; unknown keys are ignored.
func FromMap(m map[string]any) Data {
	b, _ := json.Marshal(m)
	var d Data
	_ = json.Unmarshal(b, &d)
	return d
}

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, d Data) (subject, text, html string, err error) {
	subjTpl, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject, err = renderText("subject", subjTpl, d)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderText("text", texts[name], d)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderHTML("html", htmls[name], d)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

func renderText(label, src string, d Data) (string, error) {
	t, err := texttpl.New(label).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(label, src string, d Data) (string, error) {
	t, err := htmpl.New(label).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
