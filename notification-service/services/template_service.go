package services

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateService renders transactional email templates. The registry
// is fixed in the binary so a deployment never depends on template
// files being present on disk.
type TemplateService struct {
	templates map[string]*template.Template
}

const baseLayout = `<!DOCTYPE html>
<html lang="id">
<body style="font-family: Arial, sans-serif; color: #222; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a4480;">%s</h2>
  %s
  <hr style="border: none; border-top: 1px solid #ddd; margin-top: 24px;">
  <p style="font-size: 12px; color: #888;">
    Email ini dikirim otomatis oleh Sistem Informasi NPD. Mohon tidak membalas.
  </p>
</body>
</html>`

// templateBodies maps each template name to its heading and body.
var templateBodies = map[string][2]string{
	"npd_submitted": {
		"NPD Menunggu Verifikasi",
		`<p>Yth. {{.RecipientName}},</p>
<p>NPD <strong>{{.NPDNumber}}</strong> telah diajukan oleh {{.SubmitterName}} dan menunggu verifikasi Anda.</p>
<p><a href="{{.Link}}">Buka dokumen</a></p>`,
	},
	"npd_verified": {
		"NPD Telah Diverifikasi",
		`<p>Yth. {{.RecipientName}},</p>
<p>NPD <strong>{{.NPDNumber}}</strong> telah diverifikasi dan menunggu finalisasi bendahara.</p>
<p><a href="{{.Link}}">Buka dokumen</a></p>`,
	},
	"npd_finalized": {
		"NPD Final",
		`<p>Yth. {{.RecipientName}},</p>
<p>NPD <strong>{{.NPDNumber}}</strong> telah difinalkan dan siap untuk penerbitan SP2D.</p>
<p><a href="{{.Link}}">Buka dokumen</a></p>`,
	},
	"npd_rejected": {
		"NPD Ditolak",
		`<p>Yth. {{.RecipientName}},</p>
<p>NPD <strong>{{.NPDNumber}}</strong> ditolak dengan alasan:</p>
<blockquote style="border-left: 3px solid #c00; padding-left: 12px; color: #555;">{{.Reason}}</blockquote>
<p>Silakan perbaiki dan ajukan kembali. <a href="{{.Link}}">Buka dokumen</a></p>`,
	},
	"sp2d_issued": {
		"SP2D Terbit",
		`<p>Yth. {{.RecipientName}},</p>
<p>SP2D <strong>{{.SP2DNumber}}</strong> telah terbit untuk NPD <strong>{{.NPDNumber}}</strong> sebesar {{.Amount}}.</p>
<p><a href="{{.Link}}">Buka dokumen</a></p>`,
	},
}

// NewTemplateService parses the registry once at startup.
func NewTemplateService() (*TemplateService, error) {
	templates := make(map[string]*template.Template, len(templateBodies))
	for name, parts := range templateBodies {
		full := fmt.Sprintf(baseLayout, parts[0], parts[1])
		tmpl, err := template.New(name).Parse(full)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &TemplateService{templates: templates}, nil
}

// Has reports whether the registry knows the template name.
func (ts *TemplateService) Has(name string) bool {
	_, ok := ts.templates[name]
	return ok
}

// Render executes a named template with the given data.
func (ts *TemplateService) Render(name string, data map[string]interface{}) (string, error) {
	tmpl, ok := ts.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", name)
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return rendered.String(), nil
}

// Names lists the registered template names.
func (ts *TemplateService) Names() []string {
	names := make([]string, 0, len(ts.templates))
	for name := range ts.templates {
		names = append(names, name)
	}
	return names
}
