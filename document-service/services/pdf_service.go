package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"sinpd-backend/shared/config"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/export"
)

// PDFService renders NPD documents to PDF through a headless browser.
// One browser process is shared; each render opens its own page.
type PDFService struct {
	browser *rod.Browser
}

// NewPDFService launches the headless browser.
func NewPDFService() (*PDFService, error) {
	u, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch headless browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to headless browser: %w", err)
	}

	log.Println("✅ Headless browser ready for PDF rendering")
	return &PDFService{browser: browser}, nil
}

// Close shuts the browser down.
func (s *PDFService) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("⚠️ Failed to close headless browser: %v", err)
		}
	}
}

var npdTemplate = template.Must(template.New("npd").Funcs(template.FuncMap{
	"rupiah": export.FormatRupiah,
	"date":   export.FormatDate,
	"inc":    func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Times New Roman", serif; margin: 2cm; color: #111; }
  h1 { font-size: 16pt; text-align: center; margin-bottom: 0; }
  h2 { font-size: 12pt; text-align: center; font-weight: normal; margin-top: 4px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { border: 1px solid #333; padding: 6px 8px; font-size: 10pt; }
  th { background: #eee; }
  td.num { text-align: right; }
  .meta { margin-top: 16px; font-size: 10pt; }
  .meta td { border: none; padding: 2px 8px 2px 0; }
  .total { font-weight: bold; }
  {{if .Watermark}}
  .watermark {
    position: fixed; top: 40%; left: 10%;
    font-size: 72pt; color: rgba(200, 0, 0, 0.12);
    transform: rotate(-30deg); z-index: -1;
  }
  {{end}}
</style>
</head>
<body>
{{if .Watermark}}<div class="watermark">{{.Watermark}}</div>{{end}}
<h1>NOTA PENCAIRAN DANA</h1>
<h2>{{.NPD.Number}}</h2>
<table class="meta">
  <tr><td>Jenis</td><td>: {{.NPD.Type}}</td></tr>
  <tr><td>Status</td><td>: {{.NPD.Status}}</td></tr>
  <tr><td>Sub Kegiatan</td><td>: {{.NPD.SubActivity.Name}}</td></tr>
  <tr><td>Tahun Anggaran</td><td>: {{.NPD.FiscalYear}}</td></tr>
  <tr><td>Tanggal Dibuat</td><td>: {{date .NPD.CreatedAt}}</td></tr>
</table>
<table>
  <tr><th>No</th><th>Kode Rekening</th><th>Uraian</th><th>Jumlah</th></tr>
  {{range $i, $line := .NPD.Lines}}
  <tr>
    <td>{{inc $i}}</td>
    <td>{{$line.Account.Code}}</td>
    <td>{{$line.Description}}</td>
    <td class="num">{{rupiah $line.Amount}}</td>
  </tr>
  {{end}}
  <tr class="total"><td colspan="3">Total</td><td class="num">{{rupiah .Total}}</td></tr>
</table>
</body>
</html>`))

type npdTemplateData struct {
	NPD       *npdmodels.NPD
	Total     int64
	Watermark string
}

// RenderNPD renders the document into a PDF byte slice. The context
// bounds the whole render including page load.
func (s *PDFService) RenderNPD(ctx context.Context, doc *npdmodels.NPD) ([]byte, error) {
	watermark := ""
	if config.GetConfig().PDFWatermarkEnabled && doc.Status != "final" {
		watermark = "DRAF"
	}

	var buf bytes.Buffer
	if err := npdTemplate.Execute(&buf, npdTemplateData{
		NPD:       doc,
		Total:     doc.LineTotal(),
		Watermark: watermark,
	}); err != nil {
		return nil, fmt.Errorf("failed to render NPD template: %w", err)
	}

	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open browser page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(buf.String()); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for document load: %w", err)
	}

	reader, err := page.Timeout(30 * time.Second).PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF stream: %w", err)
	}
	return data, nil
}
