package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/tabedit/internal/common"
)

// ListingRow is one rendered record in a table listing.
type ListingRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Time  string `json:"time,omitempty"`
}

// ListingDocument carries everything needed to render a table listing report.
type ListingDocument struct {
	FilePath    string       `json:"filePath"`
	FileSize    int64        `json:"fileSize"`
	Sha256      string       `json:"sha256"`
	Table       string       `json:"table"`
	Kind        string       `json:"kind"`
	KeyPattern  string       `json:"keyPattern,omitempty"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Lang        Language     `json:"lang,omitempty"`
	Rows        []ListingRow `json:"rows"`
}

// SaveListingPDF renders the listing into a PDF document at out. The source
// file's SHA-256 appears both as text and as a QR code so a printed report can
// be matched back to the exact file it describes.
func SaveListingPDF(doc ListingDocument, out string) error {
	tl := NewTranslator(doc.Lang)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Table Listing", false)
	pdf.SetAuthor("tabctl", false)
	pdf.SetCreator("tabctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// cp1254 covers the Turkish glyphs the core fonts otherwise drop.
	enc := pdf.UnicodeTranslatorFromDescriptor("cp1254")

	addPDFTitle(pdf, enc(tl.Format("listing.title", doc.Table)))
	addSourceSection(pdf, tl, enc, doc)
	addRecordsSection(pdf, tl, enc, doc.Rows)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSourceSection(pdf *gofpdf.Fpdf, tl Translator, enc func(string) string, doc ListingDocument) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, enc(tl.T("section.source")))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: tl.T("label.file"), value: doc.FilePath},
		{label: tl.T("label.size"), value: fmt.Sprintf("%s (%d bytes)", common.FormatBytes(doc.FileSize), doc.FileSize)},
		{label: tl.T("label.sha256"), value: doc.Sha256},
		{label: tl.T("label.chunk"), value: doc.Kind},
		{label: tl.T("label.pattern"), value: emptyFallback(doc.KeyPattern, tl.T("value.allKeys"))},
		{label: tl.T("label.generated"), value: doc.GeneratedAt.UTC().Format(time.RFC3339)},
	}
	for _, item := range items {
		pdf.CellFormat(35, 6, enc(item.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, enc(item.value), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	if png, err := FileHashToQR(doc.Sha256, 128); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("sha256-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("sha256-qr", 160, 20, 30, 30, false, opts, 0, "")
	}
	pdf.Ln(4)
}

func addRecordsSection(pdf *gofpdf.Fpdf, tl Translator, enc func(string) string, rows []ListingRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, enc(tl.T("section.records")))
	pdf.Ln(9)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, enc(tl.T("records.empty")), "", "L", false)
		return
	}

	headers := []string{tl.T("column.key"), tl.T("column.value"), tl.T("column.time")}
	widths := []float64{80, 60, 40}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, enc(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, row := range rows {
		values := []string{
			emptyFallback(row.Key, "-"),
			emptyFallback(row.Value, "-"),
			emptyFallback(row.Time, "-"),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
