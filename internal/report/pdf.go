package report

import (
	"bytes"
	"fmt"

	"github.com/signintech/gopdf"

	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

const (
	fontFamily   = "DejaVu"
	pageBottom   = 790.0
	textWidth    = 500.0
	leftMargin   = 40.0
	headerHeight = 30.0
)

// fallbackFontPaths covers the DejaVu locations used by common base images.
var fallbackFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func loadFont(pdf *gopdf.GoPdf, fontPath string) error {
	paths := fallbackFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, fallbackFontPaths...)
	}

	var lastErr error
	for _, path := range paths {
		err := pdf.AddTTFFont(fontFamily, path)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to load font for PDF, install ttf-dejavu or set REPORT_FONT_PATH: %w", lastErr)
}

type pdfWriter struct {
	pdf *gopdf.GoPdf
}

func (w *pdfWriter) font(size float64) error {
	return w.pdf.SetFont(fontFamily, "", size)
}

// line writes text wrapped to the page width, starting a new page when the
// cursor reaches the bottom margin.
func (w *pdfWriter) line(text string, height float64) error {
	lines, err := w.pdf.SplitText(text, textWidth)
	if err != nil {
		lines = []string{text}
	}
	for _, l := range lines {
		if w.pdf.GetY()+height > pageBottom {
			w.pdf.AddPage()
			w.pdf.SetXY(leftMargin, headerHeight)
		}
		w.pdf.SetX(leftMargin)
		if err := w.pdf.Cell(nil, l); err != nil {
			return err
		}
		w.pdf.Br(height)
	}
	return nil
}

// RenderPDF lays out the ward report: summary counts, then one block per
// patient with the current status.
func RenderPDF(st *Stats, patients []patient.Patient, fontPath string) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()
	pdf.SetXY(leftMargin, headerHeight)

	if err := loadFont(pdf, fontPath); err != nil {
		return nil, err
	}
	w := &pdfWriter{pdf: pdf}

	if err := w.font(20); err != nil {
		return nil, err
	}
	if err := w.line("Ward Report", 30); err != nil {
		return nil, err
	}

	if err := w.font(12); err != nil {
		return nil, err
	}
	summary := []string{
		fmt.Sprintf("Generated: %s", st.GeneratedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Total patients: %d", st.Total),
		fmt.Sprintf("Critical: %d   Warning: %d   Normal: %d", st.Critical, st.Warning, st.Normal),
		fmt.Sprintf("Unacknowledged alerts: %d", st.UnacknowledgedAlerts),
	}
	for _, s := range summary {
		if err := w.line(s, 15); err != nil {
			return nil, err
		}
	}
	pdf.Br(10)

	if err := w.font(14); err != nil {
		return nil, err
	}
	if err := w.line("Patients", 20); err != nil {
		return nil, err
	}

	if err := w.font(11); err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		if err := w.line("- No patients on the ward.", 14); err != nil {
			return nil, err
		}
	}
	for _, p := range patients {
		status := p.Status()
		header := fmt.Sprintf("%s (%s), floor %d, %s", p.Name, p.ID, p.Floor, status.Label())
		detail := fmt.Sprintf("   %s, age %d. RR %d bpm, airflow %d%%", p.Condition, p.Age, p.RespiratoryRate, p.Airflow)
		if err := w.line(header, 14); err != nil {
			return nil, err
		}
		if err := w.line(detail, 14); err != nil {
			return nil, err
		}
		if status == vitals.StatusCritical {
			for _, reason := range vitals.Breaches(p.RespiratoryRate, p.Airflow) {
				if err := w.line("   ! "+reason, 14); err != nil {
					return nil, err
				}
			}
		}
		pdf.Br(4)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
