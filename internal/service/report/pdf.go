package report

import (
	"io"

	"attendance/tracker/internal/entity"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
)

var columnWidths = []float64{38, 52, 40, 40, 40, 40, 14, 13}

// AttendancePDF writes rows as a landscape A4 table under title.
func AttendancePDF(w io.Writer, title string, rows []entity.AttendanceWithUser) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(5, 10, 5)
	pdf.SetAutoPageBreak(true, 10)

	printHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range headers {
			pdf.CellFormat(columnWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		printHeader()
	})
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, r := range rows {
		for i, c := range row(r) {
			pdf.CellFormat(columnWidths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No attendance records", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing pdf")
	}
	return nil
}
