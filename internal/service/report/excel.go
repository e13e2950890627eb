package report

import (
	"io"

	"attendance/tracker/internal/entity"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Attendance"

// AttendanceXLSX writes rows as a single sheet workbook. The hours column is
// numeric so it can be summed.
func AttendanceXLSX(w io.Writer, rows []entity.AttendanceWithUser) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, r := range rows {
		cells := row(r)
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		if r.TotalHours != nil {
			values[6] = *r.TotalHours
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err = f.SetSheetRow(SheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err = f.SetColWidth(SheetName, "A", "H", 22); err != nil {
		return errors.Wrap(err, "setting column width")
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
