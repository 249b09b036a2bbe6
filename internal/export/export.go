package export

import (
	"encoding/csv"
	"io"

	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/pkg/apperr"
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet written by Excel exports.
const SheetName = "FilteredData"

// WriteCSV serializes the filtered view as comma-delimited UTF-8 with a
// header row.
func WriteCSV(v *dataset.View, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(v.Columns()))
	for _, c := range v.Columns() {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return apperr.Wrapf(apperr.ExportFailed, "write csv header: %v", err)
	}
	for ri := 0; ri < v.NumRows(); ri++ {
		if err := cw.Write(v.Row(ri)); err != nil {
			return apperr.Wrapf(apperr.ExportFailed, "write csv row %d: %v", ri, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Wrapf(apperr.ExportFailed, "flush csv: %v", err)
	}
	return nil
}

// WriteExcel serializes the filtered view as an XLSX workbook with a single
// sheet named FilteredData.
func WriteExcel(v *dataset.View, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetName)

	header := make([]interface{}, 0, len(v.Columns()))
	for _, c := range v.Columns() {
		header = append(header, c.Name)
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := f.SetSheetRow(SheetName, cell, &header); err != nil {
		return apperr.Wrapf(apperr.ExportFailed, "write header row: %v", err)
	}

	for ri := 0; ri < v.NumRows(); ri++ {
		row := v.Row(ri)
		vals := make([]interface{}, len(row))
		for i, s := range row {
			vals[i] = s
		}
		cell, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return apperr.Wrapf(apperr.ExportFailed, "write row %d: %v", ri, err)
		}
	}

	if err := f.Write(w); err != nil {
		return apperr.Wrapf(apperr.ExportFailed, "write workbook: %v", err)
	}
	return nil
}
