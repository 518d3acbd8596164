package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

type xlsxFormat struct{}

func (xlsxFormat) Name() string      { return "xlsx" }
func (xlsxFormat) Extension() string { return "xlsx" }
func (xlsxFormat) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write produces a workbook with one sheet per view. Numeric columns are
// written as numbers; missing values are left blank.
func (xlsxFormat) Write(w io.Writer, views ...View) error {
	if len(views) == 0 {
		return errors.New("xlsx export needs at least one view")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, v := range views {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), v.Name); err != nil {
				return fmt.Errorf("name sheet %s: %w", v.Name, err)
			}
		} else if _, err := f.NewSheet(v.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", v.Name, err)
		}
		if err := writeSheet(f, v.Name, v.Frame); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", sheet, err)
	}

	cols := columnCells(df)
	for r := 0; r < df.Nrow(); r++ {
		row := make([]interface{}, len(cols))
		for j, get := range cols {
			if v, ok := get(r); ok {
				row[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", r+1, sheet, err)
		}
	}
	return nil
}
