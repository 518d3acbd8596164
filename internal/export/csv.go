package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type csvFormat struct{}

func (csvFormat) Name() string        { return "csv" }
func (csvFormat) Extension() string   { return "csv" }
func (csvFormat) ContentType() string { return "text/csv; charset=utf-8" }

// Write emits a single view as comma-separated text with a header row.
// Numbers keep full precision; missing cells are empty.
func (csvFormat) Write(w io.Writer, views ...View) error {
	if len(views) != 1 {
		return fmt.Errorf("csv export takes exactly one view, got %d", len(views))
	}
	v := views[0]
	cw := csv.NewWriter(w)
	if err := cw.Write(v.Frame.Names()); err != nil {
		return fmt.Errorf("write csv %s: %w", v.Name, err)
	}
	cols := columnCells(v.Frame)
	rec := make([]string, len(cols))
	for r := 0; r < v.Frame.Nrow(); r++ {
		for j, get := range cols {
			rec[j] = ""
			val, ok := get(r)
			if !ok {
				continue
			}
			switch x := val.(type) {
			case float64:
				rec[j] = strconv.FormatFloat(x, 'f', -1, 64)
			case string:
				rec[j] = x
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv %s: %w", v.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv %s: %w", v.Name, err)
	}
	return nil
}
