package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// TableReader decodes one source file into a DataFrame.
type TableReader interface {
	CanRead(filename string) bool
	Read(content []byte) (dataframe.DataFrame, error)
}

var readers []TableReader

// RegisterReader adds a reader implementation to the registry. Readers are
// tried in registration order.
func RegisterReader(r TableReader) {
	readers = append(readers, r)
}

// ErrUnsupportedSource indicates no reader accepts a file name.
var ErrUnsupportedSource = errors.New("unsupported source format")

func readerFor(filename string) (TableReader, error) {
	for _, r := range readers {
		if r.CanRead(filename) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Base(filename))
}

var nanValues = []string{"", "NA", "NaN", "nan", "<nil>"}

type delimitedReader struct {
	ext   string
	delim rune
}

func (r delimitedReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), r.ext)
}

func (r delimitedReader) Read(content []byte) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(bytes.NewReader(content),
		dataframe.WithDelimiter(r.delim),
		dataframe.NaNValues(nanValues),
	)
	return df, df.Err
}

// xlsxReader reads the first sheet of a workbook; row 1 is the header.
type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(content []byte) (dataframe.DataFrame, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, errors.New("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	// GetRows drops trailing empty cells; pad to the header width.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}
	df := dataframe.LoadRecords(rows, dataframe.NaNValues(nanValues))
	return df, df.Err
}

func init() {
	RegisterReader(delimitedReader{ext: ".csv", delim: ','})
	RegisterReader(delimitedReader{ext: ".tsv", delim: '\t'})
	RegisterReader(xlsxReader{})
}
