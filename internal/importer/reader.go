package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

type row struct {
	line  int
	cells []string
}

// readRows returns the data rows of a sheet, header excluded.
func readRows(path string, log *slog.Logger) ([]row, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	return readCSV(raw, filepath.Base(path), log)
}

func readCSV(raw []byte, name string, log *slog.Logger) ([]row, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrImport, name, err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		log.Warn("import_replacement_chars", "file", name)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: header of %s: %v", ErrImport, name, err)
	}

	var rows []row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				log.Warn("import_record_error", "file", name, "line", pe.Line, "err", pe.Err)
				continue
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrImport, name, err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row{line: line, cells: rec})
	}
	return rows, nil
}

func readXLSX(path string) ([]row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrImport, filepath.Base(path))
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	if len(all) < 2 {
		return nil, nil
	}
	rows := make([]row, 0, len(all)-1)
	for i, rec := range all[1:] {
		rows = append(rows, row{line: i + 2, cells: rec})
	}
	return rows, nil
}

// cell returns the trimmed value at idx and whether the row has that column.
func cell(cells []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(cells) {
		return "", false
	}
	return strings.TrimSpace(cells[idx]), true
}

func loggerOr(log *slog.Logger) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With("cmp", "importer")
}
