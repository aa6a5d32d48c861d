// Package sheet reads add-on lists from and writes check results to Excel
// workbooks.
package sheet

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/adasatorres/check-migration-addons/config"
)

// StatusHeader is the header of the appended result column.
const StatusHeader = "status"

// outputSuffix is inserted before the extension of the output file name.
const outputSuffix = "_estado"

const outputMode os.FileMode = 0o644

// ErrMissingColumn is returned when a configured column is not in the header row.
var ErrMissingColumn = errors.New("missing column")

// InputRow is one add-on to check.
type InputRow struct {
	Index         int // 0-based data row position in the source sheet
	RepositoryURL string
	DirectoryName string
	Values        map[string]string // every selected column, by header
}

// OutputRow is an InputRow with its rendered status.
type OutputRow struct {
	InputRow
	Status string
}

// Read loads the first sheet of the workbook at path. The first row is the
// header; rows with a blank value in any selected column are dropped.
func Read(path string, cols *config.ColumnsConfig) ([]InputRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMissingColumn, path)
	}

	positions := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}

	var missing []string
	for _, h := range cols.Headers {
		if _, ok := positions[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingColumn, path, strings.Join(missing, ", "))
	}

	var result []InputRow
	for i, row := range rows[1:] {
		values := make(map[string]string, len(cols.Headers))
		complete := true
		for _, h := range cols.Headers {
			v := cell(row, positions[h])
			if v == "" {
				complete = false
				break
			}
			values[h] = v
		}
		if !complete {
			slog.Debug("skipping incomplete row", "row", i)
			continue
		}

		result = append(result, InputRow{
			Index:         i,
			RepositoryURL: values[cols.URL],
			DirectoryName: values[cols.Directory],
			Values:        values,
		})
	}

	slog.Info("input file read", "path", path, "rows", len(result), "skipped", len(rows)-1-len(result))
	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Write saves rows to a new workbook at path: an index column, the selected
// columns in configured order and the status column. The file is written to
// a temporary sibling and renamed into place.
func Write(path string, cols *config.ColumnsConfig, rows []OutputRow) (err error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, 0, len(cols.Headers)+2)
	header = append(header, "")
	for _, h := range cols.Headers {
		header = append(header, h)
	}
	header = append(header, StatusHeader)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		values := make([]interface{}, 0, len(header))
		values = append(values, row.Index)
		for _, h := range cols.Headers {
			values = append(values, row.Values[h])
		}
		values = append(values, row.Status)

		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Index, err)
		}
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// CreateTemp creates files as 0600.
	if err := tmp.Chmod(outputMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// OutputPath returns the result file path for input: same base name with the
// "_estado" suffix, in the current directory.
func OutputPath(input string) string {
	name := filepath.Base(input)
	ext := filepath.Ext(name)
	return "." + string(filepath.Separator) + strings.TrimSuffix(name, ext) + outputSuffix + ext
}
