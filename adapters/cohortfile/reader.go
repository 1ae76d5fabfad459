// Package cohortfile loads labeled patient cohorts from CSV and Excel files
// into the cohort data model, with per-column type coercion.
package cohortfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"plaquerisk/domain/cohort"
	apperrors "plaquerisk/internal/errors"
	"plaquerisk/ports"
)

// DataReader reads a cohort table whose columns are clinical features plus
// one binary label column.
type DataReader struct {
	labelColumn string
}

// NewDataReader creates a reader for the given label column.
func NewDataReader(labelColumn string) *DataReader {
	return &DataReader{labelColumn: labelColumn}
}

// ReadCohort reads the file (format by extension: .csv or .xlsx) and returns
// a validated dataset.
func (r *DataReader) ReadCohort(ctx context.Context, path string) (cohort.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return cohort.Dataset{}, fmt.Errorf("cohort file not found: %s", path)
	}

	var table [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = readCSV(path)
	case ".xlsx":
		table, err = readXLSX(path)
	default:
		return cohort.Dataset{}, apperrors.InvalidInput(fmt.Sprintf("unsupported cohort file type: %s", filepath.Ext(path)))
	}
	if err != nil {
		return cohort.Dataset{}, err
	}
	if len(table) < 2 {
		return cohort.Dataset{}, apperrors.InsufficientData("cohort file needs a header row and at least one data row")
	}

	ds, err := r.coerce(table)
	if err != nil {
		return cohort.Dataset{}, err
	}
	if err := ds.Validate(); err != nil {
		return cohort.Dataset{}, err
	}
	return ds, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// coerce infers one type per feature column (boolean, numeric, categorical)
// from its non-missing cells and builds the dataset. Missing cells become
// explicitly missing observations, never zeros.
func (r *DataReader) coerce(table [][]string) (cohort.Dataset, error) {
	headers := table[0]
	labelIdx := -1
	for i, h := range headers {
		if strings.TrimSpace(h) == r.labelColumn {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return cohort.Dataset{}, fmt.Errorf("label column %q not found in header", r.labelColumn)
	}

	var features []string
	featureIdx := make([]int, 0, len(headers)-1)
	for i, h := range headers {
		if i == labelIdx {
			continue
		}
		features = append(features, strings.TrimSpace(h))
		featureIdx = append(featureIdx, i)
	}

	kinds := make([]cohort.Kind, len(features))
	for f, col := range featureIdx {
		kinds[f] = inferColumnKind(table[1:], col)
	}

	ds := cohort.Dataset{Features: features}
	for rowNum, raw := range table[1:] {
		label, err := parseLabel(cell(raw, labelIdx))
		if err != nil {
			return cohort.Dataset{}, apperrors.ValidationError(fmt.Sprintf("row %d: %v", rowNum+2, err))
		}

		profile := make(cohort.Profile, len(features))
		for f, col := range featureIdx {
			profile[features[f]] = parseValue(cell(raw, col), kinds[f])
		}
		ds.Rows = append(ds.Rows, profile)
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}

// cell tolerates Excel rows that omit trailing empty cells.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isMissingToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "null", "none", "missing":
		return true
	}
	return false
}

func boolToken(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func inferColumnKind(rows [][]string, col int) cohort.Kind {
	kind := cohort.KindMissing
	allBool, allNumber := true, true
	for _, row := range rows {
		s := cell(row, col)
		if isMissingToken(s) {
			continue
		}
		kind = cohort.KindCategory
		if _, ok := boolToken(s); !ok {
			allBool = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allNumber = false
		}
	}
	if kind == cohort.KindMissing {
		return cohort.KindMissing
	}
	if allBool {
		return cohort.KindBool
	}
	if allNumber {
		return cohort.KindNumber
	}
	return cohort.KindCategory
}

func parseValue(s string, kind cohort.Kind) cohort.Value {
	if isMissingToken(s) {
		return cohort.Missing
	}
	switch kind {
	case cohort.KindBool:
		flag, _ := boolToken(s)
		return cohort.Bool(flag)
	case cohort.KindNumber:
		v, _ := strconv.ParseFloat(s, 64)
		return cohort.Num(v)
	default:
		return cohort.Cat(s)
	}
}

func parseLabel(s string) (int, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return 1, nil
	case "0", "false", "no":
		return 0, nil
	}
	return 0, fmt.Errorf("label %q is not binary", s)
}

var _ ports.CohortReader = (*DataReader)(nil)
