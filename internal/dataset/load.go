package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/utils"
	"github.com/xuri/excelize/v2"
)

// Load reads a `url,label` table from a CSV or, for .xlsx paths, the first
// worksheet of an Excel workbook. URLs are normalized and rows with invalid
// URLs or labels are dropped with a warning. A missing file is reported with
// an error wrapping fs.ErrNotExist.
func Load(path string, logger logging.Logger) ([]LabeledURL, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "dataset"})

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load %s: %w: empty file", path, ErrNoData)
	}

	urlCol, labelCol, err := headerColumns(records[0])
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	var (
		out          []LabeledURL
		badURL, badY int
	)
	for _, rec := range records[1:] {
		if urlCol >= len(rec) || labelCol >= len(rec) {
			badURL++
			continue
		}
		u, err := utils.ParseTarget(rec[urlCol])
		if err != nil {
			badURL++
			continue
		}
		label, err := parseLabel(rec[labelCol])
		if err != nil {
			badY++
			continue
		}
		out = append(out, LabeledURL{URL: u, Label: label})
	}

	if badURL > 0 {
		logger.Warn("dropped rows with invalid urls",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "count", Value: badURL})
	}
	if badY > 0 {
		logger.Warn("dropped rows with invalid labels",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "count", Value: badY})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("load %s: %w", path, ErrNoData)
	}
	logger.Info("loaded labeled urls",
		logging.Field{Key: "path", Value: path},
		logging.Field{Key: "rows", Value: len(out)})
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func headerColumns(header []string) (int, int, error) {
	urlCol, labelCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "url":
			urlCol = i
		case "label":
			labelCol = i
		}
	}
	if urlCol < 0 || labelCol < 0 {
		return 0, 0, errors.New("header must contain url and label columns")
	}
	return urlCol, labelCol, nil
}

// parseLabel accepts 0/1 (also 0.0/1.0) and the words legit/phishing.
func parseLabel(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "phishing", "phish", "malicious":
		return 1, nil
	case "legit", "legitimate", "benign":
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("label %q: %w", s, err)
	}
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("label %q is not 0 or 1", s)
}
