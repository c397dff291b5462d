package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/utils"
)

// row is the on-disk layout of the processed artifact.
type row struct {
	URL       string  `parquet:"url"`
	Label     int64   `parquet:"label"`
	Feature1  float64 `parquet:"feature_1"`
	Feature2  float64 `parquet:"feature_2"`
	Feature3  float64 `parquet:"feature_3"`
	Feature4  float64 `parquet:"feature_4"`
	Feature5  float64 `parquet:"feature_5"`
	Feature6  float64 `parquet:"feature_6"`
	Feature7  float64 `parquet:"feature_7"`
	Feature8  float64 `parquet:"feature_8"`
	Feature9  float64 `parquet:"feature_9"`
	Feature10 float64 `parquet:"feature_10"`
}

func toRow(e Example) row {
	v := e.Features
	return row{
		URL: e.URL, Label: int64(e.Label),
		Feature1: v[0], Feature2: v[1], Feature3: v[2], Feature4: v[3], Feature5: v[4],
		Feature6: v[5], Feature7: v[6], Feature8: v[7], Feature9: v[8], Feature10: v[9],
	}
}

func (r row) example() Example {
	return Example{
		URL:   r.URL,
		Label: int(r.Label),
		Features: features.Vector{
			r.Feature1, r.Feature2, r.Feature3, r.Feature4, r.Feature5,
			r.Feature6, r.Feature7, r.Feature8, r.Feature9, r.Feature10,
		},
	}
}

// WriteParquet replaces path with examples. The write is atomic.
func WriteParquet(path string, examples []Example) error {
	rows := make([]row, len(examples))
	for i, e := range examples {
		rows[i] = toRow(e)
	}
	err := utils.AtomicWrite(path, 0o644, func(w io.Writer) error {
		return parquet.Write(w, rows)
	})
	if err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// ReadParquet loads examples written by WriteParquet. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func ReadParquet(path string) ([]Example, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	rows, err := parquet.ReadFile[row](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read parquet %s: %w", path, ErrNoData)
	}
	out := make([]Example, len(rows))
	for i, r := range rows {
		out[i] = r.example()
	}
	return out, nil
}
