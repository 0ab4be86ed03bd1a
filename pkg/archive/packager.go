// Package archive packages a Result Bundle into a downloadable ZIP.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// ErrNothingToPackage is returned when the bundle is absent or empty.
// Absence of data is a no-op, never a corrupt archive.
var ErrNothingToPackage = errors.New("nothing to package")

// Archive entry names and the suggested download filename.
const (
	ImageEntryName = "annotated_image.jpg"
	CSVEntryName   = "results.csv"
	TextEntryName  = "detection_results.txt"
	DownloadName   = "results.zip"
)

// Variant selects how the tabular summary is stored in the archive.
type Variant string

const (
	// VariantCSV stores the summary as a header+rows CSV table.
	VariantCSV Variant = "csv"
	// VariantText stores the freeform text summary.
	VariantText Variant = "text"
)

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	return v == VariantCSV || v == VariantText
}

// Package builds the archive fully in memory: one entry for the annotated
// image and one for the tabular summary. The bytes are only returned once
// the archive is complete.
func Package(bundle *types.ResultBundle, variant Variant) ([]byte, error) {
	if bundle.Empty() {
		return nil, ErrNothingToPackage
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(ImageEntryName)
	if err != nil {
		return nil, fmt.Errorf("create image entry: %w", err)
	}
	if _, err := w.Write(bundle.AnnotatedImage); err != nil {
		return nil, fmt.Errorf("write image entry: %w", err)
	}

	switch variant {
	case VariantText:
		w, err := zw.Create(TextEntryName)
		if err != nil {
			return nil, fmt.Errorf("create summary entry: %w", err)
		}
		if _, err := w.Write([]byte(bundle.SummaryText)); err != nil {
			return nil, fmt.Errorf("write summary entry: %w", err)
		}
	default:
		w, err := zw.Create(CSVEntryName)
		if err != nil {
			return nil, fmt.Errorf("create summary entry: %w", err)
		}
		if err := writeCSV(w, bundle.Rows); err != nil {
			return nil, fmt.Errorf("write summary entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCSV(w io.Writer, rows []types.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Label", "Score", "Bounding Box"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Label,
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			types.FormatBox(row.Box),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
