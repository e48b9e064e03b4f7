// Package output renders per-bucket results and the final total.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yourusername/s3du/types"
)

// FormatSize renders a byte count in the requested unit. The space between
// number and unit is stripped so the output stays sortable with `sort -h`.
func FormatSize(size uint64, unit types.SizeUnit) string {
	switch unit {
	case types.UnitBinary:
		return strings.ReplaceAll(humanize.IBytes(size), " ", "")
	case types.UnitDecimal:
		return strings.ReplaceAll(humanize.Bytes(size), " ", "")
	default:
		return strconv.FormatUint(size, 10)
	}
}

// Writer prints sizing results in a fixed unit
type Writer struct {
	w    io.Writer
	unit types.SizeUnit
}

// NewWriter returns a Writer printing to w
func NewWriter(w io.Writer, unit types.SizeUnit) *Writer {
	return &Writer{
		w:    w,
		unit: unit,
	}
}

// WriteBucketSize prints one bucket's result
func (w *Writer) WriteBucketSize(bucket string, size uint64) {
	fmt.Fprintf(w.w, "%s: %s\n", bucket, FormatSize(size, w.unit))
}

// WriteTotal prints the final total over all sized buckets
func (w *Writer) WriteTotal(size uint64) {
	fmt.Fprintf(w.w, "total: %s\n", FormatSize(size, w.unit))
}
