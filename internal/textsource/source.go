package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// wordGap is the horizontal distance, in points, above which two text runs
// on one row are separated by a space.
const wordGap = 1.0

// Lines reads path and returns its normalized line sequence. PDF and plain
// text files are supported.
func Lines(ctx context.Context, path string) ([]string, error) {
	var (
		raw []string
		err error
	)
	switch constants.MapExtToSource(filepath.Ext(path)) {
	case constants.SourceTXT:
		raw, err = textLines(path)
	case constants.SourcePDF:
		raw, err = pdfLines(ctx, path)
	default:
		return nil, common.NewAppError("SOURCE_UNSUPPORTED",
			fmt.Sprintf("unsupported file type %q", filepath.Ext(path)), common.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return NormalizeLines(raw), nil
}

func textLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return SplitLines(string(b)), nil
}

// pdfLines renders every page row by row, top to bottom.
func pdfLines(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
	}
	return lines, nil
}

func joinRow(words pdf.TextHorizontal) string {
	var b strings.Builder
	prevEnd := -1.0
	for _, w := range words {
		if b.Len() > 0 && prevEnd >= 0 && w.X-prevEnd > wordGap {
			b.WriteByte(' ')
		}
		b.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	return b.String()
}
