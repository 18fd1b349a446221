package sampler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hollowoak/distill/internal/fsutil"
)

// sampleDelimited reduces a CSV/TSV file to header (if configured), the first
// HeadRows data rows, one marker row naming the omitted count, and the last
// TailRows data rows. Files at or under the threshold are copied intact.
func (s *Sampler) sampleDelimited(src, dst string, comma rune) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	// Invalid byte sequences become replacement characters instead of
	// failing the run.
	content := strings.ToValidUTF8(string(raw), "�")

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	head := make([][]string, 0, s.opts.HeadRows)
	tail := newTailBuffer[[]string](s.opts.TailRows)
	totalDataRows := 0
	numCols := 1

	rowIdx := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.log.Warnf("Malformed delimited file %s: %v. Copying as-is.", filepath.Base(src), err)
			return fsutil.CopyFile(src, dst)
		}
		if len(row) > numCols {
			numCols = len(row)
		}
		if rowIdx == 0 && s.opts.IncludeHeader {
			header = row
			rowIdx++
			continue
		}
		rowIdx++
		totalDataRows++
		if len(head) < s.opts.HeadRows {
			head = append(head, row)
		}
		tail.push(row)
	}

	if header == nil && totalDataRows == 0 {
		s.log.Warnf("Empty delimited file: %s", src)
		return fsutil.CopyFile(src, dst)
	}
	if totalDataRows <= s.opts.HeadRows+s.opts.TailRows {
		s.log.Debugf("Delimited file copied intact: %s (%d data rows)", filepath.Base(src), totalDataRows)
		return fsutil.CopyFile(src, dst)
	}

	omitted := totalDataRows - len(head) - tail.len()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma

	if header != nil {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for _, row := range head {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	marker := make([]string, numCols)
	marker[0] = fmt.Sprintf("... (%d rows omitted) ...", omitted)
	if err := w.Write(marker); err != nil {
		return err
	}
	for _, row := range tail.slice() {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := fsutil.WriteFile(dst, buf.Bytes()); err != nil {
		return err
	}
	s.log.Infof("SAMPLED[DELIM]: %s (%d data rows)", filepath.Base(src), totalDataRows)
	return nil
}
