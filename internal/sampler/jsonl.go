package sampler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hollowoak/distill/internal/fsutil"
)

// sampleJSONL treats each non-empty line as one logical record. Blank lines
// are not counted. Line content is preserved verbatim, no re-serialization.
func (s *Sampler) sampleJSONL(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	content := strings.ToValidUTF8(string(raw), "�")

	head := make([]string, 0, s.opts.HeadRows)
	tail := newTailBuffer[string](s.opts.TailRows)
	total := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if len(head) < s.opts.HeadRows {
			head = append(head, line)
		}
		tail.push(line)
	}

	if total == 0 {
		s.log.Warnf("Empty JSONL file: %s", src)
		return fsutil.CopyFile(src, dst)
	}
	if total <= s.opts.HeadRows+s.opts.TailRows {
		s.log.Debugf("JSONL file copied intact: %s (%d objects)", filepath.Base(src), total)
		return fsutil.CopyFile(src, dst)
	}

	omitted := total - len(head) - tail.len()

	var buf bytes.Buffer
	if len(head) > 0 {
		buf.WriteString(strings.Join(head, "\n"))
		buf.WriteString("\n\n")
	}
	fmt.Fprintf(&buf, "... (%d objects omitted) ...\n\n", omitted)
	buf.WriteString(strings.Join(tail.slice(), "\n"))

	if err := fsutil.WriteFile(dst, buf.Bytes()); err != nil {
		return err
	}
	s.log.Infof("SAMPLED[JSONL]: %s (%d objects)", filepath.Base(src), total)
	return nil
}
