package sampler

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hollowoak/distill/internal/fsutil"
)

// sampledArray is the reduced form of an oversized JSON array. Elements are
// carried as raw messages so their bytes survive untouched.
type sampledArray struct {
	Sampled      bool              `json:"_sampled"`
	TotalItems   int               `json:"_total_items"`
	OmittedItems int               `json:"_omitted_items"`
	Head         []json.RawMessage `json:"head"`
	Tail         []json.RawMessage `json:"tail"`
}

// sampleJSON reduces a JSON document whose root is an array longer than the
// head+tail threshold. Objects, scalars, short arrays, and unparseable
// documents are copied unchanged.
func (s *Sampler) sampleJSON(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		s.log.Warnf("Empty JSON file: %s", src)
		return fsutil.CopyFile(src, dst)
	}

	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			s.log.Warnf("Invalid JSON in %s. Copying as-is.", filepath.Base(src))
		} else {
			s.log.Debugf("JSON object/primitive (not sampled): %s", filepath.Base(src))
		}
		return fsutil.CopyFile(src, dst)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		s.log.Warnf("Invalid JSON in %s: %v. Copying as-is.", filepath.Base(src), err)
		return fsutil.CopyFile(src, dst)
	}

	total := len(items)
	if total <= s.opts.HeadRows+s.opts.TailRows {
		s.log.Debugf("JSON array copied intact: %s (%d items)", filepath.Base(src), total)
		return fsutil.CopyFile(src, dst)
	}

	head := items[:s.opts.HeadRows]
	tail := items[total-s.opts.TailRows:]
	if s.opts.TailRows == 0 {
		tail = []json.RawMessage{}
	}

	out := sampledArray{
		Sampled:      true,
		TotalItems:   total,
		OmittedItems: total - len(head) - len(tail),
		Head:         head,
		Tail:         tail,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if err := fsutil.WriteFile(dst, data); err != nil {
		return err
	}
	s.log.Infof("SAMPLED[JSON]: %s (%d items)", filepath.Base(src), total)
	return nil
}
