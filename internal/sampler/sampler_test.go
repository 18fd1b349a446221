package sampler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowoak/distill/internal/logging"
)

func newTestSampler(opts Options) *Sampler {
	return New(opts, logging.NewWriter(&bytes.Buffer{}, false))
}

func writeSource(t *testing.T, name, content string) (src, dst string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, name)
	dst = filepath.Join(dir, "out", name)
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	return src, dst
}

func readDst(t *testing.T, dst string) string {
	t.Helper()
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	return string(b)
}

func csvRows(header bool, n int) string {
	var b strings.Builder
	if header {
		b.WriteString("id,name,value\n")
	}
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d,row%d,%d\n", i, i, i*10)
	}
	return b.String()
}

func TestDelimited_UnderThresholdCopiedIntact(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: true, HeadRows: 5, TailRows: 5})
	content := csvRows(true, 8)
	src, dst := writeSource(t, "small.csv", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestDelimited_OverThresholdSampled(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: true, HeadRows: 5, TailRows: 5})
	src, dst := writeSource(t, "big.csv", csvRows(true, 20))

	require.NoError(t, s.Sample(src, dst))
	lines := strings.Split(strings.TrimRight(readDst(t, dst), "\n"), "\n")
	require.Len(t, lines, 12)

	assert.Equal(t, "id,name,value", lines[0])
	assert.Equal(t, "1,row1,10", lines[1])
	assert.Equal(t, "5,row5,50", lines[5])
	assert.Equal(t, "... (10 rows omitted) ...,,", lines[6])
	assert.Equal(t, "16,row16,160", lines[7])
	assert.Equal(t, "20,row20,200", lines[11])
}

func TestDelimited_NoHeader(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: false, HeadRows: 2, TailRows: 2})
	src, dst := writeSource(t, "raw.csv", csvRows(false, 10))

	require.NoError(t, s.Sample(src, dst))
	lines := strings.Split(strings.TrimRight(readDst(t, dst), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1,row1,10", lines[0])
	assert.Equal(t, "... (6 rows omitted) ...,,", lines[2])
	assert.Equal(t, "10,row10,100", lines[4])
}

func TestDelimited_TSV(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: true, HeadRows: 1, TailRows: 1})
	var b strings.Builder
	b.WriteString("a\tb\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "%d\t%d\n", i, i)
	}
	src, dst := writeSource(t, "table.tsv", b.String())

	require.NoError(t, s.Sample(src, dst))
	lines := strings.Split(strings.TrimRight(readDst(t, dst), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "a\tb", lines[0])
	assert.Equal(t, "1\t1", lines[1])
	assert.Equal(t, "... (3 rows omitted) ...\t", lines[2])
	assert.Equal(t, "5\t5", lines[3])
}

func TestDelimited_EmptyFileCopied(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: true, HeadRows: 5, TailRows: 5})
	src, dst := writeSource(t, "empty.csv", "")

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, "", readDst(t, dst))
}

func TestDelimited_InvalidUTF8Replaced(t *testing.T) {
	s := newTestSampler(Options{IncludeHeader: false, HeadRows: 2, TailRows: 1})
	rows := []string{"ok,1", string([]byte{'b', 0xff, 'd', ',', '2'}), "ok,3", "ok,4"}
	src, dst := writeSource(t, "mixed.csv", strings.Join(rows, "\n")+"\n")

	require.NoError(t, s.Sample(src, dst))
	out := readDst(t, dst)
	assert.Contains(t, out, "b�d,2")
	assert.Contains(t, out, "... (1 rows omitted) ...")
}

func TestJSONL_OverThreshold(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 2, TailRows: 2})
	var b strings.Builder
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&b, `{"n":%d}`+"\n", i)
	}
	src, dst := writeSource(t, "events.jsonl", b.String())

	require.NoError(t, s.Sample(src, dst))
	out := readDst(t, dst)
	want := "{\"n\":1}\n{\"n\":2}\n\n... (3 objects omitted) ...\n\n{\"n\":6}\n{\"n\":7}"
	assert.Equal(t, want, out)
}

func TestJSONL_BlankLinesNotCounted(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 2, TailRows: 2})
	content := "{\"n\":1}\n\n{\"n\":2}\n\n\n{\"n\":3}\n{\"n\":4}\n"
	src, dst := writeSource(t, "gaps.jsonl", content)

	// 4 records <= 2+2: copied intact, blank lines and all.
	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestJSON_ArraySampled(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 5, TailRows: 5})
	items := make([]map[string]int, 50)
	for i := range items {
		items[i] = map[string]int{"i": i}
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	src, dst := writeSource(t, "items.json", string(raw))

	require.NoError(t, s.Sample(src, dst))

	var out struct {
		Sampled      bool             `json:"_sampled"`
		TotalItems   int              `json:"_total_items"`
		OmittedItems int              `json:"_omitted_items"`
		Head         []map[string]int `json:"head"`
		Tail         []map[string]int `json:"tail"`
	}
	require.NoError(t, json.Unmarshal([]byte(readDst(t, dst)), &out))
	assert.True(t, out.Sampled)
	assert.Equal(t, 50, out.TotalItems)
	assert.Equal(t, 40, out.OmittedItems)
	require.Len(t, out.Head, 5)
	require.Len(t, out.Tail, 5)
	assert.Equal(t, 0, out.Head[0]["i"])
	assert.Equal(t, 4, out.Head[4]["i"])
	assert.Equal(t, 45, out.Tail[0]["i"])
	assert.Equal(t, 49, out.Tail[4]["i"])
}

func TestJSON_ElementsPreservedVerbatim(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 1, TailRows: 1})
	// Large integers and key order must survive untouched.
	content := `[{"id":9007199254740993,"b":1,"a":2},{"x":1},{"y":2}]`
	src, dst := writeSource(t, "precise.json", content)

	require.NoError(t, s.Sample(src, dst))

	var out struct {
		Head []json.RawMessage `json:"head"`
		Tail []json.RawMessage `json:"tail"`
	}
	require.NoError(t, json.Unmarshal([]byte(readDst(t, dst)), &out))
	require.Len(t, out.Head, 1)
	require.Len(t, out.Tail, 1)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, out.Head[0]))
	assert.Equal(t, `{"id":9007199254740993,"b":1,"a":2}`, compact.String())

	compact.Reset()
	require.NoError(t, json.Compact(&compact, out.Tail[0]))
	assert.Equal(t, `{"y":2}`, compact.String())
}

func TestJSON_ShortArrayCopied(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 5, TailRows: 5})
	content := `[1, 2, 3]`
	src, dst := writeSource(t, "short.json", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestJSON_ObjectRootCopied(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 1, TailRows: 1})
	content := `{"a": [1,2,3,4,5,6,7,8,9]}`
	src, dst := writeSource(t, "object.json", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestJSON_MalformedCopiedByteIdentical(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 5, TailRows: 5})
	content := `{"broken": [1,2,`
	src, dst := writeSource(t, "broken.json", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestJSON_MalformedArrayCopied(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 1, TailRows: 1})
	content := `[1, 2, oops]`
	src, dst := writeSource(t, "badarray.json", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestUnknownExtensionFallsBackToCopy(t *testing.T) {
	s := newTestSampler(Options{HeadRows: 1, TailRows: 1})
	content := "col1|col2\na|b\n"
	src, dst := writeSource(t, "data.psv", content)

	require.NoError(t, s.Sample(src, dst))
	assert.Equal(t, content, readDst(t, dst))
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer[int](3)
	for i := 1; i <= 7; i++ {
		b.push(i)
	}
	assert.Equal(t, []int{5, 6, 7}, b.slice())
	assert.Equal(t, 3, b.len())

	empty := newTailBuffer[int](0)
	empty.push(1)
	assert.Empty(t, empty.slice())
}
