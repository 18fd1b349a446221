package distiller

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hollowoak/distill/internal/config"
	"github.com/hollowoak/distill/internal/logging"
	"github.com/hollowoak/distill/internal/testutil"
)

const testConfig = `
whitelist:
  files:
    - "docs/huge_but_needed.bin"
blacklist:
  directories:
    - "node_modules"
  extensions:
    - ".exe"
  filename_substrings:
    - "secret"
max_file_size_mb: 1.0
data_sampling:
  target_extensions: [".csv"]
  head_rows: 2
  tail_rows: 2
`

func mustRules(t *testing.T, doc string) *config.RuleSet {
	t.Helper()
	rules, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return rules
}

func newRunner(t *testing.T, src, dst string, rules *config.RuleSet) *Distiller {
	t.Helper()
	d, err := New(Options{
		SourceDir: src,
		DestDir:   dst,
		Rules:     rules,
		Log:       logging.NewWriter(io.Discard, false),
		AssumeYes: true,
	})
	require.NoError(t, err)
	return d
}

func sourceFixture(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	bigCSV := "id,name\n"
	for i := 0; i < 20; i++ {
		bigCSV += "1,row\n"
	}
	testutil.WriteTree(t, src, map[string]string{
		"README.md":                "# readme\n",
		"src/main.go":              "package main\n",
		"data/events.csv":          bigCSV,
		"node_modules/pkg/x.js":    "x\n",
		"tools/helper.exe":         "bin\n",
		"notes/secret_plans.md":    "shh\n",
		"docs/huge_but_needed.bin": strings.Repeat("z", 2*1024*1024),
	})
	return src
}

func TestRunProducesFilteredTree(t *testing.T) {
	src := sourceFixture(t)
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, testConfig)

	stats, err := newRunner(t, src, dst, rules).Run(context.Background())
	require.NoError(t, err)

	got := testutil.ListTree(t, dst)
	assert.Equal(t, []string{
		"README.md",
		"data/events.csv",
		"docs/huge_but_needed.bin",
		"src/main.go",
	}, got)

	// Copied files are byte-identical, including the 2MB golden ticket.
	srcTree := testutil.ReadTree(t, src)
	dstTree := testutil.ReadTree(t, dst)
	assert.Equal(t, srcTree["README.md"], dstTree["README.md"])
	assert.Equal(t, srcTree["docs/huge_but_needed.bin"], dstTree["docs/huge_but_needed.bin"])

	// The CSV was sampled down to header, head, marker, tail.
	assert.Contains(t, dstTree["data/events.csv"], "... (16 rows omitted) ...")
	assert.Len(t, strings.Split(strings.TrimRight(dstTree["data/events.csv"], "\n"), "\n"), 6)

	assert.Equal(t, 7, stats.Scanned)
	assert.Equal(t, 3, stats.Copied)
	assert.Equal(t, 1, stats.Sampled)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 1, stats.SkipReasons["tier4_blacklist_directory"])
	assert.Equal(t, 1, stats.SkipReasons["tier4_blacklist_ext:.exe"])
	assert.Equal(t, 1, stats.SkipReasons["tier2_blacklist_filename_substring:secret"])
}

func TestRunIsIdempotent(t *testing.T) {
	src := sourceFixture(t)
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, testConfig)

	_, err := newRunner(t, src, dst, rules).Run(context.Background())
	require.NoError(t, err)
	first := testutil.ReadTree(t, dst)

	_, err = newRunner(t, src, dst, rules).Run(context.Background())
	require.NoError(t, err)
	second := testutil.ReadTree(t, dst)

	assert.Equal(t, first, second)
}

func TestDryRunWritesNothing(t *testing.T) {
	src := sourceFixture(t)
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, testConfig)

	d, err := New(Options{
		SourceDir: src,
		DestDir:   dst,
		Rules:     rules,
		Log:       logging.NewWriter(io.Discard, false),
		DryRun:    true,
	})
	require.NoError(t, err)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Copied)
	assert.Equal(t, 1, stats.Sampled)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the destination")
}

func TestWorkersProduceSameTree(t *testing.T) {
	src := sourceFixture(t)
	rules1 := mustRules(t, testConfig)
	rules4 := mustRules(t, testConfig+"workers: 4\n")

	dst1 := filepath.Join(t.TempDir(), "out1")
	dst4 := filepath.Join(t.TempDir(), "out4")

	_, err := newRunner(t, src, dst1, rules1).Run(context.Background())
	require.NoError(t, err)
	_, err = newRunner(t, src, dst4, rules4).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testutil.ReadTree(t, dst1), testutil.ReadTree(t, dst4))
}

func TestRespectGitignore(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		".gitignore":      "*.log\nbuildout/\n",
		"app.go":          "package app\n",
		"debug.log":       "noise\n",
		"buildout/a.txt":  "artifact\n",
		"keep/nested.txt": "keep\n",
	})
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, "respect_gitignore: true\n")

	stats, err := newRunner(t, src, dst, rules).Run(context.Background())
	require.NoError(t, err)

	got := testutil.ListTree(t, dst)
	assert.Equal(t, []string{".gitignore", "app.go", "keep/nested.txt"}, got)
	assert.Equal(t, 1, stats.SkipReasons["gitignored"])
}

func TestLuaFilterVetoes(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"keep.md": "k\n",
		"drop.md": "d\n",
	})
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, "lua_filter:\n  inline: \"name ~= 'drop.md'\"\n")

	stats, err := newRunner(t, src, dst, rules).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.md"}, testutil.ListTree(t, dst))
	assert.Equal(t, 1, stats.SkipReasons["lua_filter"])
}

func TestMissingSourceIsValidationError(t *testing.T) {
	rules := mustRules(t, "")
	d := newRunner(t, filepath.Join(t.TempDir(), "nope"), t.TempDir()+"-out", rules)

	_, err := d.Run(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDestInsideSourceIsValidationError(t *testing.T) {
	src := t.TempDir()
	rules := mustRules(t, "")
	d := newRunner(t, src, filepath.Join(src, "out"), rules)

	_, err := d.Run(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeclinedOverwriteCancels(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.txt": "a\n"})
	dst := t.TempDir()
	testutil.WriteTree(t, dst, map[string]string{"old.txt": "old\n"})
	rules := mustRules(t, "")

	var out bytes.Buffer
	d, err := New(Options{
		SourceDir: src,
		DestDir:   dst,
		Rules:     rules,
		Log:       logging.NewWriter(io.Discard, false),
		Stdin:     strings.NewReader("no\n"),
		Stdout:    &out,
	})
	require.NoError(t, err)

	_, err = d.Run(context.Background())
	var cerr *CancelledError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 130, cerr.ExitCode())
	assert.Contains(t, out.String(), "Continue? (yes/no):")

	// Declining must leave the old destination untouched.
	assert.Equal(t, []string{"old.txt"}, testutil.ListTree(t, dst))
}

func TestCancelledContext(t *testing.T) {
	src := sourceFixture(t)
	dst := filepath.Join(t.TempDir(), "out")
	rules := mustRules(t, testConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, src, dst, rules).Run(ctx)
	var cerr *CancelledError
	require.ErrorAs(t, err, &cerr)
}

func TestManifestWritten(t *testing.T) {
	src := sourceFixture(t)
	dst := filepath.Join(t.TempDir(), "out")
	manifest := filepath.Join(t.TempDir(), "run.yaml")
	rules := mustRules(t, testConfig)

	d, err := New(Options{
		SourceDir:    src,
		DestDir:      dst,
		Rules:        rules,
		Log:          logging.NewWriter(io.Discard, false),
		AssumeYes:    true,
		ManifestPath: manifest,
	})
	require.NoError(t, err)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "distill", m.Tool)
	assert.Equal(t, "chat", m.AICodingEnv)
	assert.Equal(t, stats.Scanned, m.Counts.Scanned)
	assert.Equal(t, stats.Skipped, m.Counts.Skipped)
	assert.NotEmpty(t, m.GeneratedAt)
	assert.NotEmpty(t, m.SkipReasons)
}
