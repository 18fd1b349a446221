// Package config loads the distiller rule set from a YAML document. The raw
// document is validated against a CUE schema before the typed RuleSet is
// built, so the rest of the program only ever sees validated values.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hollowoak/distill/internal/pathmatch"
)

// Error is a fatal configuration error. The run aborts before any traversal.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "config: " + e.Msg }

func errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// RuleSet is the validated, immutable rule configuration for one run.
type RuleSet struct {
	AICodingEnv string

	MaxFileSizeMB    float64
	MaxFileSizeBytes int64

	WhitelistFiles       []string
	WhitelistDirectories []string

	BlacklistFiles              []string
	BlacklistDirectories        []string
	BlacklistExtensions         map[string]struct{}
	BlacklistPatterns           []*regexp.Regexp
	BlacklistFilenameSubstrings []string
	BlacklistDatetimeStamp      bool

	SamplingEnabled       bool
	SamplingExtensions    map[string]struct{}
	SamplingIncludeHeader bool
	SamplingHeadRows      int
	SamplingTailRows      int

	RespectGitignore bool
	Workers          int

	LuaFilterInline    string
	LuaFilterTimeoutMs int
}

type rawWhitelist struct {
	Files       []string `yaml:"files"`
	Directories []string `yaml:"directories"`
}

type rawBlacklist struct {
	Files                 []string `yaml:"files"`
	Directories           []string `yaml:"directories"`
	Extensions            []string `yaml:"extensions"`
	Patterns              []string `yaml:"patterns"`
	FilenameSubstrings    []string `yaml:"filename_substrings"`
	DatetimeStampYYYYMMDD *bool    `yaml:"datetime_stamp_yyyymmdd"`
}

type rawSampling struct {
	Enabled          *bool    `yaml:"enabled"`
	TargetExtensions []string `yaml:"target_extensions"`
	IncludeHeader    *bool    `yaml:"include_header"`
	HeadRows         *int     `yaml:"head_rows"`
	TailRows         *int     `yaml:"tail_rows"`
}

type rawLuaFilter struct {
	Inline    string `yaml:"inline"`
	TimeoutMs *int   `yaml:"timeout_ms"`
}

type rawConfig struct {
	AICodingEnv      string       `yaml:"ai_coding_env"`
	MaxFileSizeMB    *float64     `yaml:"max_file_size_mb"`
	RespectGitignore bool         `yaml:"respect_gitignore"`
	Workers          int          `yaml:"workers"`
	Whitelist        rawWhitelist `yaml:"whitelist"`
	Blacklist        rawBlacklist `yaml:"blacklist"`
	DataSampling     rawSampling  `yaml:"data_sampling"`
	LuaFilter        rawLuaFilter `yaml:"lua_filter"`
}

// Load reads, validates, and normalizes the YAML rule set at path.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorf("cannot read %s: %v", path, err)
	}
	return Parse(data)
}

// Parse builds a RuleSet from raw YAML bytes.
func Parse(data []byte) (*RuleSet, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errorf("invalid YAML: %v", err)
	}
	if err := validateSchema(tree); err != nil {
		return nil, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errorf("invalid YAML: %v", err)
	}

	rs := &RuleSet{
		AICodingEnv:                 "chat",
		MaxFileSizeMB:               5.0,
		WhitelistFiles:              normalizePatterns(raw.Whitelist.Files),
		WhitelistDirectories:        normalizePatterns(raw.Whitelist.Directories),
		BlacklistFiles:              normalizePatterns(raw.Blacklist.Files),
		BlacklistDirectories:        normalizePatterns(raw.Blacklist.Directories),
		BlacklistFilenameSubstrings: trimNonEmpty(raw.Blacklist.FilenameSubstrings),
		BlacklistDatetimeStamp:      true,
		SamplingEnabled:             true,
		SamplingIncludeHeader:       true,
		SamplingHeadRows:            5,
		SamplingTailRows:            5,
		RespectGitignore:            raw.RespectGitignore,
		Workers:                     1,
		LuaFilterInline:             strings.TrimSpace(raw.LuaFilter.Inline),
		LuaFilterTimeoutMs:          1000,
	}

	if raw.AICodingEnv != "" {
		rs.AICodingEnv = raw.AICodingEnv
	}
	if raw.MaxFileSizeMB != nil {
		rs.MaxFileSizeMB = *raw.MaxFileSizeMB
	}
	rs.MaxFileSizeBytes = int64(rs.MaxFileSizeMB * 1024 * 1024)
	if raw.Workers > 0 {
		rs.Workers = raw.Workers
	}
	if raw.Blacklist.DatetimeStampYYYYMMDD != nil {
		rs.BlacklistDatetimeStamp = *raw.Blacklist.DatetimeStampYYYYMMDD
	}
	if raw.DataSampling.Enabled != nil {
		rs.SamplingEnabled = *raw.DataSampling.Enabled
	}
	if raw.DataSampling.IncludeHeader != nil {
		rs.SamplingIncludeHeader = *raw.DataSampling.IncludeHeader
	}
	if raw.DataSampling.HeadRows != nil {
		rs.SamplingHeadRows = *raw.DataSampling.HeadRows
	}
	if raw.DataSampling.TailRows != nil {
		rs.SamplingTailRows = *raw.DataSampling.TailRows
	}
	if raw.LuaFilter.TimeoutMs != nil {
		rs.LuaFilterTimeoutMs = *raw.LuaFilter.TimeoutMs
	}

	rs.BlacklistExtensions = normalizeExtensions(raw.Blacklist.Extensions, false)
	rs.SamplingExtensions = normalizeExtensions(raw.DataSampling.TargetExtensions, true)

	for _, src := range raw.Blacklist.Patterns {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, errorf("invalid regex pattern %q: %v", src, err)
		}
		rs.BlacklistPatterns = append(rs.BlacklistPatterns, re)
	}

	for _, group := range [][]string{
		rs.WhitelistFiles, rs.WhitelistDirectories,
		rs.BlacklistFiles, rs.BlacklistDirectories,
	} {
		for _, pat := range group {
			if !pathmatch.Valid(pat) {
				return nil, errorf("invalid glob pattern %q", pat)
			}
		}
	}

	if rs.SamplingHeadRows < 0 || rs.SamplingTailRows < 0 {
		return nil, errorf("head_rows and tail_rows must be non-negative")
	}
	if rs.MaxFileSizeMB <= 0 {
		return nil, errorf("max_file_size_mb must be positive, got %s",
			strconv.FormatFloat(rs.MaxFileSizeMB, 'f', -1, 64))
	}
	return rs, nil
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if n := pathmatch.Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func trimNonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeExtensions guarantees a leading dot. Sampling extensions are
// lowercased because sampler dispatch lowercases the file extension;
// blacklist extensions keep their case and match case-sensitively.
func normalizeExtensions(exts []string, lower bool) map[string]struct{} {
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if lower {
			e = strings.ToLower(e)
		}
		out[e] = struct{}{}
	}
	return out
}
