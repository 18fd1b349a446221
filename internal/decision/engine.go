package decision

import (
	"path"
	"strconv"
	"strings"

	"github.com/hollowoak/distill/internal/config"
	"github.com/hollowoak/distill/internal/pathmatch"
)

// Engine evaluates the four-tier Priority Cascade against a rule set. It is
// read-only after construction and safe for concurrent use.
//
// Tier 1 (Golden Ticket): whitelist.files force-includes a file, bypassing
// every later tier including the size cap. Tier 2 (Explicit Veto) excludes by
// filename rules. Tier 3 (Scope Gate) requires membership in a whitelisted
// directory when any are configured. Tier 4 (Sanity) applies directory,
// extension, and size exclusions. Files surviving the cascade are sampled if
// eligible, otherwise copied.
type Engine struct {
	rules     *config.RuleSet
	sizeLabel string
}

// NewEngine builds an engine over an immutable rule set.
func NewEngine(rules *config.RuleSet) *Engine {
	return &Engine{
		rules:     rules,
		sizeLabel: strconv.FormatFloat(rules.MaxFileSizeMB, 'f', -1, 64),
	}
}

// Decide returns the action for one entry. It is a pure function of the rule
// set and the entry: no traversal order, prior decisions, or clock involved.
func (e *Engine) Decide(entry Entry) Decision {
	rel := entry.RelPath

	// Tier 1: Golden Ticket.
	if pathmatch.MatchFiles(rel, e.rules.WhitelistFiles) {
		return e.finish(entry)
	}

	// Tier 2: Explicit Veto.
	if pathmatch.MatchFiles(rel, e.rules.BlacklistFiles) {
		return Skip("tier2_blacklist_file")
	}
	name := path.Base(rel)
	if e.rules.BlacklistDatetimeStamp {
		if stamp, ok := DatetimeStamp(name); ok {
			return Skip("tier2_blacklist_datetime_stamp:" + stamp)
		}
	}
	if token, ok := matchSubstring(name, e.rules.BlacklistFilenameSubstrings); ok {
		return Skip("tier2_blacklist_filename_substring:" + token)
	}
	for _, re := range e.rules.BlacklistPatterns {
		if re.MatchString(name) {
			return Skip("tier2_blacklist_pattern:" + re.String())
		}
	}

	// Tier 3: Scope Gate.
	if len(e.rules.WhitelistDirectories) > 0 &&
		!pathmatch.MatchDirs(rel, e.rules.WhitelistDirectories) {
		return Skip("tier3_not_in_whitelist_scope")
	}

	// Tier 4: Sanity Exclusions.
	if pathmatch.MatchDirs(rel, e.rules.BlacklistDirectories) {
		return Skip("tier4_blacklist_directory")
	}
	if ext := path.Ext(rel); ext != "" {
		if _, ok := e.rules.BlacklistExtensions[ext]; ok {
			return Skip("tier4_blacklist_ext:" + ext)
		}
	}
	if entry.Size > e.rules.MaxFileSizeBytes {
		return Skip("tier4_file_size>" + e.sizeLabel + "MB")
	}

	return e.finish(entry)
}

// finish resolves Sample versus Copy for an entry that passed the cascade.
func (e *Engine) finish(entry Entry) Decision {
	if e.rules.SamplingEnabled {
		ext := strings.ToLower(path.Ext(entry.RelPath))
		if _, ok := e.rules.SamplingExtensions[ext]; ok {
			return Sample()
		}
	}
	return Copy()
}

// matchSubstring reports the first configured substring contained in name,
// case-insensitively.
func matchSubstring(name string, substrings []string) (string, bool) {
	if len(substrings) == 0 {
		return "", false
	}
	haystack := strings.ToUpper(name)
	for _, sub := range substrings {
		if strings.Contains(haystack, strings.ToUpper(sub)) {
			return sub, true
		}
	}
	return "", false
}
