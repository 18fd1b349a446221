// Package decision implements the Priority Cascade that decides, per file,
// whether to copy it verbatim, emit a reduced sample, or skip it.
package decision

// Action is the kind of outcome for a single file.
type Action int

const (
	ActionCopy Action = iota
	ActionSample
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "COPY"
	case ActionSample:
		return "SAMPLE"
	case ActionSkip:
		return "SKIP"
	}
	return "UNKNOWN"
}

// Decision pairs an action with a skip reason. The reason is set if and only
// if the action is ActionSkip; the constructors below are the only way to
// build one.
type Decision struct {
	action Action
	reason string
}

// Copy returns a verbatim-copy decision.
func Copy() Decision { return Decision{action: ActionCopy} }

// Sample returns a reduced-sample decision.
func Sample() Decision { return Decision{action: ActionSample} }

// Skip returns a skip decision carrying the given reason.
func Skip(reason string) Decision {
	if reason == "" {
		reason = "skip"
	}
	return Decision{action: ActionSkip, reason: reason}
}

// Action returns the decided action.
func (d Decision) Action() Action { return d.action }

// SkipReason returns the reason for a skip decision, or "" otherwise.
func (d Decision) SkipReason() string { return d.reason }

// Entry describes one regular file under the source root, immutable for the
// duration of one decision.
type Entry struct {
	// RelPath is the repository-relative POSIX-style path.
	RelPath string
	// Size is the file size in bytes.
	Size int64
}
