package distiller

// ValidationError is a fatal pre-run failure: the source root is missing or
// not a directory, or the source/destination layout is unusable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CancelledError aborts the run cleanly: a declined overwrite confirmation,
// EOF on the prompt, or an interrupt signal.
type CancelledError struct {
	Msg string
}

func (e *CancelledError) Error() string { return e.Msg }

// ExitCode maps cancellation to the conventional interrupt status.
func (e *CancelledError) ExitCode() int { return 130 }
