package wpcli

// Result is the outcome of one wp-cli invocation.
//
// Payload containers are never nil: a failed invocation, or one that produced
// no output, carries an empty Rows slice and an empty Fields map so callers
// can always index into them safely.
type Result struct {
	// Succeeded reports whether the command exited zero and, when a payload
	// was expected, produced one.
	Succeeded bool
	// Rows holds a JSON array payload (one map per element).
	Rows []map[string]any
	// Fields holds a JSON object payload.
	Fields map[string]any
	// Value holds a scalar payload: the trimmed last stdout line in porcelain
	// mode, the full trimmed stdout in capture mode, or a scalar JSON value.
	Value string
	// Stdout and Stderr carry the raw output for logging and diagnosis.
	Stdout string
	Stderr string
}

// emptyResult returns a failed Result honoring the non-nil payload invariant.
func emptyResult() Result {
	return Result{
		Rows:   []map[string]any{},
		Fields: map[string]any{},
	}
}

// FirstRow returns the first row of an array payload, or ok=false when the
// payload is empty.
func (r Result) FirstRow() (map[string]any, bool) {
	if len(r.Rows) == 0 {
		return nil, false
	}

	return r.Rows[0], true
}
