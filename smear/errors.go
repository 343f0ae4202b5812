package smear

import "fmt"

// ParseError reports malformed formula text. It is fatal at configuration
// time: a detector with an unparseable formula must not process events.
type ParseError struct {
	Expr   string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("smear: cannot parse formula %q: %s", e.Expr, e.Detail)
}

// EvalError reports a formula that is mathematically undefined for a
// particular particle's kinematics. It is recovered locally: the affected
// dimension is left unmeasured, the particle and event carry on.
type EvalError struct {
	Expr   string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("smear: formula %q undefined: %s", e.Expr, e.Reason)
}

// ConfigError reports an invalid detector configuration (unknown device
// type, unnormalized identification matrix, bad geometry). It is fatal and
// surfaced before any event is processed.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "smear: invalid configuration: " + e.Msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
