package exitcode

// Exit codes for hunk, following grep: 0 when something was printed, 1 when
// nothing matched, 2 on error.
const (
	Success = 0
	NoMatch = 1
	Error   = 2
)

// ExitError is an error that carries a specific exit code
type ExitError struct {
	Code    int
	Message string
}

func (e ExitError) Error() string {
	return e.Message
}

// NoMatches reports a successful run that printed nothing. It has no
// message so nothing is written to stderr.
func NoMatches() ExitError { return ExitError{Code: NoMatch} }

// Failed wraps a fatal error message.
func Failed(msg string) ExitError { return ExitError{Code: Error, Message: msg} }
