// Package errs defines the error kinds the generator and the emitted runtime
// driver can produce, per spec §7. It follows the shape of the teacher's
// internal/tqerrors and the internal/ictiobus/parse package's (filtered from
// the retrieval pack, but referenced as "icterrors" from parse/lr.go) pattern
// of a technical message plus an optional wrapped cause, rather than a
// logging-library error type.
package errs

import "fmt"

// Kind identifies which of the documented error categories an error belongs
// to, so callers can switch on it without string-matching messages.
type Kind int

const (
	// KindUndefinedSymbol is returned by Grammar Intake when a rhs symbol is
	// neither a declared terminal nor any rule's lhs.
	KindUndefinedSymbol Kind = iota

	// KindDuplicateTerminal is returned by Grammar Intake when a terminal
	// name is declared twice.
	KindDuplicateTerminal

	// KindEmptyGrammar is returned by Grammar Intake when there are no
	// productions at all.
	KindEmptyGrammar

	// KindIllFormedProduction is returned when a prec: annotation is not
	// last, or an error-recovery rule is malformed.
	KindIllFormedProduction

	// KindUnexpectedConflicts is returned by the Table Assembler when the
	// number of unresolved conflicts exceeds the expect: budget.
	KindUnexpectedConflicts

	// KindSyntaxError is surfaced through the parser's on-error callback at
	// parse time.
	KindSyntaxError

	// KindUnrecoverableSyntaxError is returned by the LALR runtime driver
	// when error recovery (§4.6) could not find a state to resynchronize on.
	KindUnrecoverableSyntaxError
)

func (k Kind) String() string {
	switch k {
	case KindUndefinedSymbol:
		return "UndefinedSymbol"
	case KindDuplicateTerminal:
		return "DuplicateTerminal"
	case KindEmptyGrammar:
		return "EmptyGrammar"
	case KindIllFormedProduction:
		return "IllFormedProduction"
	case KindUnexpectedConflicts:
		return "UnexpectedConflicts"
	case KindSyntaxError:
		return "SyntaxError"
	case KindUnrecoverableSyntaxError:
		return "UnrecoverableSyntaxError"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned for every Kind above. Token is
// only set for KindSyntaxError/KindUnrecoverableSyntaxError, and Listing is
// only set for KindUnexpectedConflicts.
type Error struct {
	kind    Kind
	msg     string
	token   fmt.Stringer
	listing string
	wrap    error
}

// Kind returns the category of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap gives the error that this Error wraps, if it wraps one.
func (e *Error) Unwrap() error {
	return e.wrap
}

// Token returns the offending lexical token, if one is associated with this
// error.
func (e *Error) Token() fmt.Stringer {
	return e.token
}

// Listing returns the per-state conflict listing attached to an
// UnexpectedConflicts error, if any.
func (e *Error) Listing() string {
	return e.listing
}

// New builds a plain error of the given kind.
func New(kind Kind, format string, a ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap builds an error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, a ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), wrap: cause}
}

// Conflicts builds a KindUnexpectedConflicts error carrying the per-state
// listing produced by the Table Assembler.
func Conflicts(count, budget int, listing string) error {
	return &Error{
		kind:    KindUnexpectedConflicts,
		msg:     fmt.Sprintf("grammar has %d unresolved conflict(s), exceeding the expected budget of %d", count, budget),
		listing: listing,
	}
}

// Syntax builds a KindSyntaxError carrying the offending token.
func Syntax(message string, tok fmt.Stringer) error {
	return &Error{kind: KindSyntaxError, msg: message, token: tok}
}

// Unrecoverable builds a KindUnrecoverableSyntaxError carrying the offending
// token.
func Unrecoverable(message string, tok fmt.Stringer) error {
	return &Error{kind: KindUnrecoverableSyntaxError, msg: message, token: tok}
}

// Is supports errors.Is by comparing Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == other.kind
}
