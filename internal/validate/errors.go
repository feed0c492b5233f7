package validate

import (
	"fmt"
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// KindFileType is an unrecognised file extension, reported before any line is read.
	KindFileType ErrorKind = iota
	// KindStructure covers missing fileformat/#CHROM lines and bad header layout.
	KindStructure
	// KindSyntax is a field that does not match its column pattern.
	KindSyntax
	// KindDomain is a field or contig that breaks a CNV rule.
	KindDomain
	// KindColumns is a data line with fewer than 9 columns.
	KindColumns
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileType:
		return "file_type"
	case KindStructure:
		return "structure"
	case KindSyntax:
		return "syntax"
	case KindDomain:
		return "domain"
	case KindColumns:
		return "columns"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the terminal outcome of a failed run.
// Line is 0 for whole-file errors.
type Error struct {
	Kind   ErrorKind
	Line   int
	Field  Field
	Reason string
	Text   string
	Hint   string
	Err    error
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s on line %d: %s", e.Reason, e.Line, e.Text)
}

func (e *Error) Unwrap() error { return e.Err }

// HasField reports whether the failure came from one of the nine column validators.
func (e *Error) HasField() bool {
	return e.Field != NoField
}

func lineError(kind ErrorKind, field Field, reason string, line int, text string) *Error {
	return &Error{
		Kind:   kind,
		Line:   line,
		Field:  field,
		Reason: reason,
		Text:   trimLine(text),
	}
}
