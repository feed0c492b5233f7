// Package validate checks VCF text against the mandatory column layout and
// the strict CNV ruleset, stopping at the first violation.
package validate

import (
	"regexp"
	"strings"
)

// Field identifies one of the nine checked columns.
type Field int

// Columns in file order. NoField marks failures that are not tied to a column.
const (
	NoField Field = iota
	Chrom
	Pos
	ID
	Ref
	Alt
	Qual
	Filter
	Info
	Format
)

var fieldNames = [...]string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}

func (f Field) String() string {
	if f < Chrom || f > Format {
		return ""
	}
	return fieldNames[f-1]
}

// AltHint is printed after an ALT failure.
const AltHint = "ALT must be <CNV> for copy number variants."

var (
	chromRe  = regexp.MustCompile(`^[0-9A-Za-z_]+$`)
	posRe    = regexp.MustCompile(`^[0-9]+$`)
	idRe     = regexp.MustCompile(`^([A-Za-z0-9:_.]+(;[A-Za-z0-9_.]+)*)?$`)
	refRe    = regexp.MustCompile(`^[ACGTN]+$`)
	qualRe   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	filterRe = regexp.MustCompile(`^([A-Za-z0-9_]+(;[A-Za-z0-9_]+)*)?$`)
)

// FieldValidator checks one raw column value. line and text are only used to
// build the error.
type FieldValidator func(value string, line int, text string) error

var validators = []FieldValidator{
	CheckChrom,
	CheckPos,
	CheckID,
	CheckRef,
	CheckAlt,
	CheckQual,
	CheckFilter,
	CheckInfo,
	CheckFormat,
}

// FieldValidators returns the nine validators in column order.
func FieldValidators() []FieldValidator {
	return append([]FieldValidator(nil), validators...)
}

// CheckChrom accepts alphanumerics and underscore. The "chr" rule only
// applies to contig declarations.
func CheckChrom(value string, line int, text string) error {
	if !chromRe.MatchString(value) {
		return lineError(KindSyntax, Chrom, "Invalid chromosome", line, text)
	}
	return nil
}

// CheckPos accepts an unsigned integer.
func CheckPos(value string, line int, text string) error {
	if !posRe.MatchString(value) {
		return lineError(KindSyntax, Pos, "Invalid position", line, text)
	}
	return nil
}

// CheckID accepts an empty or semicolon separated identifier list that
// names a LOSS or GAIN event.
func CheckID(value string, line int, text string) error {
	if !idRe.MatchString(value) {
		return lineError(KindSyntax, ID, "Invalid ID", line, text)
	}
	if !strings.Contains(value, "LOSS") && !strings.Contains(value, "GAIN") {
		return lineError(KindDomain, ID, "ID field doesn't contain 'LOSS' or 'GAIN'", line, text)
	}
	return nil
}

// CheckRef accepts uppercase A, C, G, T and N only.
func CheckRef(value string, line int, text string) error {
	if !refRe.MatchString(value) {
		return lineError(KindSyntax, Ref, "Invalid reference allele", line, text)
	}
	return nil
}

// CheckAlt requires the symbolic <CNV> allele.
func CheckAlt(value string, line int, text string) error {
	if value != "<CNV>" {
		e := lineError(KindDomain, Alt, "Invalid alternate allele", line, text)
		e.Hint = AltHint
		return e
	}
	return nil
}

// CheckQual accepts a non-negative number or ".".
func CheckQual(value string, line int, text string) error {
	if value != "." && !qualRe.MatchString(value) {
		return lineError(KindSyntax, Qual, "Invalid quality", line, text)
	}
	return nil
}

// CheckFilter accepts "." or semicolon separated filter names.
func CheckFilter(value string, line int, text string) error {
	if value != "." && !filterRe.MatchString(value) {
		return lineError(KindSyntax, Filter, "Invalid filter", line, text)
	}
	return nil
}

// CheckInfo requires SVTYPE=CNV somewhere in the field.
func CheckInfo(value string, line int, text string) error {
	if !strings.Contains(value, "SVTYPE=CNV") {
		return lineError(KindDomain, Info, "Missing SVTYPE=CNV in INFO field", line, text)
	}
	return nil
}

// CheckFormat requires a CN key somewhere in the field.
func CheckFormat(value string, line int, text string) error {
	if !strings.Contains(value, "CN") {
		return lineError(KindDomain, Format, "Missing 'CN' in FORMAT field", line, text)
	}
	return nil
}

// CheckRecord runs the field validators over the first nine columns and
// returns the first failure.
func CheckRecord(fields []string, line int, text string) error {
	if len(fields) < RecordColumns {
		return lineError(KindColumns, NoField, "Incorrect number of columns", line, text)
	}
	for i, check := range validators {
		if err := check(fields[i], line, text); err != nil {
			return err
		}
	}
	return nil
}
