package validate

import "strings"

// Line prefixes.
const (
	MetaPrefix       = "##"
	HeaderPrefix     = "#CHROM"
	fileformatPrefix = "##fileformat"
	contigPrefix     = "##contig"
)

// FixedColumns is the number of mandatory columns; RecordColumns adds FORMAT,
// which every data line must carry.
const (
	FixedColumns  = 8
	RecordColumns = 9
)

// LineKind is the classification of a physical line.
type LineKind int

const (
	LineRecord LineKind = iota
	LineMeta
	LineHeader
)

func (k LineKind) String() string {
	switch k {
	case LineMeta:
		return "meta"
	case LineHeader:
		return "header"
	default:
		return "record"
	}
}

// Classify reports whether text is a meta-line, the #CHROM line or a data
// record. Anything that is not one of the first two is a record, including
// blank lines and other '#' lines.
func Classify(text string) LineKind {
	switch {
	case strings.HasPrefix(text, MetaPrefix):
		return LineMeta
	case strings.HasPrefix(text, HeaderPrefix):
		return LineHeader
	default:
		return LineRecord
	}
}

// SplitFields trims surrounding whitespace and splits on tab.
func SplitFields(text string) []string {
	return strings.Split(trimLine(text), "\t")
}

func trimLine(text string) string {
	return strings.TrimSpace(text)
}
