package validate

import "strings"

// HeaderTracker follows the meta-lines and the #CHROM line.
type HeaderTracker struct {
	fileFormatSeen bool
	headerSeen     bool
	fileFormat     string
	samples        []string
}

// Meta handles a "##" line. It records ##fileformat and rejects
// contig IDs that start with "chr".
func (h *HeaderTracker) Meta(line int, text string) error {
	if strings.HasPrefix(text, fileformatPrefix) {
		if !h.fileFormatSeen {
			h.fileFormat = metaValue(text)
		}
		h.fileFormatSeen = true
	}
	if strings.HasPrefix(text, contigPrefix) {
		if id, ok := ContigID(text); ok && strings.HasPrefix(id, "chr") {
			return lineError(KindDomain, NoField, "Contig ID starts with 'chr'", line, text)
		}
	}
	return nil
}

// Header handles the #CHROM line: FORMAT must follow INFO when more columns
// are present, and sample names must be unique.
func (h *HeaderTracker) Header(line int, text string) error {
	h.headerSeen = true

	fields := SplitFields(text)
	if len(fields) > FixedColumns && fields[FixedColumns] != "FORMAT" {
		return lineError(KindStructure, NoField, "FORMAT column missing from header", line, text)
	}

	h.samples = nil
	if len(fields) > RecordColumns {
		samples := fields[RecordColumns:]
		seen := make(map[string]bool, len(samples))
		for _, s := range samples {
			if seen[s] {
				return lineError(KindStructure, NoField, "Duplicate sample names in header", line, text)
			}
			seen[s] = true
		}
		h.samples = samples
	}
	return nil
}

// Finish checks that both ##fileformat and #CHROM were seen.
func (h *HeaderTracker) Finish() error {
	if !h.fileFormatSeen {
		return &Error{Kind: KindStructure, Reason: "Missing ##fileformat header"}
	}
	if !h.headerSeen {
		return &Error{Kind: KindStructure, Reason: "Missing #CHROM header line"}
	}
	return nil
}

// FileFormatSeen reports whether a ##fileformat line has been consumed.
func (h *HeaderTracker) FileFormatSeen() bool { return h.fileFormatSeen }

// HeaderSeen reports whether the #CHROM line has been consumed.
func (h *HeaderTracker) HeaderSeen() bool { return h.headerSeen }

// FileFormat returns the value of the first ##fileformat line.
func (h *HeaderTracker) FileFormat() string { return h.fileFormat }

// Samples returns the sample names from the #CHROM line.
func (h *HeaderTracker) Samples() []string { return h.samples }

// ContigID extracts the first ID attribute of a ##contig=<...> line.
// ok is false when there is no bracketed list or no ID attribute.
func ContigID(text string) (id string, ok bool) {
	_, attrs, found := strings.Cut(text, "<")
	if !found {
		return "", false
	}
	attrs, _, _ = strings.Cut(attrs, ">")
	for _, attr := range strings.Split(attrs, ",") {
		if !strings.HasPrefix(attr, "ID=") {
			continue
		}
		// The value ends at the next '=' as well as at ','.
		value, _, _ := strings.Cut(attr[len("ID="):], "=")
		return value, true
	}
	return "", false
}

// metaValue returns the text after "=" in a "##key=value" line.
func metaValue(text string) string {
	_, v, _ := strings.Cut(trimLine(text), "=")
	return v
}
