// Package output formats validation outcomes for the terminal.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vcfcheck/internal/validate"
)

// CompletedMessage is printed when a file passes and reporting is enabled.
const CompletedMessage = "VCF file validation completed. No structural errors found."

// UsageLine follows an unrecognised file type.
const UsageLine = "Usage: vcfcheck validate <*.vcf|*.gz>"

// Format selects how completion summaries are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a --report-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Reporter writes validation outcomes.
type Reporter struct {
	w      io.Writer
	format Format
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, format Format) *Reporter {
	return &Reporter{w: w, format: format}
}

// WriteFailure writes the diagnostic for err. Validation failures print one
// line (two for ALT); other errors print their message.
func (r *Reporter) WriteFailure(err error) error {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		_, werr := fmt.Fprintf(r.w, "Error: %v\n", err)
		return werr
	}

	if verr.Kind == validate.KindFileType {
		_, werr := fmt.Fprintf(r.w, "%s\n%s\n", verr.Reason, UsageLine)
		return werr
	}

	if _, werr := fmt.Fprintf(r.w, "Error: %s\n", verr.Error()); werr != nil {
		return werr
	}
	if verr.Hint != "" {
		if _, werr := fmt.Fprintln(r.w, verr.Hint); werr != nil {
			return werr
		}
	}
	return nil
}

// summaryDoc is the YAML form of a passing run.
type summaryDoc struct {
	File       string   `yaml:"file"`
	Status     string   `yaml:"status"`
	FileFormat string   `yaml:"fileformat,omitempty"`
	Lines      int      `yaml:"lines"`
	MetaLines  int      `yaml:"meta_lines"`
	Records    int      `yaml:"records"`
	Samples    []string `yaml:"samples,omitempty"`
}

// WriteSuccess writes the completion message and summary for a passing file.
func (r *Reporter) WriteSuccess(path string, sum *validate.Summary) error {
	if r.format == FormatYAML {
		return r.writeYAML(path, sum)
	}

	if _, err := fmt.Fprintln(r.w, CompletedMessage); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  File:\t%s\n", path)
	if sum.FileFormat != "" {
		fmt.Fprintf(tw, "  Format:\t%s\n", sum.FileFormat)
	}
	fmt.Fprintf(tw, "  Lines:\t%d\n", sum.Lines)
	fmt.Fprintf(tw, "  Meta lines:\t%d\n", sum.MetaLines)
	fmt.Fprintf(tw, "  Records:\t%d\n", sum.Records)
	fmt.Fprintf(tw, "  Samples:\t%d\n", len(sum.Samples))
	return tw.Flush()
}

func (r *Reporter) writeYAML(path string, sum *validate.Summary) error {
	out, err := yaml.Marshal(summaryDoc{
		File:       path,
		Status:     "ok",
		FileFormat: sum.FileFormat,
		Lines:      sum.Lines,
		MetaLines:  sum.MetaLines,
		Records:    sum.Records,
		Samples:    sum.Samples,
	})
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	_, err = r.w.Write(out)
	return err
}
