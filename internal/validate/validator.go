package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/inodb/vcfcheck/internal/vcf"
)

// LineSource yields decoded lines in file order.
// Next returns ok=false at end of stream.
type LineSource interface {
	Next() (line string, ok bool, err error)
}

// Options configures a run.
type Options struct {
	// Strict selects the strict CNV ruleset. Every check currently runs
	// regardless; the flag is carried for logging and run history.
	Strict bool
	// Report asks the caller to print a completion summary on success.
	Report bool
}

// State is the per-run cursor owned by the Validator.
type State struct {
	Line           int
	FileFormatSeen bool
	HeaderSeen     bool
}

// Summary describes a file that passed.
type Summary struct {
	Lines      int
	MetaLines  int
	Records    int
	FileFormat string
	Samples    []string
}

// Validator runs one forward pass over a LineSource.
type Validator struct {
	opts   Options
	logger *zap.Logger
	state  State
}

// NewValidator creates a validator with the given options.
func NewValidator(opts Options) *Validator {
	return &Validator{
		opts:   opts,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (v *Validator) SetLogger(l *zap.Logger) {
	v.logger = l
}

// State returns the cursor as of the last line consumed.
func (v *Validator) State() State {
	return v.state
}

// Run consumes src until end of stream or the first failure. Failures are
// returned as *Error; read errors are returned wrapped.
func (v *Validator) Run(ctx context.Context, src LineSource) (*Summary, error) {
	v.state = State{}
	var (
		tracker HeaderTracker
		sum     Summary
	)

	v.logger.Debug("starting validation", zap.Bool("strict", v.opts.Strict))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", v.state.Line+1, err)
		}
		if !ok {
			break
		}
		v.state.Line++

		if err := v.step(&tracker, &sum, text); err != nil {
			v.logger.Debug("validation failed",
				zap.Int("line", v.state.Line),
				zap.Error(err))
			return nil, err
		}
	}

	if err := tracker.Finish(); err != nil {
		return nil, err
	}

	sum.Lines = v.state.Line
	sum.FileFormat = tracker.FileFormat()
	sum.Samples = tracker.Samples()
	v.logger.Debug("validation passed",
		zap.Int("lines", sum.Lines),
		zap.Int("records", sum.Records))
	return &sum, nil
}

func (v *Validator) step(tracker *HeaderTracker, sum *Summary, text string) error {
	line := v.state.Line
	switch Classify(text) {
	case LineMeta:
		sum.MetaLines++
		err := tracker.Meta(line, text)
		v.state.FileFormatSeen = tracker.FileFormatSeen()
		return err
	case LineHeader:
		err := tracker.Header(line, text)
		v.state.HeaderSeen = tracker.HeaderSeen()
		return err
	default:
		sum.Records++
		return CheckRecord(SplitFields(text), line, text)
	}
}

// File validates the .vcf or .gz file at path. The file is closed on every
// return path.
func File(ctx context.Context, fs afero.Fs, path string, opts Options, logger *zap.Logger) (*Summary, error) {
	r, err := vcf.Open(fs, path)
	if err != nil {
		if errors.Is(err, vcf.ErrUnsupportedFileType) {
			return nil, &Error{
				Kind:   KindFileType,
				Reason: "File type not recognised.",
				Err:    err,
			}
		}
		return nil, err
	}
	defer r.Close()

	v := NewValidator(opts)
	if logger != nil {
		v.SetLogger(logger.With(zap.String("path", path)))
	}
	return v.Run(ctx, r)
}
