package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vcfcheck/internal/duckdb"
	"github.com/inodb/vcfcheck/internal/output"
	"github.com/inodb/vcfcheck/internal/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flags] <file.vcf|file.gz>...",
		Short: "Validate one or more VCF files",
		Long: `Validate VCF files against the mandatory columns and the strict CNV rules:

  * contig IDs must not start with "chr"
  * ID must contain LOSS or GAIN
  * ALT must be <CNV>
  * INFO must contain SVTYPE=CNV
  * FORMAT must contain CN

Files are checked in order and the command stops at the first failure.`,
		Example: `  vcfcheck validate calls.vcf
  vcfcheck validate --report calls.vcf.gz
  vcfcheck validate --report --report-format yaml a.vcf b.vcf.gz
  vcfcheck validate --history ~/.vcfcheck/history.duckdb calls.vcf`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.Bool("strict", false, "Apply the strict CNV ruleset (always on)")
	f.Bool("report", false, "Print a summary when a file passes")
	f.String("report-format", "text", "Summary format: text, yaml")
	a.bind(keyStrict, f.Lookup("strict"))
	a.bind(keyReport, f.Lookup("report"))
	a.bind(keyReportFormat, f.Lookup("report-format"))

	return cmd
}

func (a *app) runValidate(ctx context.Context, paths []string) error {
	format, err := output.ParseFormat(a.v.GetString(keyReportFormat))
	if err != nil {
		return &usageError{err}
	}
	opts := validate.Options{
		Strict: a.v.GetBool(keyStrict),
		Report: a.v.GetBool(keyReport),
	}

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	failures := output.NewReporter(a.stderr, format)
	reports := output.NewReporter(a.stdout, format)

	for _, path := range paths {
		a.logger.Info("validating", zap.String("path", path), zap.Bool("strict", opts.Strict))

		fp := a.fingerprint(store, path)
		started := time.Now()
		sum, err := validate.File(ctx, a.fs, path, opts, a.logger)
		finished := time.Now()

		if store != nil {
			if rerr := store.RecordRun(newRun(fp, opts, started, finished, sum, err)); rerr != nil {
				a.logger.Warn("could not record run", zap.Error(rerr))
			}
		}

		if err != nil {
			failures.WriteFailure(err)
			return &exitError{ExitError, err}
		}
		if opts.Report {
			if err := reports.WriteSuccess(path, sum); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}
	}
	return nil
}

// fingerprint stats path for the history and logs whether it changed since
// the last recorded run.
func (a *app) fingerprint(store *duckdb.Store, path string) duckdb.FileFingerprint {
	fp, err := duckdb.StatFile(a.fs, path)
	if err != nil {
		return duckdb.FileFingerprint{Path: path}
	}
	if store == nil {
		return fp
	}
	last, err := store.LastRun(path)
	if err != nil || last == nil {
		return fp
	}
	if last.File.Same(fp) {
		a.logger.Info("file unchanged since last run",
			zap.Time("last_run", last.StartedAt),
			zap.Bool("last_passed", last.Passed))
	}
	return fp
}

func newRun(fp duckdb.FileFingerprint, opts validate.Options, started, finished time.Time, sum *validate.Summary, err error) duckdb.Run {
	r := duckdb.Run{
		File:       fp,
		StartedAt:  started,
		FinishedAt: finished,
		Strict:     opts.Strict,
		Passed:     err == nil,
	}
	if sum != nil {
		r.LinesRead = sum.Lines
		r.Records = sum.Records
	}
	if err != nil {
		r.Message = err.Error()
		if verr, ok := asValidationError(err); ok {
			r.ErrorKind = verr.Kind.String()
			r.Line = verr.Line
			r.LinesRead = verr.Line
		} else {
			r.ErrorKind = "io"
		}
	}
	return r
}

func asValidationError(err error) (*validate.Error, bool) {
	var verr *validate.Error
	ok := errors.As(err, &verr)
	return verr, ok
}

// openHistory opens the run history if history.path is set.
func (a *app) openHistory() (*duckdb.Store, error) {
	path := a.v.GetString(keyHistoryPath)
	if path == "" {
		return nil, nil
	}
	store, err := duckdb.Open(expandHome(path, a.home))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}
