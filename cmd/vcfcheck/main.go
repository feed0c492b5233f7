// Package main provides the vcfcheck command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config keys.
const (
	keyStrict       = "validate.strict"
	keyReport       = "validate.report"
	keyReportFormat = "validate.report_format"
	keyHistoryPath  = "history.path"
	keyVerbose      = "log.verbose"
)

const configName = ".vcfcheck.yaml"

func main() {
	os.Exit(run(os.Args[1:], newApp(os.Stdout, os.Stderr)))
}

// app carries what every command needs.
type app struct {
	v      *viper.Viper
	fs     afero.Fs
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
	home   string // directory holding the default config file

	configFile string
}

func newApp(stdout, stderr io.Writer) *app {
	home, _ := os.UserHomeDir()
	return &app{
		v:      viper.New(),
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
		stdout: stdout,
		stderr: stderr,
		home:   home,
	}
}

// exitError carries a status code for an error that has already been reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

func run(args []string, a *app) int {
	root := newRootCmd(a)
	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	a.logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(a.stderr, "Run 'vcfcheck --help' for usage.\n")
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vcfcheck",
		Short: "Validate CNV VCF files",
		Long: `vcfcheck checks VCF files (plain .vcf or gzipped .gz) against the
mandatory column layout and the strict copy-number-variant ruleset.
It stops at the first problem and exits non-zero.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return &exitError{ExitUsage, errors.New("no command given")}
			}
			return &usageError{fmt.Errorf("unknown command %q", args[0])}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			a.logger = newLogger(a.v.GetBool(keyVerbose), a.stderr)
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default: ~/"+configName+")")
	pf.BoolP("verbose", "v", false, "Log progress to stderr")
	pf.String("history", "", "DuckDB file recording validation runs")
	a.bind(keyVerbose, pf.Lookup("verbose"))
	a.bind(keyHistoryPath, pf.Lookup("history"))

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}

func (a *app) bind(key string, flag *pflag.Flag) {
	// BindPFlag only fails on a nil flag.
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

// initConfig reads the config file and VCFCHECK_* environment variables.
// A missing default config file is not an error.
func (a *app) initConfig() error {
	a.v.SetEnvPrefix("vcfcheck")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault(keyReportFormat, "text")

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.configFile, err)
		}
		return nil
	}

	if a.home == "" {
		return nil
	}
	a.v.SetConfigFile(filepath.Join(a.home, configName))
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger returns a no-op logger unless verbose is set.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "vcfcheck version %s (%s) built %s\n", version, commit, date)
		},
	}
}
