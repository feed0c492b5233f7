package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/vcfcheck/internal/duckdb"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit     int
		clearRuns bool
		file      string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Long: `List validation runs recorded in the DuckDB history file.
The history file is set with --history or the history.path config key.`,
		Example: `  vcfcheck history --history ~/.vcfcheck/history.duckdb
  vcfcheck config set history.path ~/.vcfcheck/history.duckdb
  vcfcheck history --limit 5
  vcfcheck history --file calls.vcf.gz
  vcfcheck history --clear`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return &usageError{errors.New("no history file: set --history or history.path")}
			}
			defer store.Close()

			if clearRuns {
				if err := store.ClearRuns(); err != nil {
					return fmt.Errorf("clearing history: %w", err)
				}
				fmt.Fprintln(a.stdout, "History cleared.")
				return nil
			}

			var runs []duckdb.Run
			if file != "" {
				last, err := store.LastRun(file)
				if err != nil {
					return err
				}
				if last != nil {
					runs = append(runs, *last)
				}
			} else {
				runs, err = store.Runs(limit)
				if err != nil {
					return err
				}
			}
			return writeRuns(a, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&clearRuns, "clear", false, "Delete all recorded runs")
	cmd.Flags().StringVar(&file, "file", "", "Show only the latest run for this file")

	return cmd
}

func writeRuns(a *app, runs []duckdb.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tFILE\tSTATUS\tLINE\tDURATION\tMESSAGE")
	for _, r := range runs {
		status := "ok"
		if !r.Passed {
			status = "fail:" + r.ErrorKind
		}
		line := "-"
		if r.Line > 0 {
			line = fmt.Sprint(r.Line)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.File.Path,
			status,
			line,
			r.Duration().Round(time.Millisecond),
			firstLine(r.Message),
		)
	}
	return tw.Flush()
}

// firstLine shortens a stored message to its reason, dropping the echoed record.
func firstLine(msg string) string {
	if i := strings.Index(msg, ": "); i >= 0 && strings.Contains(msg[:i], " on line ") {
		return msg[:i]
	}
	return msg
}

// expandHome resolves a leading "~/" against home.
func expandHome(path, home string) string {
	if home != "" && strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
