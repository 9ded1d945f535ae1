package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kanakey/internal/journal"
	"kanakey/internal/replay"
)

type replayOptions struct {
	record bool
	quiet  bool
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>...",
		Short: "Run YAML key scripts through the engine",
		Long: `Run scripted key sequences through a fresh engine and an in-memory
text field, printing what every key did and the resulting text.

Events with an expect field are checked against the classified intent;
any mismatch makes the command fail after the whole script has run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, root, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.record, "record", false, "also record every key in the journal")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the summary")
	return cmd
}

func runReplay(cmd *cobra.Command, root *rootOptions, opts *replayOptions, paths []string) error {
	cfg, err := root.load(cmd)
	if err != nil {
		return err
	}
	logger, err := root.logger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	runOpts := replay.Options{Logger: logger}
	if opts.record {
		j, err := journal.Open(cfg.Journal.Path, journal.Options{
			Redact:     cfg.Logging.RedactInput,
			MaxEntries: cfg.Journal.MaxEntries,
		})
		if err != nil {
			return err
		}
		defer j.Close()
		runOpts.Journal = j
	}

	failed := 0
	for _, path := range paths {
		script, err := replay.ParseFile(path)
		if err != nil {
			return err
		}
		report, err := replay.Run(script, runOpts)
		if err != nil && !errors.Is(err, replay.ErrMismatch) {
			return fmt.Errorf("%s: %w", path, err)
		}
		printReport(cmd, path, report, opts.quiet)
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts had mismatches", failed, len(paths))
	}
	return nil
}

func printReport(cmd *cobra.Command, path string, r *replay.Report, quiet bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "== %s\n", path)
	if !quiet {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tKEY\tRULE\tINTENT\tACTIONS\tSTATE\t")
		for _, ev := range r.Events {
			mark := ""
			if ev.Mismatch {
				mark = fmt.Sprintf("  <- want %s", ev.Event.Expect)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s -> %s\t%s\n",
				ev.Index, eventName(ev.Event), ev.Rule, ev.Intent,
				strings.Join(ev.Actions, ", "), ev.From, ev.To, mark)
		}
		tw.Flush()
	}
	fmt.Fprintf(out, "committed: %q\nmarked:    %q\nstate:     %s (%s)\n",
		r.Committed, r.Marked, r.State, r.Locale)
	if mm := r.Mismatches(); len(mm) > 0 {
		fmt.Fprintf(out, "mismatches: %d\n", len(mm))
	}
}

func eventName(ev replay.Event) string {
	if ev.Flush {
		return "(flush)"
	}
	if len(ev.Mods) == 0 {
		return ev.Key
	}
	return strings.Join(ev.Mods, "+") + "+" + ev.Key
}
