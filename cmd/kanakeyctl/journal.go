package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"kanakey/internal/config"
	"kanakey/internal/journal"
)

func newJournalCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the classification journal",
		Long: `The classification journal records every key the input method
processed while journal.enabled is set: the key, the rule that matched,
the intent, the actions applied and the composition states.`,
	}
	cmd.AddCommand(newJournalTailCmd(root), newJournalPruneCmd(root))
	return cmd
}

func openJournal(cmd *cobra.Command, root *rootOptions) (*journal.Journal, *config.Config, error) {
	cfg, err := root.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return nil, nil, fmt.Errorf("no journal at %s", cfg.Journal.Path)
	}
	j, err := journal.Open(cfg.Journal.Path, journal.Options{
		Redact:     cfg.Logging.RedactInput,
		MaxEntries: cfg.Journal.MaxEntries,
	})
	if err != nil {
		return nil, nil, err
	}
	return j, cfg, nil
}

func newJournalTailCmd(root *rootOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, _, err := openJournal(cmd, root)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(lines)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKEY\tMODS\tLOCALE\tCHARS\tRULE\tINTENT\tACTION\tSTATE")
			// Oldest first, like tail.
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				chars := fmt.Sprintf("%q", e.Chars)
				if e.Chars == "" {
					chars = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s -> %s\n",
					e.Time.Format(time.TimeOnly), e.Code, e.Modifiers, e.Locale,
					chars, e.Rule, e.Intent, e.Action, e.From, e.To)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries to show")
	return cmd
}

func newJournalPruneCmd(root *rootOptions) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, cfg, err := openJournal(cmd, root)
			if err != nil {
				return err
			}
			defer j.Close()

			if !cmd.Flags().Changed("keep") {
				keep = cfg.Journal.MaxEntries
			}
			n, err := j.Prune(keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries, kept at most %d\n", n, keep)
			return nil
		},
	}
	cmd.Flags().IntVarP(&keep, "keep", "k", 0, "entries to keep (default: journal.max_entries)")
	return cmd
}
