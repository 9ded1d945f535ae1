package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kanakey/internal/config"
	"kanakey/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "kanakeyctl",
		Short: "Inspect and exercise the kanakey input method",
		Long: `kanakeyctl works with the kanakey keystroke classifier outside of an
input method host.

Use 'classify' to see what a single key means, 'replay' to run a scripted
key sequence against the engine, and the 'config' and 'journal'
subcommands to manage the files the input method uses.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: platform config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine decisions to stderr")

	cmd.AddCommand(
		newClassifyCmd(opts),
		newReplayCmd(opts),
		newConfigCmd(opts),
		newJournalCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.ConfigPath()
}

// load reads the configuration and prints its warnings to the command's
// error stream.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	res, err := config.Load(o.path())
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
	}
	return res.Config, nil
}

// logger returns a debug logger on stderr when --verbose is set and a
// discarding one otherwise. Typed text stays redacted as configured.
func (o *rootOptions) logger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if !o.verbose {
		return logging.Discard(), nil
	}
	lc := cfg.LoggerConfig()
	lc.Level = logging.LevelDebug
	lc.Writer = cmd.ErrOrStderr()
	lc.Component = "kanakeyctl"
	return logging.New(lc)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kanakeyctl %s (config v%d)\n", version, config.Version)
		},
	}
}
