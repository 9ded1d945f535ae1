package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kanakey/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(
		newConfigCheckCmd(root),
		newConfigInitCmd(root),
		newConfigShowCmd(root),
		newConfigPathCmd(root),
	)
	return cmd
}

func newConfigCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file against the schema and the value rules.

Warnings name values that were ignored in favour of their defaults.
Errors name combinations the input method refuses to start with.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.path()
			if len(args) == 1 {
				path = args[0]
			}
			problems, err := config.Check(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range problems {
				kind := "error"
				if p.IsWarning() {
					kind = "warning"
				}
				fmt.Fprintf(out, "%s: %s\n", kind, p.Error())
			}
			if problems.HasErrors() {
				return fmt.Errorf("%s: %d errors", path, len(problems.Errors()))
			}
			fmt.Fprintf(out, "%s: ok (%d warnings)\n", path, len(problems.Warnings()))
			return nil
		},
	}
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var force bool
	var format string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := root.path()
			if format != "" {
				if !supportedFormat(format) {
					return fmt.Errorf("unsupported format %q (want one of %s)",
						format, strings.Join(config.SupportedConfigFormats(), ", "))
				}
				path = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVar(&format, "format", "", "file format (toml, yaml or json)")
	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print every configuration key with its effective value, after the
file, legacy migration and KANAKEY_* environment overrides are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := config.Load(root.path())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := root.path()
			if !res.Found {
				source += " (not found, defaults)"
			}
			fmt.Fprintf(out, "# %s\n", source)
			if m := res.Migration; m != nil {
				fmt.Fprintf(out, "# migrated from version %d: %s\n", m.FromVersion, strings.Join(m.Changes, "; "))
			}
			for _, key := range config.Keys() {
				v, _ := res.Config.Get(key)
				line := fmt.Sprintf("%s = %v", key, v)
				if _, ok := os.LookupEnv(config.EnvName(key)); ok {
					line += "  # " + config.EnvName(key)
				}
				fmt.Fprintln(out, line)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
			}
			return nil
		},
	}
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), root.path())
		},
	}
}

func supportedFormat(format string) bool {
	for _, f := range config.SupportedConfigFormats() {
		if f == format {
			return true
		}
	}
	return false
}
