package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kanakey/internal/classifier"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
	"kanakey/internal/settings"
)

type classifyOptions struct {
	mods   []string
	chars  string
	locale string
	set    map[string]string
	json   bool
}

type classifyOutput struct {
	Key     string `json:"key"`
	Mods    string `json:"mods"`
	Chars   string `json:"chars"`
	Locale  string `json:"locale"`
	Rule    string `json:"rule"`
	Intent  string `json:"intent"`
	DeadKey string `json:"dead_key"`
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify <key>",
		Short: "Print the intent one key-down classifies to",
		Long: `Classify a single key-down the way the input method would.

The key is a name such as "a", "return" or "yen", or a virtual key code
such as 0x24. Preferences come from the config file and can be
overridden with --set.

Examples:
  kanakeyctl classify space
  kanakeyctl classify yen --set input.backslash=true
  kanakeyctl classify e --mods option --chars ´
  kanakeyctl classify 1 --mods shift --chars ! --locale english`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringSliceVarP(&opts.mods, "mods", "m", nil, "modifiers held (shift, control, option, command, capslock)")
	cmd.Flags().StringVar(&opts.chars, "chars", "", "characters the key produced")
	cmd.Flags().StringVarP(&opts.locale, "locale", "l", "japanese", "input locale (japanese or english)")
	cmd.Flags().StringToStringVar(&opts.set, "set", nil, "override a preference, e.g. input.half_width_space=true")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, root *rootOptions, opts *classifyOptions, key string) error {
	code, err := keycode.Parse(key)
	if err != nil {
		return err
	}
	mods, err := keyevent.ParseModifiers(opts.mods)
	if err != nil {
		return err
	}
	locale, err := keyevent.ParseLocale(opts.locale)
	if err != nil {
		return err
	}
	cfg, err := root.load(cmd)
	if err != nil {
		return err
	}
	prefs, err := overrideSettings(cfg.Settings(), opts.set)
	if err != nil {
		return err
	}

	ev := keyevent.New(code, mods, opts.chars).WithLocale(locale).WithSettings(prefs)
	d := classifier.New().Decide(ev)

	out := classifyOutput{
		Key:     code.String(),
		Mods:    mods.String(),
		Chars:   opts.chars,
		Locale:  locale.String(),
		Rule:    d.Rule,
		Intent:  d.Intent.String(),
		DeadKey: d.DeadKey.String(),
	}
	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t(rule %s)\n", out.Intent, out.Rule)
	return nil
}

func overrideSettings(s settings.Snapshot, set map[string]string) (settings.Snapshot, error) {
	for k, v := range set {
		key := settings.Key(k)
		if !knownSetting(key) {
			return s, fmt.Errorf("unknown setting %q", k)
		}
		b, ok := settings.ParseBool(v)
		if !ok {
			return s, fmt.Errorf("setting %s: %q is not a boolean", k, v)
		}
		s = s.With(key, b)
	}
	return s, nil
}

func knownSetting(k settings.Key) bool {
	for _, known := range settings.Keys() {
		if k == known {
			return true
		}
	}
	return false
}
