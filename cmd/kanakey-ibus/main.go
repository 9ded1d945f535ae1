//go:build linux

// kanakey-ibus is the Linux IBus engine process for kanakey.
//
// Installation:
//  1. Copy the binary to /usr/local/bin/kanakey-ibus
//  2. Run: kanakey-ibus -install
//  3. Restart IBus: ibus restart
//  4. Add "Kanakey" in ibus-setup or GNOME Settings > Keyboard > Input Sources
//
// The IBus daemon starts the process with --ibus. Configuration changes are
// picked up while it runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kanakey/internal/config"
	"kanakey/internal/ime"
	"kanakey/internal/journal"
	"kanakey/internal/logging"
	"kanakey/internal/settings"
)

var version = "dev"

func main() {
	installFlag := flag.Bool("install", false, "Install IBus component")
	uninstallFlag := flag.Bool("uninstall", false, "Uninstall IBus component")
	configFlag := flag.String("config", "", "path to config file")
	flag.Bool("ibus", false, "set by the IBus daemon when it starts the engine")
	flag.Parse()

	path := *configFlag
	if path == "" {
		path = config.ConfigPath()
	}

	if *installFlag || *uninstallFlag {
		if err := component(path, *installFlag); err != nil {
			log.Fatalf("Failed: %v", err)
		}
		return
	}

	if err := run(path); err != nil {
		log.Fatalf("kanakey-ibus: %v", err)
	}
}

func component(path string, install bool) error {
	res, err := config.Load(path)
	if err != nil {
		return err
	}
	dir, err := ime.ComponentDir()
	if err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		exe = "/usr/local/bin/kanakey-ibus"
	}
	c := ime.NewComponent(exe, res.Config.IBus.EngineName, version)

	if !install {
		if err := ime.UninstallComponent(dir, c); err != nil {
			return err
		}
		log.Println("Uninstalled successfully.")
		return nil
	}
	file, err := ime.InstallComponent(dir, c)
	if err != nil {
		return err
	}
	log.Printf("Installed %s. Run 'ibus restart' to load.", file)
	return nil
}

func run(path string) error {
	res, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg := res.Config

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	loader := config.NewLoader(path, logger)
	if cfg, err = loader.Load(); err != nil {
		return err
	}
	prefs := settings.NewAtomic(cfg.Settings())
	loader.OnChange(func(c *config.Config) {
		prefs.Store(c.Settings())
		logger.Info("settings reloaded", "path", path)
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	}
	defer loader.Close()

	opts := ime.ServerOptions{
		EngineName: cfg.IBus.EngineName,
		Settings:   prefs,
		Logger:     logger,
	}
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, journal.Options{
			Redact:     cfg.Logging.RedactInput,
			MaxEntries: cfg.Journal.MaxEntries,
		})
		if err != nil {
			logger.Warn("journal disabled", "path", cfg.Journal.Path, "error", err)
		} else {
			defer j.Close()
			opts.Journal = j
		}
	}

	srv := ime.NewServer(opts)
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case err := <-loader.Errors():
			logger.Warn("config reload failed, keeping previous settings", "error", err)
		}
	}
}
