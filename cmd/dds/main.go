package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	internal "github.com/ZanzyTHEbar/dashboard-directory-size/dds"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/config"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/dashboard"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/ports"

	"github.com/integrii/flaggy"
)

var (
	version = "unversioned"
	commit  string

	configPath  string
	refreshFlag bool
	jsonFlag    bool
	sumFlag     bool
	watchFlag   bool
	eventName   string
	payload     string
	sizePath    string
)

func main() {
	flaggy.SetName(internal.DefaultAppName)
	flaggy.SetDescription("Report and cache the disk usage of a site's directories")

	flaggy.String(&configPath, "c", "config", "Path to a config file")
	flaggy.Bool(&refreshFlag, "r", "refresh", "Invalidate cached sizes before reporting")
	flaggy.Bool(&jsonFlag, "j", "json", "Print the report as JSON")
	flaggy.Bool(&sumFlag, "s", "sum", "Include the total row")
	flaggy.Bool(&watchFlag, "w", "watch", "Watch directories and invalidate cached sizes on change")
	flaggy.String(&eventName, "e", "event", "Fire a lifecycle event instead of reporting")
	flaggy.String(&payload, "p", "payload", "Payload for --event, such as an option name")
	flaggy.String(&sizePath, "d", "directory", "Report a single directory")
	flaggy.SetVersion(fmt.Sprintf("%s\nCommit: %s\nOS: %s\nArch: %s", version, commit, runtime.GOOS, runtime.GOARCH))

	flaggy.Parse()

	term := ports.NewTerminal()
	if err := run(term); err != nil {
		term.Error("dds failed", err)
		os.Exit(1)
	}
}

func run(term ports.Interactor) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := internal.GetLoggerWithLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := dashboard.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close dashboard")
		}
	}()

	app := &cli{dash: d, term: term, json: jsonFlag}

	switch {
	case eventName != "":
		return app.fireEvent(ctx, eventName, payload)
	case watchFlag:
		return app.watch(ctx)
	case sizePath != "":
		return app.directory(ctx, sizePath, refreshFlag)
	default:
		return app.report(ctx, refreshFlag, !sumFlag)
	}
}

func printJSON(term ports.Interactor, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	term.Output(string(data))
	return nil
}
