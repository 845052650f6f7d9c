package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/jpalka/gh-pr-watch/internal/config"
	"github.com/jpalka/gh-pr-watch/internal/engine"
	"github.com/jpalka/gh-pr-watch/internal/event"
	"github.com/jpalka/gh-pr-watch/internal/github"
	"github.com/jpalka/gh-pr-watch/internal/logging"
	"github.com/jpalka/gh-pr-watch/internal/tui"
)

func main() {
	configPath := flag.String("config", "config.json", "path to watch config (re-read every cycle)")
	settingsPath := flag.String("settings", "settings.yaml", "path to settings file")
	noTUI := flag.Bool("no-tui", false, "disable TUI mode")
	flag.Parse()

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	enableTUI := !*noTUI && os.Getenv("GH_PR_WATCH_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	logger, err := logging.Setup(settings.LogFile, settings.Log.Level, enableTUI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	gh := github.NewClient(logger)
	eng := engine.New(*configPath, settings, gh, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gh-pr-watch starting", "config", *configPath, "tui", enableTUI)
		errCh <- eng.Run(ctx)
	}()

	if enableTUI {
		model := tui.NewModel(eng.Events(), eng, settings.TUI.RefreshInterval)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		stop()
	} else {
		logEvents(eng.Events(), logger)
	}

	if err := <-errCh; err != nil {
		logger.Error("engine error", "err", err)
		os.Exit(1)
	}
}

// logEvents is the headless presenter: every non-silent event becomes one
// log line, phrased the same way the TUI feed phrases it.
func logEvents(events <-chan event.Event, logger *slog.Logger) {
	for ev := range events {
		subject, detail := event.Describe(ev)

		switch ev := ev.(type) {
		case event.PRAdded:
			if ev.Silent {
				logger.Debug("baseline", "repo", ev.Repo, "pr", ev.PR.Number)
				continue
			}
			logger.Info(subject, "detail", detail)
		case event.RepoPolled:
			logger.Debug("polled", "repo", ev.Repo, "open_prs", ev.Open)
		case event.SourceDegraded:
			logger.Warn(subject, "detail", detail)
		default:
			logger.Info(subject, "detail", detail)
		}
	}
}
