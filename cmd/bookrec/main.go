package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"bookrec/internal/config"
	"bookrec/internal/logger"
	"bookrec/internal/metrics"
	"bookrec/internal/render"
	"bookrec/internal/shell"
	"bookrec/internal/source"
	"bookrec/internal/view"
)

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-debug] [query]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without a query an interactive shell starts.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Get()
	level := cfg.Log.Level
	if *debug || cfg.CLI.Debug {
		level = "debug"
	}
	closer, err := logger.Setup(level, cfg.Log.Path)
	if err != nil {
		logrus.Errorf("[LOG ERROR] %v", err)
		return 1
	}
	defer closer.Close()

	src, err := source.New(cfg.Source, cfg.Breaker)
	if err != nil {
		logrus.Errorf("[SOURCE ERROR] %v", err)
		return 1
	}

	query := strings.Join(flag.Args(), " ")
	interactive := query == ""

	var opts []view.Option
	if interactive && cfg.CLI.Spinner {
		spinner := render.NewSpinner(os.Stderr, render.LoadingText)
		opts = append(opts, view.WithOnChange(func(st view.State) {
			if st.Status.IsLoading() {
				spinner.Start()
			} else {
				spinner.Stop()
			}
		}))
	}
	v := view.New(src, opts...)
	defer v.Close()

	defer func() {
		if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logrus.WithError(err).Warn("metrics.push.failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	sess := shell.New(v, os.Stdout)

	if !interactive {
		return oneShot(ctx, sess, query)
	}
	interactiveShell(ctx, cfg.CLI, sess)
	return 0
}

// oneShot runs a single query and exits non-zero when it failed.
func oneShot(ctx context.Context, sess *shell.Session, query string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sess.Start(ctx)
	sess.Execute(ctx, query)
	if _, failed := sess.Failed(); failed {
		return 1
	}
	return 0
}

// start loads the catalog; Ctrl-C abandons the load instead of the process.
func start(ctx context.Context, sess *shell.Session) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	sess.Start(ctx)
}

func interactiveShell(ctx context.Context, cfg config.CLIConfig, sess *shell.Session) {
	fmt.Println("Book Recommender Interactive Shell (type 'help')")
	start(ctx, sess)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(sess.Complete)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(line, cfg.HistoryFile)
	}

	for {
		input, err := line.Prompt(cfg.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		// Ctrl-C during a fetch cancels only that fetch
		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		exit := sess.Execute(cmdCtx, input)
		stop()
		if exit || ctx.Err() != nil {
			return
		}
	}
}

func saveHistory(line *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		logrus.WithError(err).Warn("history.save.failed")
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		logrus.WithError(err).Warn("history.save.failed")
	}
}
