package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kirillkom/lab-assistant/internal/adapters/tui"
	"github.com/kirillkom/lab-assistant/internal/bootstrap"
	"github.com/kirillkom/lab-assistant/internal/config"
	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/workflow"
	"github.com/kirillkom/lab-assistant/internal/observability/logging"
)

type options struct {
	file       string
	experiment string
	list       bool
	apiURL     string
	timeout    time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("labclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.file, "file", "", "lab manual to open (.pdf, .docx, .txt, .xlsx, .html)")
	fs.StringVar(&opts.experiment, "experiment", "", "headless: generate the report for this experiment id")
	fs.BoolVar(&opts.list, "list", false, "headless: print the experiments found in -file")
	fs.StringVar(&opts.apiURL, "api", "", "lab service base URL (overrides LAB_API_BASE_URL)")
	fs.DurationVar(&opts.timeout, "timeout", 3*time.Minute, "headless: overall deadline")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return 1
	}
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if opts.apiURL != "" {
		cfg.APIBaseURL = opts.apiURL
	}

	logger, closer, err := logging.NewFileLogger("labclient", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "open log file: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bootstrap.NewClient(cfg, logger)

	if opts.list || opts.experiment != "" {
		if opts.file == "" {
			fmt.Fprintln(stderr, "-file is required with -list or -experiment")
			return 2
		}
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		if err := headless(ctx, client.Controller, opts, stdout); err != nil {
			logger.Error("headless_failed", "error", err)
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	model := tui.New(client.API,
		tui.WithLogger(logger),
		tui.WithContext(ctx),
		tui.WithInitialFile(opts.file),
		tui.WithServiceLabel(client.API.BaseURL()),
	)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("tui_failed", "error", err)
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// headless drives the same workflow without a terminal UI.
func headless(ctx context.Context, ctrl *workflow.Controller, opts options, out io.Writer) error {
	file, err := domain.FileFromPath(opts.file)
	if err != nil {
		return err
	}
	ctrl.SelectFile(&file)
	if err := ctrl.Upload(ctx); err != nil {
		return err
	}

	if opts.list {
		for _, e := range ctrl.State().Experiments {
			fmt.Fprintf(out, "%s\t%s\t%s\n", e.ID, e.Title, e.Preview)
		}
	}
	if opts.experiment == "" {
		return nil
	}

	if err := ctrl.SelectItem(domain.ExperimentID(opts.experiment)); err != nil {
		return fmt.Errorf("experiment %q: %w", opts.experiment, err)
	}
	if err := ctrl.Generate(ctx); err != nil {
		return err
	}
	report := ctrl.State().Report
	if report == nil {
		return errors.New("no report returned")
	}
	writeSection(out, "Procedure", report.Procedure)
	writeSection(out, "Theory", report.Theory)
	writeSection(out, "Safety", report.Safety)
	return nil
}

func writeSection(out io.Writer, title, text string) {
	fmt.Fprintf(out, "## %s\n\n%s\n\n", title, strings.TrimSpace(text))
}
