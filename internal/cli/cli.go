package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/calendar"
	"github.com/pfrederiksen/sugarfit-crawler/internal/config"
	"github.com/pfrederiksen/sugarfit-crawler/internal/export"
	"github.com/pfrederiksen/sugarfit-crawler/internal/filter"
	"github.com/pfrederiksen/sugarfit-crawler/internal/logger"
	"github.com/pfrederiksen/sugarfit-crawler/internal/scraper"
	"github.com/pfrederiksen/sugarfit-crawler/internal/spreadsheet"
	"github.com/pfrederiksen/sugarfit-crawler/internal/web"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1

	shutdownTimeout = 10 * time.Second
)

var (
	flagURL      string
	flagLogLevel string
	flagEnvFile  string

	flagAddr string

	flagFormat  string
	flagOutput  string
	flagDate    string
	flagTrainer string
	flagClass   string
	flagSort    string
	flagLink    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sugarfit",
		Short: "Crawl the Sugarfitness class schedule",
		Long: `A tool that reads the Sugarfitness class schedule, lets you filter it
by date, trainer and class title, and exports it as a spreadsheet or calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagURL, "url", "", "Schedule page URL (overrides "+config.EnvURL+")")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides "+config.EnvLogLevel+")")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Optional .env file to load")

	cmd.AddCommand(newServeCmd(), newExportCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filterable schedule page",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides "+config.EnvAddr+")")

	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch the schedule once and write it out",
		Long: `Fetch the schedule once and write it in the chosen format.

The xlsx format always contains the full schedule; the filter flags only
narrow the text, json and ics formats.`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json, xlsx or ics")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&flagDate, "date", "", "Only sessions on this scheduled date (e.g. \"2024/03/01 Friday\")")
	cmd.Flags().StringVar(&flagTrainer, "trainer", "", "Only sessions held by this trainer (\"Last First\")")
	cmd.Flags().StringVar(&flagClass, "class", "", "Only sessions with this class title")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort order: date, trainer or title (default: page order)")
	cmd.Flags().BoolVar(&flagLink, "link", false, "Write an HTML download link instead of the raw file (xlsx and ics)")

	return cmd
}

// loadConfig merges the .env file, environment and flags, then installs the
// default logger on stderr so stdout stays clean for exports
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if flagURL != "" {
		cfg.URL = flagURL
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr))
	return cfg, nil
}

func newScraper(cfg *config.Config) *scraper.Scraper {
	return scraper.New(
		scraper.WithURL(cfg.URL),
		scraper.WithTimeout(cfg.Timeout),
	)
}

// runServe runs the web server until SIGINT or SIGTERM
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	srv, err := web.New(newScraper(cfg))
	if err != nil {
		return fmt.Errorf("creating web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down web server", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", nil, err)
		}
	}()

	logger.Info("Serving schedule", logger.Fields{"url": cfg.URL, "addr": cfg.Addr})
	return srv.Listen(cfg.Addr)
}

// runExport is the main export logic
func runExport(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}
	if flagLink && !format.IsArtifact() {
		return fmt.Errorf("--link only applies to the xlsx and ics formats")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := filter.NewFilter()
	f.Date = strings.TrimSpace(flagDate)
	f.Trainer = strings.TrimSpace(flagTrainer)
	f.ClassTitle = strings.TrimSpace(flagClass)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := newScraper(cfg).FetchDataset(ctx)
	if err != nil {
		return fmt.Errorf("fetching schedule: %w", err)
	}

	view := sortRows(f.Apply(ds.Rows()), order)

	var emit func(w io.Writer) error
	switch format {
	case FormatText, FormatJSON:
		result := &OutputResult{
			FetchedAt: ds.FetchedAt,
			Filter:    *f,
			Rows:      view,
			RowCount:  len(view),
		}
		emit = func(w io.Writer) error {
			if err := WriteOutput(w, result, format); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		}
	case FormatXLSX:
		if !f.IsEmpty() {
			logger.Warn("Spreadsheet export ignores filters", logger.Fields{"filter": f.String()})
		}
		workbook, err := spreadsheet.Build(ds.Rows())
		if err != nil {
			return fmt.Errorf("building spreadsheet: %w", err)
		}
		logger.IncrCounter("export.xlsx")
		logger.Info("Built export", logger.Fields{"format": "xlsx", "rows": ds.Len(), "bytes": len(workbook)})
		emit = func(w io.Writer) error {
			return writeArtifact(w, export.SpreadsheetLink(workbook), flagLink)
		}
	case FormatICS:
		ics, err := calendar.GenerateICS(view, web.Title)
		if err != nil {
			return fmt.Errorf("building calendar: %w", err)
		}
		logger.IncrCounter("export.ics")
		logger.Info("Built export", logger.Fields{"format": "ics", "rows": len(view), "bytes": len(ics)})
		emit = func(w io.Writer) error {
			return writeArtifact(w, export.CalendarLink([]byte(ics)), flagLink)
		}
	}

	if flagOutput == "" {
		return emit(cmd.OutOrStdout())
	}

	if err := writeFile(flagOutput, emit); err != nil {
		return err
	}
	logger.Info("Export written", logger.Fields{
		"format": string(format),
		"path":   flagOutput,
		"rows":   len(view),
	})
	return nil
}

// createOutput is a variable for testability
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeFile runs emit against a new file at path. A failed close is reported,
// since buffered data may not have reached the disk.
func writeFile(path string, emit func(w io.Writer) error) error {
	file, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := emit(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// writeArtifact writes either the raw bytes or an embeddable download link
func writeArtifact(w io.Writer, link export.Link, asLink bool) error {
	var err error
	if asLink {
		_, err = fmt.Fprintln(w, link.String())
	} else {
		_, err = w.Write(link.Data)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", link.Filename, err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, scraper.ErrMalformedPage) {
			fmt.Fprintln(os.Stderr, "Could not find the JSON data in the HTML source.")
		}
		os.Exit(ExitError)
	}
}
