package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/asolens/internal/config"
	"github.com/verte-zerg/asolens/internal/export"
	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/projection"
	"github.com/verte-zerg/asolens/internal/recommend"
	"github.com/verte-zerg/asolens/internal/server"
	"github.com/verte-zerg/asolens/internal/stats"
	"github.com/verte-zerg/asolens/internal/store"
)

var (
	reportJSON bool

	projectBoost float64
	projectWidth int
	projectColor bool

	metadataKeywords []string

	exportOutput string

	serveAddr  string
	serveQuiet bool
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print keyword insights",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	addAnalyzeFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	ds, st, err := loadDataset(ctx, args[0], cfg.Analyze)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ds, err = filteredDataset(ctx, st, ds, cfg.Filter)
	if err != nil {
		return err
	}
	report := stats.BuildReport(ds, cfg.Analyze.Top)
	out := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}
	if err := stats.RenderReport(out, ds, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <file> <keyword>",
		Short: "Project rank and installs for a keyword",
		Args:  cobra.ExactArgs(2),
		RunE:  runProjectCmd,
	}
	addAnalyzeFlags(cmd)
	cmd.Flags().Float64Var(&projectBoost, "boost", 1, "rank improvement multiplier")
	cmd.Flags().IntVar(&projectWidth, "width", 0, "chart width (0 fits the terminal)")
	cmd.Flags().BoolVar(&projectColor, "color", false, "force colored chart output")
	return cmd
}

func runProjectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if projectBoost <= 0 {
		return fmt.Errorf("--boost must be > 0")
	}
	if projectWidth < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	ds, st, err := loadDataset(commandContext(cmd), args[0], cfg.Analyze)
	if err != nil {
		return err
	}
	defer closeStore(st)

	record, ok := findKeyword(ds.Keywords, args[1])
	if !ok {
		return fmt.Errorf("keyword %q not found in %s", args[1], args[0])
	}
	in := projection.InputFrom(record)
	in.Boost = projectBoost
	result := projection.Project(in, cfg.Analyze.Horizons)
	out := cmd.OutOrStdout()
	if err := stats.RenderProjection(out, result, projectWidth, projectColor); err != nil {
		return fmt.Errorf("failed to write projection: %w", err)
	}
	return renderGrowth(out, projection.ProjectGrowth(record, cfg.Analyze.Horizons, time.Now().Month(), projectBoost))
}

func renderGrowth(w io.Writer, points []projection.GrowthPoint) error {
	var b strings.Builder
	b.WriteString("Ranking growth (install impact)\n")
	for _, p := range points {
		fmt.Fprintf(&b, "  %2d months: rank %.0f, +%.0f installs\n", p.Months, p.TargetRank, p.ExtraInstalls)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func findKeyword(records []model.KeywordRecord, keyword string) (model.KeywordRecord, bool) {
	keyword = strings.TrimSpace(keyword)
	for _, r := range records {
		if strings.EqualFold(r.Keyword, keyword) {
			return r, true
		}
	}
	return model.KeywordRecord{}, false
}

func newMetadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata [file]",
		Short: "Suggest title, subtitle and keyword field options",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMetadataCmd,
	}
	addAnalyzeFlags(cmd)
	addFilterFlags(cmd)
	addBoostFlags(cmd)
	cmd.Flags().StringSliceVar(&metadataKeywords, "keywords", nil, "comma separated keywords to build options from")
	return cmd
}

func runMetadataCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 && len(recommend.DedupKeywords(metadataKeywords)) == 0 {
		return fmt.Errorf("provide a keyword file or --keywords")
	}

	var records []model.KeywordRecord
	if len(args) == 1 {
		ctx := commandContext(cmd)
		ds, st, err := loadDataset(ctx, args[0], cfg.Analyze)
		if err != nil {
			return err
		}
		defer closeStore(st)
		ds, err = filteredDataset(ctx, st, ds, cfg.Filter)
		if err != nil {
			return err
		}
		records = ds.Keywords
	}

	var options []model.MetadataOption
	if len(metadataKeywords) > 0 {
		options = recommend.Generate(recommend.Request{Keywords: metadataKeywords}, records).Options
	} else {
		options = recommend.Compose(records)
	}
	if len(options) == 0 {
		return fmt.Errorf("no keywords to build metadata from")
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderOptions(out, options); err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Projected gain per option\n")
	for i, opt := range options {
		var total float64
		projected := projection.ProjectOption(records, opt, cfg.Boosts, cfg.Analyze.Horizons)
		for _, p := range projected {
			if n := len(p.Result.Points); n > 0 {
				total += p.Result.Points[n-1].InstallGain
			}
		}
		fmt.Fprintf(&b, "  Option %d: %d keywords, +%.0f installs/month\n", i+1, len(projected), total)
	}
	_, err = io.WriteString(out, b.String())
	return err
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write scored keywords as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	addAnalyzeFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output path (- for stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if strings.TrimSpace(exportOutput) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	ctx := commandContext(cmd)
	ds, st, err := loadDataset(ctx, args[0], cfg.Analyze)
	if err != nil {
		return err
	}
	defer closeStore(st)
	ds, err = filteredDataset(ctx, st, ds, cfg.Filter)
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), ds)
	}
	if err := writeExport(exportOutput, ds); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	logErrf("Wrote %d keywords to %s\n", len(ds.Keywords), exportOutput)
	return nil
}

// writeExport replaces path atomically with the CSV export of ds.
func writeExport(path string, ds model.ParsedDataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "asolens-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := export.WriteCSV(tmpFile, ds); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the JSON API",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServeCmd,
	}
	addAnalyzeFlags(cmd)
	addBoostFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&serveQuiet, "quiet", false, "disable request logging")
	return cmd
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("addr") {
		serveAddr = config.ServerAddr(cfg.File, defaultAddr)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := commandContext(cmd)
	var st *store.Store
	if len(args) == 1 {
		_, st, err = loadDataset(ctx, args[0], cfg.Analyze)
		if err != nil {
			return err
		}
	} else {
		st, err = store.Open()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
	}
	defer closeStore(st)

	srv := server.New(server.Config{
		Addr:     serveAddr,
		Top:      cfg.Analyze.Top,
		Horizons: cfg.Analyze.Horizons,
		Boosts:   cfg.Boosts,
		Backfill: cfg.Analyze.Backfill,
		Seed:     cfg.Analyze.Seed,
		Quiet:    serveQuiet,
	}, st)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}
	logErrln("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}
