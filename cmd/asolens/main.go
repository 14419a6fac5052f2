// Package main provides the CLI entrypoint for asolens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/asolens/internal/config"
	"github.com/verte-zerg/asolens/internal/dashboard"
	"github.com/verte-zerg/asolens/internal/generator"
	"github.com/verte-zerg/asolens/internal/ingest"
	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/projection"
	"github.com/verte-zerg/asolens/internal/store"
)

const (
	defaultMode          = "flexible"
	defaultTop           = 10
	defaultTitleBoost    = 1.5
	defaultSubtitleBoost = 1.25
	defaultKeywordsBoost = 1.1
	defaultAddr          = ":8080"
)

var (
	analyzeMode     string
	analyzeBackfill bool
	analyzeSeed     int64
	analyzeTop      int
	analyzeHorizons []int

	titleBoost    float64
	subtitleBoost float64
	keywordsBoost float64

	filterQuery         string
	filterMinVolume     float64
	filterMaxDifficulty float64
	filterRanked        bool
	filterLimit         int
)

// settings is the resolved analysis configuration for one command.
type settings struct {
	Analyze model.AnalyzeConfig
	Boosts  model.BoostConfig
	Filter  model.KeywordFilter
	File    config.FileConfig
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "asolens <file>",
		Short:         "App Store keyword analyzer",
		Long:          "Load an exported keyword CSV and explore scores, opportunities, rank projections and metadata suggestions.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ExactArgs(1),
		RunE:          runDashboardCmd,
	}
	addAnalyzeFlags(rootCmd)
	addFilterFlags(rootCmd)
	addBoostFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newMetadataCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analyzeMode, "mode", defaultMode, "schema mode: flexible or strict")
	cmd.Flags().BoolVar(&analyzeBackfill, "backfill", false, "fill missing rank, volume and difficulty with random stand-ins")
	cmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "seed for backfilled values (0 uses the clock)")
	cmd.Flags().IntVar(&analyzeTop, "top", defaultTop, "number of recommended keywords (0 for all)")
	cmd.Flags().IntSliceVar(&analyzeHorizons, "horizons", append([]int(nil), projection.DefaultHorizons...), "projection horizons in months")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterQuery, "query", "", "only keywords containing this text")
	cmd.Flags().Float64Var(&filterMinVolume, "min-volume", 0, "only keywords with at least this volume")
	cmd.Flags().Float64Var(&filterMaxDifficulty, "max-difficulty", 0, "only keywords with at most this difficulty")
	cmd.Flags().BoolVar(&filterRanked, "ranked", false, "only keywords with a current rank")
	cmd.Flags().IntVar(&filterLimit, "limit", 0, "keep at most N keywords (0 for all)")
}

func addBoostFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&titleBoost, "title-boost", defaultTitleBoost, "rank improvement multiplier for title keywords")
	cmd.Flags().Float64Var(&subtitleBoost, "subtitle-boost", defaultSubtitleBoost, "rank improvement multiplier for subtitle keywords")
	cmd.Flags().Float64Var(&keywordsBoost, "keywords-boost", defaultKeywordsBoost, "rank improvement multiplier for keyword field entries")
}

// resolveSettings merges the config file under the flags and validates the result.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &analyzeMode, fileCfg.Analyze.Mode)
	applyBoolConfig(cmd, "backfill", &analyzeBackfill, fileCfg.Analyze.Backfill)
	applyInt64Config(cmd, "seed", &analyzeSeed, fileCfg.Analyze.Seed)
	applyIntConfig(cmd, "top", &analyzeTop, fileCfg.Analyze.Top)
	applyIntSliceConfig(cmd, "horizons", &analyzeHorizons, fileCfg.Analyze.Horizons)
	applyFloatConfig(cmd, "title-boost", &titleBoost, fileCfg.Projection.TitleBoost)
	applyFloatConfig(cmd, "subtitle-boost", &subtitleBoost, fileCfg.Projection.SubtitleBoost)
	applyFloatConfig(cmd, "keywords-boost", &keywordsBoost, fileCfg.Projection.KeywordsBoost)

	mode, err := ingest.ParseMode(analyzeMode)
	if err != nil {
		return settings{}, fmt.Errorf("invalid --mode: %w", err)
	}
	s := settings{
		Analyze: model.AnalyzeConfig{
			Strict:   mode == ingest.ModeStrict,
			Backfill: analyzeBackfill,
			Seed:     analyzeSeed,
			Top:      analyzeTop,
			Horizons: append([]int(nil), analyzeHorizons...),
		},
		Boosts: model.BoostConfig{
			Title:    titleBoost,
			Subtitle: subtitleBoost,
			Keywords: keywordsBoost,
		},
		Filter: model.KeywordFilter{
			Query:         strings.TrimSpace(filterQuery),
			MinVolume:     filterMinVolume,
			MaxDifficulty: filterMaxDifficulty,
			RankedOnly:    filterRanked,
			Limit:         filterLimit,
		},
		File: fileCfg,
	}
	if err := validateConfig(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

// loadDataset parses path and loads the result into a fresh in-memory store.
func loadDataset(ctx context.Context, path string, cfg model.AnalyzeConfig) (model.ParsedDataset, *store.Store, error) {
	if !ingest.HasCSVExtension(path) {
		logErrf("warning: %s does not have a .csv extension; parsing it anyway\n", path)
	}
	mode := ingest.ModeFlexible
	if cfg.Strict {
		mode = ingest.ModeStrict
	}
	opts := ingest.Options{Source: path}
	if cfg.Backfill {
		opts.Backfill = newBackfiller(cfg.Seed)
	}
	ds, err := ingest.ParseFile(path, mode, opts)
	if err != nil {
		return model.ParsedDataset{}, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, issue := range ds.Issues {
		logErrf("warning: line %d: %s\n", issue.Line, issue.Message)
	}

	st, err := store.Open()
	if err != nil {
		return model.ParsedDataset{}, nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := st.Replace(ctx, ds); err != nil {
		closeStore(st)
		return model.ParsedDataset{}, nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return ds, st, nil
}

// filteredDataset narrows ds to the keywords matching filter.
func filteredDataset(ctx context.Context, st *store.Store, ds model.ParsedDataset, filter model.KeywordFilter) (model.ParsedDataset, error) {
	if filter == (model.KeywordFilter{}) {
		return ds, nil
	}
	keywords, err := st.Keywords(ctx, filter)
	if err != nil {
		return model.ParsedDataset{}, fmt.Errorf("failed to filter keywords: %w", err)
	}
	ds.Keywords = keywords
	return ds, nil
}

func newBackfiller(seed int64) generator.Backfiller {
	if seed != 0 {
		return generator.NewSeeded(seed)
	}
	return generator.New()
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	_, st, err := loadDataset(commandContext(cmd), args[0], cfg.Analyze)
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := dashboard.NewModel(st, dashboard.Config{
		Top:      cfg.Analyze.Top,
		Horizons: cfg.Analyze.Horizons,
		Boosts:   cfg.Boosts,
		Filter:   cfg.Filter,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntSliceConfig(cmd *cobra.Command, name string, target *[]int, value []int) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = append([]int(nil), value...)
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# asolens configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# mode = %q        # Schema mode: flexible or strict
# backfill = false         # Fill missing rank, volume and difficulty with random stand-ins
# seed = 0                 # Seed for backfilled values (0 uses the clock)
# top = %d                 # Number of recommended keywords (0 for all)
# horizons = [3, 6, 9, 12] # Projection horizons in months

[projection]
# title-boost = %.2f       # Rank improvement multiplier for title keywords
# subtitle-boost = %.2f    # Rank improvement multiplier for subtitle keywords
# keywords-boost = %.2f    # Rank improvement multiplier for keyword field entries

[server]
# addr = %q           # Listen address (%s overrides it)
`,
		defaultMode,
		defaultTop,
		defaultTitleBoost,
		defaultSubtitleBoost,
		defaultKeywordsBoost,
		defaultAddr,
		config.AddrEnv,
	)
}

func validateConfig(s settings) error {
	if s.Analyze.Top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if len(s.Analyze.Horizons) == 0 {
		return fmt.Errorf("--horizons must not be empty")
	}
	for _, months := range s.Analyze.Horizons {
		if months <= 0 {
			return fmt.Errorf("--horizons values must be > 0")
		}
	}
	if s.Boosts.Title <= 0 || s.Boosts.Subtitle <= 0 || s.Boosts.Keywords <= 0 {
		return fmt.Errorf("boost multipliers must be > 0")
	}
	if s.Filter.MinVolume < 0 {
		return fmt.Errorf("--min-volume must be >= 0")
	}
	if s.Filter.MaxDifficulty < 0 || s.Filter.MaxDifficulty > 100 {
		return fmt.Errorf("--max-difficulty must be between 0 and 100")
	}
	if s.Filter.Limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
