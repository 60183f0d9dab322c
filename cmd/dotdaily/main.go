// Package main provides the CLI entrypoint for dotdaily.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/dotdaily/internal/audio"
	"github.com/verte-zerg/dotdaily/internal/builderui"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/config"
	"github.com/verte-zerg/dotdaily/internal/daily"
	"github.com/verte-zerg/dotdaily/internal/logging"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
	"github.com/verte-zerg/dotdaily/internal/stats"
	"github.com/verte-zerg/dotdaily/internal/statsui"
	"github.com/verte-zerg/dotdaily/internal/store"
	"github.com/verte-zerg/dotdaily/internal/tui"
)

const (
	defaultPixelsPerSecond = 200.0
	defaultMinLineTimeMs   = 200
	defaultGuessTimeLimit  = 20
	defaultHintCooldown    = 5
	defaultWrongFlashMs    = 800
	defaultCelebration     = 4 * time.Second
	defaultStatsWindow     = 10
	defaultAddr            = "127.0.0.1:8080"
)

var (
	playDifficulty   string
	playPixelsPerSec float64
	playMinLineMs    int
	playGuessLimit   int
	playHintCooldown int
	playWrongFlashMs int
	playPuzzleDir    string
	playMute         bool

	buildOut string

	statsCategory string
	statsSince    string
	statsLast     int
	statsWindow   int
	statsPlain    bool

	serveAddr string

	generateOut string

	logLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dotdaily",
		Short:         "Daily dot-to-dot word puzzle",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&playDifficulty, "difficulty", string(model.Easy), "easy or hard (hard disables hints)")
	rootCmd.Flags().Float64Var(&playPixelsPerSec, "pixels-per-second", defaultPixelsPerSecond, "drawing speed")
	rootCmd.Flags().IntVar(&playMinLineMs, "min-line-time-ms", defaultMinLineTimeMs, "minimum time per line in ms")
	rootCmd.Flags().IntVar(&playGuessLimit, "guess-time-limit", defaultGuessTimeLimit, "seconds to type a guess")
	rootCmd.Flags().IntVar(&playHintCooldown, "hint-cooldown", defaultHintCooldown, "seconds between hints")
	rootCmd.Flags().IntVar(&playWrongFlashMs, "wrong-flash-ms", defaultWrongFlashMs, "how long a wrong guess stays red in ms")
	rootCmd.Flags().StringVar(&playPuzzleDir, "puzzle-dir", config.DefaultPuzzleDir(), "directory with <category>.json overrides")
	rootCmd.Flags().BoolVar(&playMute, "mute", false, "do not open the audio device")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newPuzzlesCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadFileConfig reads .env and the TOML config.
func loadFileConfig() (config.FileConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logErrf("failed to load .env: %v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

// setupLogger logs to the log file for commands that own the terminal and to
// stderr otherwise.
func setupLogger(cmd *cobra.Command, fileCfg config.FileConfig, toFile bool) (zerolog.Logger, func() error, error) {
	level := ""
	if fileCfg.Log.Level != nil {
		level = *fileCfg.Log.Level
	}
	applyStringFlag(cmd, "log-level", &level, logLevel)
	opts := logging.Options{Level: level, Console: cmd.ErrOrStderr()}
	if toFile {
		opts.File = config.DefaultLogPath()
		if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
			opts.File = *fileCfg.Log.File
		}
	}
	logger, closer, err := logging.Setup(opts)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, closer, nil
}

func closeLogger(closer func() error) {
	if closer == nil {
		return
	}
	if err := closer(); err != nil {
		logErrf("failed to close log: %v\n", err)
	}
}

func openStore(logger zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug().Str("path", config.DefaultDBPath()).Msg("opened db")
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := resolvePlayConfig(cmd, fileCfg.Game)
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, fileCfg, true)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	pack, err := puzzle.LoadPack(cfg.PuzzleDir)
	if err != nil {
		return fmt.Errorf("failed to load puzzles: %w", err)
	}
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if cmd.Flags().Changed("difficulty") || fileCfg.Game.Difficulty != nil {
		if err := saveDifficulty(ctx, st, cfg.Difficulty); err != nil {
			return err
		}
	}

	settings, err := st.LoadSettings(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load settings")
		settings = model.DefaultSettings()
	}
	var player audio.Player = audio.Nop{}
	if !playMute {
		sp := audio.NewSpeaker(settings)
		if err := sp.Init(); err != nil {
			logger.Warn().Err(err).Msg("audio unavailable")
		} else {
			player = sp
		}
	}
	defer player.Close()

	tp := clock.System{}
	m := tui.NewModel(tui.Deps{
		Config:    cfg,
		Store:     st,
		Pack:      pack,
		Scheduler: daily.NewScheduler(st, tp, logger),
		Audio:     player,
		Clock:     tp,
		Logger:    logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func saveDifficulty(ctx context.Context, st *store.Store, d model.Difficulty) error {
	settings, err := st.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Difficulty = d
	if err := st.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func resolvePlayConfig(cmd *cobra.Command, game config.GameConfig) (model.Config, error) {
	applyStringConfig(cmd, "difficulty", &playDifficulty, game.Difficulty)
	applyFloatConfig(cmd, "pixels-per-second", &playPixelsPerSec, game.PixelsPerSecond)
	applyIntConfig(cmd, "min-line-time-ms", &playMinLineMs, game.MinLineTimeMs)
	applyIntConfig(cmd, "guess-time-limit", &playGuessLimit, game.GuessTimeLimit)
	applyIntConfig(cmd, "hint-cooldown", &playHintCooldown, game.HintCooldown)
	applyIntConfig(cmd, "wrong-flash-ms", &playWrongFlashMs, game.WrongFlashMs)
	applyStringConfig(cmd, "puzzle-dir", &playPuzzleDir, game.PuzzleDir)

	difficulty, err := model.ParseDifficulty(playDifficulty)
	if err != nil {
		return model.Config{}, fmt.Errorf("--difficulty: %w", err)
	}
	cfg := model.Config{
		Difficulty:      difficulty,
		PixelsPerSecond: playPixelsPerSec,
		MinLineTime:     time.Duration(playMinLineMs) * time.Millisecond,
		GuessTimeLimit:  time.Duration(playGuessLimit) * time.Second,
		HintCooldown:    time.Duration(playHintCooldown) * time.Second,
		WrongFlash:      time.Duration(playWrongFlashMs) * time.Millisecond,
		Celebration:     defaultCelebration,
		PuzzleDir:       playPuzzleDir,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.PixelsPerSecond <= 0 {
		return fmt.Errorf("--pixels-per-second must be > 0")
	}
	if cfg.MinLineTime < 0 {
		return fmt.Errorf("--min-line-time-ms must be >= 0")
	}
	if cfg.GuessTimeLimit <= 0 {
		return fmt.Errorf("--guess-time-limit must be > 0")
	}
	if cfg.HintCooldown < 0 {
		return fmt.Errorf("--hint-cooldown must be >= 0")
	}
	if cfg.WrongFlash < 0 {
		return fmt.Errorf("--wrong-flash-ms must be >= 0")
	}
	return nil
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Open the puzzle builder, optionally importing a puzzle file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBuildCmd,
	}
	cmd.Flags().StringVar(&buildOut, "out", config.DefaultExportDir(), "directory for exported puzzles")
	return cmd
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, fileCfg, true)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	opts := builderui.Options{ExportDir: buildOut, Logger: logger}
	if len(args) == 1 {
		doc, err := puzzle.Load(args[0])
		if err != nil {
			return err
		}
		opts.Import = &doc
	}
	m, err := builderui.NewModel(opts)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run builder: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show play history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCategory, "category", "", "category filter (yellow, green, blue, red)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N plays")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive viewer")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	var category model.Category
	if statsCategory != "" {
		parsed, err := model.ParseCategory(statsCategory)
		if err != nil {
			return fmt.Errorf("--category: %w", err)
		}
		category = parsed
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	cfg := model.StatsConfig{
		Category: category,
		Since:    sinceTime,
		Last:     statsLast,
		Window:   statsWindow,
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, fileCfg, !statsPlain)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		return printStats(cmd, st, cfg)
	}
	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Plays); err != nil {
		return err
	}
	if len(report.Plays) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCategoryTable(out, report.Plays); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderCurves(out, report.Plays, cfg.Window)
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear today's completions now",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	sched := daily.NewScheduler(st, clock.System{}, logger)
	if err := sched.Force(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	logger.Info().Msg("forced daily reset")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Daily progress cleared. Next reset at %s.\n",
		daily.NextReset(time.Now()).Local().Format("2006-01-02 15:04 MST"))
	return err
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

func defaultConfigTemplate() string {
	return "# dotdaily configuration\n# Uncomment a value to enable it. CLI flags override config values.\n\n" + config.Sample
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyStringFlag overrides target with value when the flag was set.
func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
