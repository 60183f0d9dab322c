package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/dotdaily/internal/animator"
	"github.com/verte-zerg/dotdaily/internal/canvas"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/config"
	"github.com/verte-zerg/dotdaily/internal/generator"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
	"github.com/verte-zerg/dotdaily/internal/server"
)

const maxShowWidth = 64

var errInvalidPuzzles = errors.New("invalid puzzles found")

func newPuzzlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzles",
		Short: "Inspect and validate puzzle documents",
	}
	cmd.PersistentFlags().StringVar(&playPuzzleDir, "puzzle-dir", config.DefaultPuzzleDir(), "directory with <category>.json overrides")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List today's puzzles",
		Args:  cobra.NoArgs,
		RunE:  runPuzzlesListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <category|file>",
		Short: "Draw a puzzle in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPuzzlesShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>...",
		Short: "Check puzzle files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPuzzlesValidateCmd,
	})
	return cmd
}

// loadPuzzlePack resolves the puzzle dir from flags and config.
func loadPuzzlePack(cmd *cobra.Command, fileCfg config.FileConfig) (puzzle.Pack, error) {
	applyStringConfig(cmd, "puzzle-dir", &playPuzzleDir, fileCfg.Game.PuzzleDir)
	pack, err := puzzle.LoadPack(playPuzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzles: %w", err)
	}
	return pack, nil
}

func runPuzzlesListCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	pack, err := loadPuzzlePack(cmd, fileCfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range model.Categories() {
		doc, ok := pack.Get(c)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-7s %-14s %-10s %3d dots %3d lines\n",
			c, doc.Name, doc.CategoryName, len(doc.Dots), len(doc.Sequence)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runPuzzlesShowCmd(cmd *cobra.Command, args []string) error {
	var doc puzzle.Document
	if c, err := model.ParseCategory(args[0]); err == nil {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return err
		}
		pack, err := loadPuzzlePack(cmd, fileCfg)
		if err != nil {
			return err
		}
		doc, _ = pack.Get(c)
	} else {
		doc, err = puzzle.Load(args[0])
		if err != nil {
			return err
		}
	}
	return showPuzzle(cmd.OutOrStdout(), doc, canvas.TerminalWidth())
}

func showPuzzle(w io.Writer, doc puzzle.Document, width int) error {
	cols := min(max(width-2, 8), maxShowWidth)
	rows := max(cols/2, 4)
	full := animator.New(doc, animator.DefaultOptions()).FrameAt(1)
	drawing := canvas.Draw(doc, full, cols, rows, canvas.Options{Dots: true})
	if _, err := fmt.Fprintf(w, "%s (%s)\n%s\n", doc.Name, doc.CategoryName, drawing.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runPuzzlesValidateCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	bad := 0
	for _, path := range args {
		doc, err := puzzle.Load(path)
		if err != nil {
			bad++
			if _, werr := fmt.Fprintf(out, "%s: %v\n", path, err); werr != nil {
				return fmt.Errorf("failed to write output: %w", werr)
			}
			continue
		}
		issues := doc.Validate()
		if len(issues) == 0 {
			if _, err := fmt.Fprintf(out, "%s: ok\n", path); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		bad++
		for _, issue := range issues {
			if _, err := fmt.Fprintf(out, "%s: %s\n", path, issue); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidPuzzles, bad, len(args))
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a puzzle from a text prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGenerateCmd,
	}
	cmd.Flags().StringVar(&generateOut, "out", "", "directory to save the puzzle to (prints JSON when empty)")
	return cmd
}

// newAssistant uses the remote generator only when an API key is present.
func newAssistant(gen config.GeneratorConfig, logger zerolog.Logger) *generator.Assistant {
	keyEnv := generator.DefaultAPIKeyEnv
	if gen.APIKeyEnv != nil && *gen.APIKeyEnv != "" {
		keyEnv = *gen.APIKeyEnv
	}
	key := strings.TrimSpace(os.Getenv(keyEnv))
	if key == "" {
		logger.Debug().Str("env", keyEnv).Msg("no API key, using local generator")
		return generator.NewAssistant(nil, logger)
	}
	opts := generator.ClaudeOptions{APIKey: key}
	if gen.Endpoint != nil {
		opts.Endpoint = *gen.Endpoint
	}
	if gen.Model != nil {
		opts.Model = *gen.Model
	}
	if gen.TimeoutSeconds != nil {
		opts.Timeout = time.Duration(*gen.TimeoutSeconds) * time.Second
	}
	return generator.NewAssistant(generator.NewClaude(opts, nil), logger)
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	res, err := newAssistant(fileCfg.Generator, logger).Generate(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if generateOut == "" {
		return puzzle.Encode(cmd.OutOrStdout(), res.Document)
	}
	path := filepath.Join(generateOut, puzzle.Filename(res.Document.Name))
	if err := puzzle.Save(path, res.Document); err != nil {
		return err
	}
	logger.Info().Str("path", path).Str("source", string(res.Source)).Msg("saved generated puzzle")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve puzzles and daily progress over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&playPuzzleDir, "puzzle-dir", config.DefaultPuzzleDir(), "directory with <category>.json overrides")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	if fileCfg.Server.Addr != nil && !cmd.Flags().Changed("addr") {
		serveAddr = *fileCfg.Server.Addr
	}
	logger, closer, err := setupLogger(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	pack, err := loadPuzzlePack(cmd, fileCfg)
	if err != nil {
		return err
	}
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Pack:      pack,
		State:     st,
		Assistant: newAssistant(fileCfg.Generator, logger),
		Clock:     clock.System{},
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx, serveAddr)
}
