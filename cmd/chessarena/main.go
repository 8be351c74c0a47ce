package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/hailam/chessarena/internal/config"
	"github.com/hailam/chessarena/internal/protocol"
	"github.com/hailam/chessarena/internal/storage"
)

var (
	configPath = flag.String("config", "", "path to a TOML config file")
	dataDir    = flag.String("data-dir", "", "directory for the game archive (overrides config)")
	chess960   = flag.Bool("chess960", false, "start Chess960 games (overrides config)")
	logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	noArchive  = flag.Bool("no-archive", false, "disable the game archive")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chessarena:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", *cpuprofile).Msg("cpu profiling enabled")
	}

	opts := []protocol.Option{
		protocol.WithLogger(log),
		protocol.WithChess960(cfg.Chess960()),
	}
	if cfg.Archive.Enabled {
		archive, err := openArchive(cfg, log)
		if err != nil {
			return err
		}
		defer archive.Close()
		opts = append(opts, protocol.WithArchive(archive))
	}

	log.Info().Str("variant", cfg.Variant).Bool("archive", cfg.Archive.Enabled).Msg("chessarena ready")
	return protocol.New(opts...).Run(os.Stdin, os.Stdout)
}

// applyFlags lets command-line flags override the config file.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "chess960":
			cfg.Variant = config.VariantStandard
			if *chess960 {
				cfg.Variant = config.VariantChess960
			}
		case "log-level":
			cfg.Log.Level = *logLevel
		case "no-archive":
			cfg.Archive.Enabled = !*noArchive
		}
	})
}

func openArchive(cfg config.Config, log zerolog.Logger) (*storage.Archive, error) {
	if cfg.Archive.InMemory {
		return storage.OpenInMemory(log)
	}
	dir, err := storage.GetDatabaseDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("archive directory: %w", err)
	}
	log.Debug().Str("dir", dir).Msg("opening archive")
	return storage.Open(dir, log)
}
