package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/logger"
	"github.com/ironsheep/hydrangea-counter/internal/pipeline"
	"github.com/ironsheep/hydrangea-counter/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "hydrangea-counter %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "count":
		return runCount(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "hydrangea-counter - count hydrangea blossoms in a photograph")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  hydrangea-counter count [-config FILE] [-seed N] [-out DIR] IMAGE")
	fmt.Fprintln(w, "  hydrangea-counter serve [-config FILE]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  count            Run the pipeline on IMAGE and write 1_original.png .. 5_count.png")
	fmt.Fprintln(w, "  serve            Run the MCP server over stdin/stdout")
	fmt.Fprintln(w, "  version, -v      Print version information")
	fmt.Fprintln(w, "  help, -h         Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Enable debug logging\n", logger.EnvLevel)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runCount(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "TOML file overriding the default thresholds")
	seed := fs.Int64("seed", 0, "clustering seed (default from configuration)")
	out := fs.String("out", "results", "directory for the stage images")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logger.NewConsole(stderr, logger.LevelFromEnv(zerolog.InfoLevel))

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Cluster.Seed = *seed
		}
	})

	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	// An empty path is the "nothing selected" case and is reported as such.
	res, err := p.Run(fs.Arg(0), pipeline.NewDirSink(*out))
	if err != nil {
		log.Error().Err(err).Msg("count failed")
		return 1
	}

	for i, c := range res.Circles {
		log.Debug().Int("index", i).Float64("x", c.X).Float64("y", c.Y).
			Float64("radius", c.Radius).Int("votes", c.Votes).Msg("blossom")
	}
	fmt.Fprintf(stdout, "Total hydrangeas detected: %d\n", res.Count)
	return 0
}

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "TOML file overriding the default thresholds")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// stdout carries the MCP protocol, so logs go to stderr
	log := logger.NewConsole(stderr, logger.LevelFromEnv(zerolog.InfoLevel))

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	log.Debug().Str("version", Version).Str("build_time", BuildTime).Str("commit", GitCommit).Msg("hydrangea MCP server starting")

	srv := server.New(cfg, log, Version)
	if err := srv.Run(); err != nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}
