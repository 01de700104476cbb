package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/charmbracelet/log"

	"github.com/ironsheep/canny-tools-mcp/internal/config"
	"github.com/ironsheep/canny-tools-mcp/internal/imaging"
	"github.com/ironsheep/canny-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var errUsage = errors.New("usage")

// invocation is the parsed command line.
type invocation struct {
	configPath string
	command    string
	args       []string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			printHelp(os.Stderr)
		}
		fmt.Fprintf(os.Stderr, "canny-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}

	switch inv.command {
	case "version":
		fmt.Fprintf(stdout, "canny-mcp %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "help":
		printHelp(stdout)
		return nil
	}

	cfg, err := config.Load(inv.configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := newLogger(stderr, level)

	if inv.command == "detect" {
		return detect(cfg, inv.args, logger)
	}

	// Logs go to stderr; stdout is for the MCP protocol.
	logger.Debug("Starting server", "version", Version, "built", BuildTime, "commit", GitCommit)
	srv := server.New(server.Options{
		Defaults: &cfg.Canny,
		Logger:   logger,
		Version:  Version,
	})
	return srv.Run()
}

// parseArgs accepts an optional --config flag followed by at most one
// command. No command means serve.
func parseArgs(args []string) (invocation, error) {
	var inv invocation
	for len(args) > 0 {
		a := args[0]
		switch a {
		case "--config", "-c":
			if len(args) < 2 {
				return inv, fmt.Errorf("%w: %s needs a path", errUsage, a)
			}
			inv.configPath = args[1]
			args = args[2:]
			continue
		case "--version", "-v", "version":
			inv.command = "version"
		case "--help", "-h", "help":
			inv.command = "help"
		case "detect":
			inv.command = "detect"
			if n := len(args) - 1; n != 2 && n != 4 {
				return inv, fmt.Errorf("%w: detect takes <input> <output.png> [low high]", errUsage)
			}
			inv.args = args[1:]
		case "serve":
			inv.command = "serve"
		default:
			return inv, fmt.Errorf("%w: unknown argument %q", errUsage, a)
		}
		if inv.command != "detect" && len(args) > 1 {
			return inv, fmt.Errorf("%w: unexpected arguments after %s", errUsage, a)
		}
		return inv, nil
	}
	inv.command = "serve"
	return inv, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "canny-mcp - MCP server for Canny edge detection")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  canny-mcp [--config file]                                  Serve MCP over stdin/stdout")
	fmt.Fprintln(w, "  canny-mcp [--config file] detect <input> <output.png> [low high]  Write an edge mask")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config, -c     TOML file with detector defaults")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=<file>       Config file when --config is not given\n", config.EnvConfigPath)
	fmt.Fprintf(w, "  %s=debug     Log level (debug, info, warn, error)\n", config.EnvLogLevel)
}

// detect runs the detector once and writes the mask as a PNG.
func detect(cfg config.Config, args []string, logger *log.Logger) error {
	in, out := args[0], args[1]
	if len(args) == 4 {
		var err error
		if cfg.Canny.Lower, err = strconv.ParseFloat(args[2], 64); err != nil {
			return fmt.Errorf("invalid lower threshold %q: %w", args[2], err)
		}
		if cfg.Canny.Upper, err = strconv.ParseFloat(args[3], 64); err != nil {
			return fmt.Errorf("invalid upper threshold %q: %w", args[3], err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	img, err := imaging.NewImageCache().Load(in)
	if err != nil {
		return err
	}

	mask, err := imaging.Detect(img, imaging.EdgeOptions{
		Params:  cfg.Canny.Parameters(),
		Channel: imaging.ChannelLuma,
	})
	if err != nil {
		return err
	}

	if err := imgio.Save(out, imaging.MaskImage(mask), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Info("Wrote edge mask", "path", out, "edge_pixels", mask.Count())
	return nil
}
