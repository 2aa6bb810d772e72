package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("ferryd %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg)

	server, err := NewServer(cfg, logger)
	if err != nil {
		logger.Error("server startup failed", "error", err)
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			return serverErr.ExitCode
		}
		return ExitConfigError
	}

	if err := server.Run(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			return serverErr.ExitCode
		}
		return ExitHTTPServerError
	}

	return ExitSuccess
}
