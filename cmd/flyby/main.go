// Command flyby reports the next expected satellite image capture for a
// latitude/longitude pair, using the NASA Earth imagery-assets API.
//
// Usage:
//
//	flyby -lat 40.720583 -lon -74.001472
//	flyby -u    # run the self-test suite (no network)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/flyby"
	"github.com/he945/flyby/internal/selftest"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude of query point")
	lon := flag.Float64("lon", 0, "longitude of query point")
	runSelfTest := flag.Bool("u", false, "run the self-test suite instead of performing a lookup")
	flag.Parse()

	if *runSelfTest {
		if failed := selftest.Run(os.Stdout); failed > 0 {
			os.Exit(1)
		}
		return
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["lat"] || !set["lon"] {
		fmt.Fprintln(os.Stderr, "flyby: both -lat and -lon are required")
		flag.Usage()
		os.Exit(2)
	}

	// Optional .env file for FLYBY_* variables.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	client := assets.NewClient(os.Getenv("FLYBY_API_BASE_URL"), os.Getenv("FLYBY_API_KEY"), logger)
	svc := flyby.NewService(client, logger)

	result, err := svc.Lookup(context.Background(), *lat, *lon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyby: lookup for (%g, %g) failed: %v\n", *lat, *lon, err)
		os.Exit(1)
	}

	fmt.Printf("Next time: %s\n", result.NextTime.Format(time.RFC3339))
}

func logLevel() slog.Level {
	switch os.Getenv("FLYBY_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
