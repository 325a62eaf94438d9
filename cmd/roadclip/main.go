package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/paulmach/orb"

	"github.com/romainoir/route-snapper/internal/config"
	"github.com/romainoir/route-snapper/internal/export"
	"github.com/romainoir/route-snapper/internal/extract"
	"github.com/romainoir/route-snapper/internal/logging"
	"github.com/romainoir/route-snapper/internal/vectortile"
)

var (
	lon        = flag.Float64("lon", 13.405, "center longitude (degrees)")
	lat        = flag.Float64("lat", 52.52, "center latitude (degrees)")
	radiusKm   = flag.Float64("radius", 10, "extraction radius (kilometers)")
	zoom       = flag.Int("zoom", 14, "tile zoom level (6-16)")
	out        = flag.String("out", "roadclip", "output name prefix: writes <prefix>.geojson and <prefix>.meta.json")
	configPath = flag.String("config", "", "path to a config file (optional)")
)

func main() {
	flag.Parse()

	if err := validateParams(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid parameters: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	fetcher, err := vectortile.NewFetcher(
		cfg.Tiles.URL,
		cfg.Tiles.UserAgent,
		time.Duration(cfg.Tiles.TimeoutSeconds)*time.Second,
		cfg.Tiles.CacheDir,
	)
	if err != nil {
		slog.Error("tile fetcher setup failed", "error", err)
		os.Exit(1)
	}

	params := extract.Params{
		Center:   orb.Point{*lon, *lat},
		RadiusKm: *radiusKm,
		Zoom:     *zoom,
	}

	res := extract.Run(fetcher, params, cfg.Extract.Workers)

	if err := export.WriteFiles(*out, res); err != nil {
		slog.Error("writing output failed", "error", err)
		os.Exit(1)
	}

	slog.Info("done",
		"features", len(res.Features),
		"tiles", res.Range.Count(),
		"out", *out,
	)
}

func validateParams() error {
	if *lon < -180 || *lon > 180 {
		return fmt.Errorf("lon must be in [-180, 180], got %g", *lon)
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("lat must be in [-90, 90], got %g", *lat)
	}
	if *radiusKm <= 0 {
		return fmt.Errorf("radius must be positive, got %g", *radiusKm)
	}
	if *zoom < 6 || *zoom > 16 {
		return fmt.Errorf("zoom must be in [6, 16], got %d", *zoom)
	}
	return nil
}
