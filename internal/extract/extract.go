package extract

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/paulmach/orb"

	"github.com/romainoir/route-snapper/internal/vectortile"
	"github.com/romainoir/route-snapper/pkg/tiles"
)

// TileSource is what the extractor needs from a tile fetcher.
type TileSource interface {
	FetchRoads(coord tiles.TileCoord) (*vectortile.RoadLayer, error)
}

// Params describe one extraction run.
type Params struct {
	Center   orb.Point
	RadiusKm float64
	Zoom     int
}

// Result is the outcome of a run: the accepted features in deterministic
// tile scan order and their bounding box.
type Result struct {
	Params   Params
	Range    tiles.TileRange
	Features []NetworkFeature
	Bounds   BoundingBox
}

// Run plans the tile range covering the circle and processes every tile
// in it. Tiles that fail to fetch or decode are skipped with a log line;
// the run never aborts because of one missing tile.
//
// workers <= 1 fetches strictly sequentially. Larger values fetch
// through a bounded worker pool; per-tile results are still appended in
// row-major tile order, so the output is byte-identical either way.
func Run(src TileSource, p Params, workers int) *Result {
	rng := tiles.RangeForCircle(p.Center.Lon(), p.Center.Lat(), p.RadiusKm, p.Zoom)
	coords := rng.Tiles()

	slog.Info("extracting road network",
		"center_lon", p.Center.Lon(),
		"center_lat", p.Center.Lat(),
		"radius_km", p.RadiusKm,
		"zoom", p.Zoom,
		"tiles", len(coords),
	)

	agg := NewAggregator()

	if workers <= 1 {
		for i, coord := range coords {
			agg.Append(processTile(src, coord, p)...)
			logProgress(i+1, len(coords), agg.Count())
		}
	} else {
		results := make([][]NetworkFeature, len(coords))
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, coord := range coords {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, coord tiles.TileCoord) {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = processTile(src, coord, p)
			}(i, coord)
		}
		wg.Wait()
		for i, features := range results {
			agg.Append(features...)
			logProgress(i+1, len(coords), agg.Count())
		}
	}

	return &Result{
		Params:   p,
		Range:    rng,
		Features: agg.Features(),
		Bounds:   agg.Bounds(),
	}
}

// processTile fetches and filters one tile. Any failure downgrades to
// an empty contribution.
func processTile(src TileSource, coord tiles.TileCoord, p Params) []NetworkFeature {
	layer, err := src.FetchRoads(coord)
	if err != nil {
		if errors.Is(err, vectortile.ErrMissingLayer) {
			slog.Debug("tile has no road data", "tile", coord.String())
		} else {
			slog.Warn("skipping tile", "tile", coord.String(), "error", err)
		}
		return nil
	}
	return CollectRoads(layer, p.Center, p.RadiusKm)
}

func logProgress(done, total, features int) {
	if done%100 == 0 || done == total {
		slog.Info("progress", "tiles", done, "of", total, "features", features)
	}
}
