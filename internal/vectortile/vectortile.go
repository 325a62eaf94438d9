package vectortile

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/romainoir/route-snapper/pkg/tiles"
)

// TransportationLayer is the MVT layer holding road geometries.
const TransportationLayer = "transportation"

// ErrMissingLayer marks a tile that decoded fine but carries no
// transportation layer, e.g. open water.
var ErrMissingLayer = errors.New("tile has no transportation layer")

// RoadLayer holds the transportation layer of one tile. Geometry stays
// in tile-local coordinates scaled to Extent; the caller reprojects.
type RoadLayer struct {
	Coord    tiles.TileCoord
	Extent   uint32
	Features []*geojson.Feature
}

// Fetcher retrieves and decodes vector tiles from a z/x/y endpoint.
type Fetcher struct {
	baseURL   string
	userAgent string
	cacheDir  string
	client    *http.Client
}

// NewFetcher creates a fetcher for the given tile endpoint. cacheDir is
// optional; when set, raw payloads are cached on disk and reused.
func NewFetcher(baseURL, userAgent string, timeout time.Duration, cacheDir string) (*Fetcher, error) {
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create tile cache directory")
		}
	}
	return &Fetcher{
		baseURL:   baseURL,
		userAgent: userAgent,
		cacheDir:  cacheDir,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// URL returns the request URL for a tile.
func (f *Fetcher) URL(coord tiles.TileCoord) string {
	return fmt.Sprintf("%s/%d/%d/%d.pbf", f.baseURL, coord.Zoom, coord.X, coord.Y)
}

// cachePath returns the file path for a cached tile payload.
func (f *Fetcher) cachePath(coord tiles.TileCoord) string {
	return filepath.Join(f.cacheDir, fmt.Sprintf("%d_%d_%d.pbf", coord.Zoom, coord.X, coord.Y))
}

// FetchRoads retrieves one tile and returns its transportation layer.
// Returns ErrMissingLayer when the tile has no road data.
func (f *Fetcher) FetchRoads(coord tiles.TileCoord) (*RoadLayer, error) {
	raw, err := f.fetch(coord)
	if err != nil {
		return nil, err
	}
	return DecodeRoads(coord, raw)
}

// fetch downloads a tile payload, consulting the disk cache first.
func (f *Fetcher) fetch(coord tiles.TileCoord) ([]byte, error) {
	if f.cacheDir != "" {
		if data, err := os.ReadFile(f.cachePath(coord)); err == nil {
			return data, nil
		}
	}

	req, err := http.NewRequest("GET", f.URL(coord), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch tile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("tile server returned status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open gzip reader")
		}
		defer gzReader.Close()
		reader = gzReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tile data")
	}

	if f.cacheDir != "" {
		// Best effort, we still have the data in memory.
		_ = os.WriteFile(f.cachePath(coord), data, 0644)
	}

	return data, nil
}

// DecodeRoads parses an MVT payload and extracts the transportation
// layer, leaving geometry in tile-local coordinates.
func DecodeRoads(coord tiles.TileCoord, raw []byte) (*RoadLayer, error) {
	layers, err := mvt.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "mvt parse error")
	}

	for _, layer := range layers {
		if layer.Name == TransportationLayer {
			return &RoadLayer{
				Coord:    coord,
				Extent:   layer.Extent,
				Features: layer.Features,
			}, nil
		}
	}

	return nil, ErrMissingLayer
}
