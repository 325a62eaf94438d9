package tiles

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	// EarthRadiusKm is the mean Earth radius used for angular distances.
	EarthRadiusKm = 6371.0088

	// EarthRadiusM is the sphere radius used for Cartesian projection.
	EarthRadiusM = 6371000.0
)

// TileCoord represents a tile coordinate in the slippy map format
type TileCoord struct {
	X    int
	Y    int
	Zoom int
}

func (t TileCoord) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// Maptile converts the coordinate to the orb tile type.
func (t TileCoord) Maptile() maptile.Tile {
	return maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Zoom))
}

// TileRange is an inclusive rectangle of tile indices at a single zoom level.
type TileRange struct {
	Zoom int
	MinX int
	MaxX int
	MinY int
	MaxY int
}

// Count returns the number of tiles covered by the range.
func (r TileRange) Count() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Contains reports whether the coordinate lies inside the range.
func (r TileRange) Contains(t TileCoord) bool {
	return t.Zoom == r.Zoom &&
		t.X >= r.MinX && t.X <= r.MaxX &&
		t.Y >= r.MinY && t.Y <= r.MaxY
}

// Tiles returns the coordinates of the range in row-major order
// (x outer, y inner). This is the canonical processing order.
func (r TileRange) Tiles() []TileCoord {
	coords := make([]TileCoord, 0, r.Count())
	for x := r.MinX; x <= r.MaxX; x++ {
		for y := r.MinY; y <= r.MaxY; y++ {
			coords = append(coords, TileCoord{X: x, Y: y, Zoom: r.Zoom})
		}
	}
	return coords
}

// Clamp restricts a tile index to [0, 2^zoom - 1].
func Clamp(v, zoom int) int {
	if v < 0 {
		return 0
	}
	maxTile := int(math.Pow(2, float64(zoom))) - 1
	if v > maxTile {
		return maxTile
	}
	return v
}

// LonLatToTile converts longitude/latitude to tile coordinates at a given
// zoom level, clamped to the valid tile grid.
func LonLatToTile(lon, lat float64, zoom int) TileCoord {
	n := math.Pow(2, float64(zoom))
	x := int(math.Floor((lon + 180.0) / 360.0 * n))
	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	return TileCoord{X: Clamp(x, zoom), Y: Clamp(y, zoom), Zoom: zoom}
}

// RangeForCircle returns the tile range covering a circle of radiusKm
// around (lon, lat). The longitude span widens with latitude to account
// for meridian convergence, evaluated at the latitude extremes of the
// circle so the rectangle covers it everywhere in between. Ranges near
// the antimeridian or poles are truncated to the valid grid, not wrapped.
func RangeForCircle(lon, lat, radiusKm float64, zoom int) TileRange {
	radDist := radiusKm / EarthRadiusKm

	minLat := math.Max(lat-radDist*180.0/math.Pi, -90.0)
	maxLat := math.Min(lat+radDist*180.0/math.Pi, 90.0)

	topLeft := LonLatToTile(lon-deltaLon(radDist, maxLat), maxLat, zoom)
	bottomRight := LonLatToTile(lon+deltaLon(radDist, minLat), minLat, zoom)

	return TileRange{
		Zoom: zoom,
		MinX: topLeft.X,
		MaxX: bottomRight.X,
		MinY: topLeft.Y,
		MaxY: bottomRight.Y,
	}
}

// deltaLon returns the longitude half-span of a circle with angular
// radius radDist at the given latitude. When the circle reaches around
// the pole it spans all longitudes.
func deltaLon(radDist, latDeg float64) float64 {
	cosLat := math.Cos(latDeg * math.Pi / 180.0)
	sinRad := math.Sin(radDist)
	if cosLat <= sinRad {
		return 180.0
	}
	return math.Asin(sinRad/cosLat) * 180.0 / math.Pi
}

// TilePointToLonLat converts a tile-local pixel position to longitude and
// latitude. extent is the tile's internal coordinate resolution.
func TilePointToLonLat(t TileCoord, extent uint32, px, py float64) orb.Point {
	n := math.Pow(2, float64(t.Zoom))
	lon := (float64(t.X)+px/float64(extent))/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1.0 - 2.0*(float64(t.Y)+py/float64(extent))/n)))
	return orb.Point{lon, latRad * 180.0 / math.Pi}
}

// Cartesian is a position on the Earth sphere, in meters.
type Cartesian struct {
	X float64
	Y float64
	Z float64
}

// ToCartesian projects a lon/lat point onto a sphere of EarthRadiusM.
// Chord distances on this sphere are adequate at the tens-of-kilometers
// scale this tool targets, not geodesically exact.
func ToCartesian(p orb.Point) Cartesian {
	lonRad := p.Lon() * math.Pi / 180.0
	latRad := p.Lat() * math.Pi / 180.0
	return Cartesian{
		X: EarthRadiusM * math.Cos(latRad) * math.Cos(lonRad),
		Y: EarthRadiusM * math.Cos(latRad) * math.Sin(lonRad),
		Z: EarthRadiusM * math.Sin(latRad),
	}
}

// DistanceTo returns the straight-line (chord) distance in meters.
func (c Cartesian) DistanceTo(o Cartesian) float64 {
	dx := c.X - o.X
	dy := c.Y - o.Y
	dz := c.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
