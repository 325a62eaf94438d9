package extract

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/romainoir/route-snapper/internal/vectortile"
	"github.com/romainoir/route-snapper/pkg/tiles"
)

// coordPrecision rounds output coordinates to 6 decimal digits, about
// 11 cm, for compact deterministic output.
const coordPrecision = 1e6

// allowedClasses is the road-class allow list. A feature with no class
// property passes; a feature with any other class is dropped.
var allowedClasses = map[string]bool{
	"motorway":      true,
	"trunk":         true,
	"primary":       true,
	"secondary":     true,
	"tertiary":      true,
	"residential":   true,
	"service":       true,
	"unclassified":  true,
	"living_street": true,
	"road":          true,
}

// NetworkFeature is one accepted road polyline in lon/lat coordinates.
// Class and Name are nil when the source feature lacks the property.
type NetworkFeature struct {
	Geometry []orb.Point
	Class    *string
	Name     *string
}

// CollectRoads filters and reprojects a tile's transportation layer.
// Tunnels and disallowed road classes are dropped, every vertex is
// reprojected to lon/lat, and only polylines with at least one vertex
// within radiusKm of center survive. Pure function, no I/O.
func CollectRoads(layer *vectortile.RoadLayer, center orb.Point, radiusKm float64) []NetworkFeature {
	var out []NetworkFeature

	for _, f := range layer.Features {
		lines := lineStrings(f.Geometry)
		if lines == nil {
			continue
		}

		// Tunnels frequently duplicate an overlapping surface way,
		// which would double edges in the output graph.
		if brunnel, ok := f.Properties["brunnel"].(string); ok && brunnel == "tunnel" {
			continue
		}

		if class, ok := f.Properties["class"].(string); ok && !allowedClasses[class] {
			continue
		}

		class := stringProperty(f.Properties, "class")
		name := stringProperty(f.Properties, "name")

		for _, line := range lines {
			coords := reprojectLine(layer.Coord, layer.Extent, line)
			if len(coords) < 2 {
				continue
			}
			if !lineWithinRadius(coords, center, radiusKm) {
				continue
			}
			out = append(out, NetworkFeature{
				Geometry: coords,
				Class:    class,
				Name:     name,
			})
		}
	}

	return out
}

// lineStrings unpacks a line geometry; nil for points and polygons.
func lineStrings(g orb.Geometry) []orb.LineString {
	switch geom := g.(type) {
	case orb.LineString:
		return []orb.LineString{geom}
	case orb.MultiLineString:
		return geom
	default:
		return nil
	}
}

// reprojectLine converts tile-local vertices to rounded lon/lat points.
func reprojectLine(coord tiles.TileCoord, extent uint32, line orb.LineString) []orb.Point {
	pts := make([]orb.Point, 0, len(line))
	for _, v := range line {
		p := tiles.TilePointToLonLat(coord, extent, v[0], v[1])
		pts = append(pts, orb.Point{round6(p.Lon()), round6(p.Lat())})
	}
	return pts
}

// lineWithinRadius reports whether any vertex lies within radiusKm of
// center, by chord distance on the Earth sphere. A line that merely
// clips the circle is kept in full.
func lineWithinRadius(coords []orb.Point, center orb.Point, radiusKm float64) bool {
	c := tiles.ToCartesian(center)
	radiusM := radiusKm * 1000.0
	for _, p := range coords {
		if tiles.ToCartesian(p).DistanceTo(c) <= radiusM {
			return true
		}
	}
	return false
}

func round6(v float64) float64 {
	return math.Round(v*coordPrecision) / coordPrecision
}

func stringProperty(props map[string]interface{}, key string) *string {
	if s, ok := props[key].(string); ok {
		return &s
	}
	return nil
}
