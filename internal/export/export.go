package export

import (
	"encoding/json"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/romainoir/route-snapper/internal/extract"
)

// Center is the run's center point as written to metadata.
type Center struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Bounds is the run's bounding box as written to metadata.
type Bounds struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// Metadata is the run summary written next to the feature collection.
// Bounds is null when the run accepted no features, since the empty
// box's infinities have no JSON representation.
type Metadata struct {
	Center       Center  `json:"center"`
	RadiusKm     float64 `json:"radius_km"`
	Zoom         int     `json:"zoom"`
	FeatureCount int     `json:"feature_count"`
	Bounds       *Bounds `json:"bounds"`
}

// Collection builds a GeoJSON feature collection from accepted features.
// Each feature carries exactly the class and name properties, null when
// the source lacked them.
func Collection(features []extract.NetworkFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		line := make(orb.LineString, len(f.Geometry))
		copy(line, f.Geometry)

		gf := geojson.NewFeature(line)
		gf.Properties = geojson.Properties{
			"class": nullableString(f.Class),
			"name":  nullableString(f.Name),
		}
		fc.Append(gf)
	}
	return fc
}

// MetadataFor builds the run summary for a result.
func MetadataFor(res *extract.Result) Metadata {
	meta := Metadata{
		Center: Center{
			Lon: res.Params.Center.Lon(),
			Lat: res.Params.Center.Lat(),
		},
		RadiusKm:     res.Params.RadiusKm,
		Zoom:         res.Params.Zoom,
		FeatureCount: len(res.Features),
	}
	if len(res.Features) > 0 {
		meta.Bounds = &Bounds{
			MinLon: res.Bounds.MinLon,
			MinLat: res.Bounds.MinLat,
			MaxLon: res.Bounds.MaxLon,
			MaxLat: res.Bounds.MaxLat,
		}
	}
	return meta
}

// WriteFiles writes <prefix>.geojson and <prefix>.meta.json. Any failure
// here is fatal for the run.
func WriteFiles(prefix string, res *extract.Result) error {
	fc := Collection(res.Features)
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode feature collection")
	}
	if err := os.WriteFile(prefix+".geojson", data, 0644); err != nil {
		return errors.Wrap(err, "failed to write feature collection")
	}

	meta, err := json.MarshalIndent(MetadataFor(res), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}
	if err := os.WriteFile(prefix+".meta.json", meta, 0644); err != nil {
		return errors.Wrap(err, "failed to write metadata")
	}

	return nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
