package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/romainoir/route-snapper/internal/extract"
)

func strPtr(s string) *string { return &s }

func testResult() *extract.Result {
	agg := extract.NewAggregator()
	agg.Append(
		extract.NetworkFeature{
			Geometry: []orb.Point{{13.403321, 52.522906}, {13.404123, 52.522001}},
			Class:    strPtr("primary"),
			Name:     strPtr("Unter den Linden"),
		},
		extract.NetworkFeature{
			Geometry: []orb.Point{{13.405, 52.52}, {13.406, 52.521}},
		},
	)
	return &extract.Result{
		Params:   extract.Params{Center: orb.Point{13.405, 52.52}, RadiusKm: 40, Zoom: 14},
		Features: agg.Features(),
		Bounds:   agg.Bounds(),
	}
}

func TestCollectionProperties(t *testing.T) {
	fc := Collection(testResult().Features)
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	first := fc.Features[0]
	if first.Properties["class"] != "primary" {
		t.Errorf("expected class primary, got %v", first.Properties["class"])
	}

	second := fc.Features[1]
	if v, ok := second.Properties["class"]; !ok || v != nil {
		t.Errorf("expected explicit null class, got %v (present=%v)", v, ok)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Contains(data, []byte(`"class":null`)) {
		t.Error("missing class must serialize as null")
	}
	if !bytes.Contains(data, []byte(`"type":"LineString"`)) {
		t.Error("expected LineString geometries")
	}
}

func TestMetadataFor(t *testing.T) {
	res := testResult()
	meta := MetadataFor(res)

	if meta.FeatureCount != 2 {
		t.Errorf("expected feature_count 2, got %d", meta.FeatureCount)
	}
	if meta.RadiusKm != 40 || meta.Zoom != 14 {
		t.Errorf("run parameters not carried over: %+v", meta)
	}
	if meta.Bounds == nil {
		t.Fatal("expected bounds for a non-empty run")
	}
	if meta.Bounds.MinLon > meta.Bounds.MaxLon || meta.Bounds.MinLat > meta.Bounds.MaxLat {
		t.Errorf("inverted bounds: %+v", meta.Bounds)
	}
}

func TestMetadataForEmptyRun(t *testing.T) {
	res := &extract.Result{
		Params: extract.Params{Center: orb.Point{13.405, 52.52}, RadiusKm: 1, Zoom: 14},
		Bounds: extract.NewBoundingBox(),
	}
	meta := MetadataFor(res)
	if meta.Bounds != nil {
		t.Errorf("expected null bounds for an empty run, got %+v", meta.Bounds)
	}
	if _, err := json.Marshal(meta); err != nil {
		t.Errorf("empty-run metadata must serialize: %v", err)
	}
}

func TestWriteFilesDeterministic(t *testing.T) {
	dir := t.TempDir()
	res := testResult()

	prefixA := filepath.Join(dir, "a")
	prefixB := filepath.Join(dir, "b")
	if err := WriteFiles(prefixA, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteFiles(prefixB, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	for _, suffix := range []string{".geojson", ".meta.json"} {
		a, err := os.ReadFile(prefixA + suffix)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		b, err := os.ReadFile(prefixB + suffix)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s output is not byte-identical across runs", suffix)
		}
	}

	var meta Metadata
	data, _ := os.ReadFile(prefixA + ".meta.json")
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("metadata does not parse: %v", err)
	}
	if meta.Center.Lon != 13.405 || meta.Center.Lat != 52.52 {
		t.Errorf("unexpected center in metadata: %+v", meta.Center)
	}
}

func TestWriteFilesFailure(t *testing.T) {
	res := testResult()
	if err := WriteFiles(filepath.Join(t.TempDir(), "missing", "prefix"), res); err == nil {
		t.Error("expected an error writing into a missing directory")
	}
}
