package extract

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
)

// BoundingBox is a geographic bounding box that only ever widens.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// NewBoundingBox returns an empty box that any real point will widen.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		MinLon: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLon: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
}

// Extend widens the box to include p.
func (b *BoundingBox) Extend(p orb.Point) {
	b.MinLon = math.Min(b.MinLon, p.Lon())
	b.MinLat = math.Min(b.MinLat, p.Lat())
	b.MaxLon = math.Max(b.MaxLon, p.Lon())
	b.MaxLat = math.Max(b.MaxLat, p.Lat())
}

// Covers reports whether the box contains o entirely.
func (b BoundingBox) Covers(o BoundingBox) bool {
	return b.MinLon <= o.MinLon && b.MinLat <= o.MinLat &&
		b.MaxLon >= o.MaxLon && b.MaxLat >= o.MaxLat
}

// Aggregator accumulates accepted features and the running bounding box.
// Features are never removed once appended. Safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	features []NetworkFeature
	bounds   BoundingBox
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{bounds: NewBoundingBox()}
}

// Append adds accepted features and widens the bounding box with every
// vertex of each one.
func (a *Aggregator) Append(features ...NetworkFeature) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range features {
		for _, p := range f.Geometry {
			a.bounds.Extend(p)
		}
		a.features = append(a.features, f)
	}
}

// Features returns the accumulated features in append order.
func (a *Aggregator) Features() []NetworkFeature {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.features
}

// Bounds returns the current bounding box.
func (a *Aggregator) Bounds() BoundingBox {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bounds
}

// Count returns the number of accumulated features.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.features)
}
