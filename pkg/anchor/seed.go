package anchor

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/starmap/pkg/graph"
)

// placementRadiusFrac bounds the placement disk to a fraction of the smaller
// viewport dimension, keeping seeded anchors away from the edges.
const placementRadiusFrac = 0.35

// seedFor derives a deterministic PCG seed pair from an identity string.
// The same identity always produces the same generator, so repeat builds
// place an anchor at the same relative position.
func seedFor(identity string) (uint64, uint64) {
	sum := sha256.Sum256([]byte(identity))
	s1 := binary.BigEndian.Uint64(sum[0:8])
	s2 := binary.BigEndian.Uint64(sum[8:16])
	return s1, s2 ^ 0xdeadbeef
}

// seededPosition returns the deterministic starting position for an anchor
// identity: an angle and radius inside a fixed placement disk centered on
// the viewport.
func seededPosition(identity string, vp graph.Viewport) (x, y float64) {
	s1, s2 := seedFor(identity)
	rng := rand.New(rand.NewPCG(s1, s2))

	maxRadius := math.Min(vp.Width, vp.Height) * placementRadiusFrac
	angle := rng.Float64() * 2 * math.Pi
	radius := rng.Float64() * maxRadius

	return vp.CenterX() + math.Cos(angle)*radius, vp.CenterY() + math.Sin(angle)*radius
}

// palette holds the legend colors cycled per anchor identity.
var palette = []string{
	"#e06c75", "#61afef", "#98c379", "#c678dd",
	"#e5c07b", "#56b6c2", "#d19a66", "#abb2bf",
}

// colorFor picks a deterministic legend color for an anchor identity.
func colorFor(identity string) string {
	s1, _ := seedFor(identity)
	return palette[s1%uint64(len(palette))]
}
