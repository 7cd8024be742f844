package geo

import (
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBound(latMin, lngMin, latMax, lngMax float64) orb.Bound {
	return orb.Bound{Min: orb.Point{lngMin, latMin}, Max: orb.Point{lngMax, latMax}}
}

func TestGridCoversBound(t *testing.T) {
	bound := testBound(19.0, -99.4, 19.5, -99.0)
	zones := Grid(bound, 0.05, 3000)

	require.NotEmpty(t, zones)
	const eps = 1e-9
	for _, z := range zones {
		assert.GreaterOrEqual(t, z.Lat, 19.0-eps)
		assert.LessOrEqual(t, z.Lat, 19.5+eps)
		assert.GreaterOrEqual(t, z.Lng, -99.4-eps)
		assert.LessOrEqual(t, z.Lng, -99.0+eps)
		assert.Equal(t, 3000, z.RadiusMeters)
	}
}

func TestGridCount(t *testing.T) {
	bound := testBound(19.0, -99.4, 19.5, -99.0)
	step := 0.05
	zones := Grid(bound, step, 3000)

	// Both edges inclusive: one extra stride position per axis over ceil.
	expectRows := int(math.Ceil(0.5 / step))
	expectCols := int(math.Ceil(0.4 / step))
	got := len(zones)
	assert.GreaterOrEqual(t, got, expectRows*expectCols)
	assert.LessOrEqual(t, got, (expectRows+1)*(expectCols+1))
}

func TestGridSequentialNames(t *testing.T) {
	zones := Grid(testBound(19.0, -99.2, 19.1, -99.1), 0.05, 3000)
	for i, z := range zones {
		assert.Equal(t, fmt.Sprintf("Grid-%d", i+1), z.Name)
	}
}

func TestGridUnevenStepTerminates(t *testing.T) {
	// 0.5 / 0.03 does not divide evenly; the integer stride must still
	// stop at the max edge.
	zones := Grid(testBound(19.0, -99.1, 19.5, -99.0), 0.03, 3000)
	require.NotEmpty(t, zones)
	last := zones[len(zones)-1]
	assert.LessOrEqual(t, last.Lat, 19.5+1e-9)
}

func TestZonesAppendsCuratedAfterGrid(t *testing.T) {
	bound := testBound(19.0, -99.4, 19.7, -98.9) // covers all curated zones
	grid := Grid(bound, 0.05, 3000)
	zones := Zones(bound, 0.05, 3000)

	curated := CuratedZones()
	require.Len(t, zones, len(grid)+len(curated))
	assert.Equal(t, curated[0].Name, zones[len(grid)].Name)
	assert.Equal(t, curated[len(curated)-1].Name, zones[len(zones)-1].Name)
}

func TestZonesSkipsCuratedOutsideBound(t *testing.T) {
	// Tight box around the historic center only.
	bound := testBound(19.42, -99.15, 19.45, -99.12)
	zones := Zones(bound, 0.05, 3000)

	names := make(map[string]bool)
	for _, z := range zones {
		names[z.Name] = true
	}
	assert.True(t, names["Centro Histórico"])
	assert.False(t, names["Estadio Azteca"])
}

func TestCovers(t *testing.T) {
	var azteca, centro = CuratedZones()[1], CuratedZones()[0]
	require.Equal(t, "Estadio Azteca", azteca.Name)

	assert.True(t, Covers(azteca, azteca.Lat, azteca.Lng))
	assert.False(t, Covers(azteca, centro.Lat, centro.Lng))
}
