package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/turismolocal/poiscan/internal/model"
)

// Grid tiles the bounding box into zones of fixed radius, stepping stepDeg
// in both axes. Step counts are computed up front as integers; the loops
// never accumulate floats, so the max edge is always reached and the loop
// always terminates. Both edges are inclusive.
func Grid(bound orb.Bound, stepDeg float64, radiusMeters int) []model.Zone {
	latSteps := inclusiveSteps(bound.Max.Lat()-bound.Min.Lat(), stepDeg)
	lngSteps := inclusiveSteps(bound.Max.Lon()-bound.Min.Lon(), stepDeg)

	zones := make([]model.Zone, 0, latSteps*lngSteps)
	n := 1
	for i := 0; i < latSteps; i++ {
		lat := bound.Min.Lat() + float64(i)*stepDeg
		for j := 0; j < lngSteps; j++ {
			lng := bound.Min.Lon() + float64(j)*stepDeg
			zones = append(zones, model.Zone{
				Lat:          lat,
				Lng:          lng,
				Name:         fmt.Sprintf("Grid-%d", n),
				RadiusMeters: radiusMeters,
			})
			n++
		}
	}
	return zones
}

// inclusiveSteps counts stride positions from 0 through span by step.
// The epsilon absorbs float error when span divides evenly by step.
func inclusiveSteps(span, step float64) int {
	if span < 0 || step <= 0 {
		return 0
	}
	return int(math.Floor(span/step+1e-9)) + 1
}

// Zones returns the full scan set for the area: the uniform grid first,
// then the curated zones whose centers fall inside the bound. Overlap
// between grid and curated zones is deliberate; duplicate businesses are
// removed downstream by external-ID dedup.
func Zones(bound orb.Bound, stepDeg float64, radiusMeters int) []model.Zone {
	zones := Grid(bound, stepDeg, radiusMeters)
	for _, z := range CuratedZones() {
		if !bound.Contains(orb.Point{z.Lng, z.Lat}) {
			continue
		}
		zones = append(zones, z)
	}
	return zones
}

// Covers reports whether a point lies within the zone's search radius.
func Covers(z model.Zone, lat, lng float64) bool {
	d := orbgeo.Distance(orb.Point{z.Lng, z.Lat}, orb.Point{lng, lat})
	return d <= float64(z.RadiusMeters)
}
