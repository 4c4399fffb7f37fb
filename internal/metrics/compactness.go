package metrics

import (
	"math"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// MeanPolsbyPopper computes the mean Polsby-Popper compactness score
// (4*pi*Area / Perimeter^2) across a state's districts, rounded to three
// decimals. Area is planar shoelace area with hole rings subtracted;
// perimeter counts outer rings only. Districts whose perimeter is zero are
// excluded from the average. Returns nil when the geometry set is absent or
// no district yields a valid score.
func MeanPolsbyPopper(set *model.GeometrySet) *float64 {
	if set == nil {
		return nil
	}

	var sum float64
	var scored int
	for _, shape := range set.Shapes {
		area, perim := shapeMetrics(shape.Geom)
		if perim <= 0 {
			zap.L().Debug("metrics: district skipped for degenerate perimeter",
				zap.String("district", shape.District))
			continue
		}
		sum += 4 * math.Pi * area / (perim * perim)
		scored++
	}
	if scored == 0 {
		return nil
	}

	mean := round3(sum / float64(scored))
	return &mean
}

// shapeMetrics returns the planar area and outer-ring perimeter for a polygon
// or multipolygon. Unsupported geometry types score as zero.
func shapeMetrics(g geom.T) (area, perimeter float64) {
	switch s := g.(type) {
	case *geom.Polygon:
		return polygonMetrics(s)
	case *geom.MultiPolygon:
		for i := 0; i < s.NumPolygons(); i++ {
			a, p := polygonMetrics(s.Polygon(i))
			area += a
			perimeter += p
		}
		return area, perimeter
	default:
		return 0, 0
	}
}

func polygonMetrics(p *geom.Polygon) (area, perimeter float64) {
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		if i == 0 {
			area += math.Abs(shoelace(coords))
			perimeter = ringLength(coords)
		} else {
			area -= math.Abs(shoelace(coords))
		}
	}
	return area, perimeter
}

// shoelace returns the signed area of a ring. The ring may or may not repeat
// its first coordinate at the end; the wrap-around term makes both forms
// equivalent.
func shoelace(ring []geom.Coord) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

func ringLength(ring []geom.Coord) float64 {
	n := len(ring)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += math.Hypot(ring[j][0]-ring[i][0], ring[j][1]-ring[i][1])
	}
	return sum
}
