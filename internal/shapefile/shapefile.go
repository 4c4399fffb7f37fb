// Package shapefile reads district boundaries from ESRI shapefiles (the
// format Census TIGER district exports ship in) and converts them to go-geom
// multipolygons for the import pipeline.
package shapefile

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// Districts reads a polygon shapefile and returns one shape per record,
// keyed by the named attribute field. Records with a missing key or an
// unconvertible shape are skipped; an unreadable file or a missing field is
// an error.
func Districts(path, field string) ([]model.DistrictShape, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: open")
	}
	defer func() { _ = reader.Close() }()

	idx := fieldIndex(reader, field)
	if idx < 0 {
		return nil, eris.Errorf("shapefile: field %q not found", field)
	}

	log := zap.L().With(zap.String("component", "shapefile"), zap.String("path", path))

	var shapes []model.DistrictShape
	for reader.Next() {
		n, shape := reader.Shape()
		district := strings.TrimSpace(reader.Attribute(idx))
		if district == "" {
			log.Debug("skipping record without district id", zap.Int("record", n))
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			log.Debug("skipping non-polygon record",
				zap.Int("record", n), zap.String("district", district))
			continue
		}
		g := toMultiPolygon(poly)
		if g == nil {
			log.Debug("skipping empty polygon record",
				zap.Int("record", n), zap.String("district", district))
			continue
		}
		shapes = append(shapes, model.DistrictShape{District: district, Geom: g})
	}

	return shapes, nil
}

// toMultiPolygon converts a shapefile polygon to a geom.MultiPolygon. Each
// part becomes a single-ring polygon, the common layout of TIGER district
// files; ring/hole grouping is not reconstructed.
func toMultiPolygon(p *shp.Polygon) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		ring := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}

		poly := geom.NewPolygon(geom.XY)
		if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// fieldIndex returns the index of a named field in the shapefile, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
