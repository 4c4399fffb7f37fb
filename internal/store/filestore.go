package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// Dataset file names within a state's directory. Tabular datasets may be
// supplied as .csv or .xlsx with the same columns.
const (
	populationBase = "population"
	electionBase   = "elections"
	geometryFile   = "districts.geojson"
)

// FileStore reads datasets from <dir>/<STATE>/ on the local filesystem.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFile creates a file-backed store rooted at dir.
func NewFile(dir string) *FileStore {
	return &FileStore{
		dir: dir,
		log: zap.L().With(zap.String("component", "store.file")),
	}
}

func (s *FileStore) PopulationRecords(_ context.Context, state string) ([]model.DistrictPopulation, error) {
	header, rows := s.readTable(state, populationBase)
	if header == nil {
		return nil, nil
	}

	di := columnIndex(header, "district")
	pi := columnIndex(header, "population")

	records := make([]model.DistrictPopulation, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.DistrictPopulation{
			District:   cell(row, di),
			Population: coerceInt(cell(row, pi)),
		})
	}
	return records, nil
}

func (s *FileStore) ElectionRecords(_ context.Context, state string) ([]model.DistrictVotes, error) {
	header, rows := s.readTable(state, electionBase)
	if header == nil {
		return nil, nil
	}

	di := columnIndex(header, "district")
	demi := columnIndex(header, "dem_votes")
	repi := columnIndex(header, "rep_votes")
	toti := columnIndex(header, "total_votes")

	records := make([]model.DistrictVotes, 0, len(rows))
	for _, row := range rows {
		rec := model.DistrictVotes{
			District: cell(row, di),
			DemVotes: coerceFloat(cell(row, demi)),
			RepVotes: coerceFloat(cell(row, repi)),
		}
		// total_votes is optional; derive it when the source omits it.
		if raw := cell(row, toti); raw != "" {
			rec.TotalVotes = coerceFloat(raw)
		} else {
			rec.TotalVotes = rec.DemVotes + rec.RepVotes
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) Geometry(_ context.Context, state string) (*model.GeometrySet, error) {
	path, ok := s.statePath(state, geometryFile)
	if !ok {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	// Decode the envelope first so one malformed feature can be skipped
	// without discarding its siblings.
	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("geometry document unparseable, treating dataset as absent",
			zap.String("state", state), zap.Error(err))
		return nil, nil
	}

	set := &model.GeometrySet{Shapes: make([]model.DistrictShape, 0, len(doc.Features))}
	for i, raw := range doc.Features {
		var f geojson.Feature
		if err := json.Unmarshal(raw, &f); err != nil {
			s.log.Debug("skipping malformed geometry feature",
				zap.String("state", state), zap.Int("feature", i), zap.Error(err))
			continue
		}
		if f.Geometry == nil {
			continue
		}
		set.Shapes = append(set.Shapes, model.DistrictShape{
			District: districtProperty(f.Properties),
			Geom:     f.Geometry,
		})
	}
	return set, nil
}

// districtProperty extracts the district id from a feature's properties,
// accepting both string and numeric encodings.
func districtProperty(props map[string]any) string {
	switch v := props["district"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// statePath resolves a dataset file under the state's directory. State codes
// are normalized to uppercase; anything that is not a bare code resolves to
// nothing rather than escaping the data root.
func (s *FileStore) statePath(state, name string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(state))
	if code == "" || strings.ContainsAny(code, "./\\") {
		return "", false
	}
	return filepath.Join(s.dir, code, name), true
}

// readTable loads a tabular dataset as a header row plus data rows, trying
// .csv then .xlsx. A missing or unreadable dataset returns a nil header.
func (s *FileStore) readTable(state, base string) ([]string, [][]string) {
	if path, ok := s.statePath(state, base+".csv"); ok {
		if rows := s.readCSV(path); rows != nil {
			return splitHeader(rows)
		}
	}
	if path, ok := s.statePath(state, base+".xlsx"); ok {
		if rows := s.readXLSX(path); rows != nil {
			return splitHeader(rows)
		}
	}
	return nil, nil
}

func splitHeader(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], rows[1:]
}

// readCSV returns all rows of a CSV file, or nil when the file is missing or
// unreadable. A row-level parse error ends the read but keeps the rows
// already parsed, so one bad row never aborts the dataset.
func (s *FileStore) readCSV(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.log.Warn("csv read stopped early", zap.String("path", path), zap.Error(err))
			break
		}
		rows = append(rows, record)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows
}

// readXLSX returns all rows of the first sheet, or nil when the file is
// missing or unreadable.
func (s *FileStore) readXLSX(path string) [][]string {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil
	}
	if len(f.Sheets) == 0 {
		return nil
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		rows = append(rows, cells)
	}
	return rows
}
