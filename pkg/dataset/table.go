package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
)

// Columns names the input columns. ID and Region are optional.
type Columns struct {
	Lon    string
	Lat    string
	ID     string
	Region string
}

// Table is a CSV file kept verbatim so it can be written back with extra
// columns, plus the coordinates of its usable rows.
type Table struct {
	Header  []string
	Records [][]string

	// Coords has one entry per row with a valid lon/lat; Coordinate.Row
	// indexes Records.
	Coords  []geo.Coordinate
	Dropped int
}

func ReadTable(path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, util.WrapErrorf(err, util.ErrNotFound, "input file %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return Read(f, cols)
}

func Read(r io.Reader, cols Columns) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "empty csv file")
		}
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	lonIdx := indexOf(header, cols.Lon)
	latIdx := indexOf(header, cols.Lat)
	if lonIdx < 0 || latIdx < 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "csv must have columns %q and %q, got %v",
			cols.Lon, cols.Lat, header)
	}
	idIdx := indexOf(header, cols.ID)
	regionIdx := indexOf(header, cols.Region)

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := len(t.Records)
		t.Records = append(t.Records, rec)

		lon, okLon := parseFloat(field(rec, lonIdx))
		lat, okLat := parseFloat(field(rec, latIdx))
		c := geo.NewCoordinate(lon, lat)
		if !okLon || !okLat || !c.Valid() {
			t.Dropped++
			continue
		}

		c.Row = row
		c.ID = strconv.Itoa(row)
		if id := field(rec, idIdx); id != "" {
			c.ID = id
		}
		c.Region = field(rec, regionIdx)
		t.Coords = append(t.Coords, c)
	}
	return t, nil
}

// HasColumn reports whether the input had the named column.
func (t *Table) HasColumn(name string) bool {
	return indexOf(t.Header, name) >= 0
}

// AppendColumn adds a column with one value per record.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Records) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.Records))
	}
	t.Header = append(t.Header, name)
	for i := range t.Records {
		t.Records[i] = append(t.Records[i], values[i])
	}
	return nil
}

func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return err
	}
	return cw.Error()
}

func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type Region struct {
	Name   string
	Coords []geo.Coordinate
}

// GroupByRegion splits coords by their region, sorted by name. Coordinates
// without a region are left out.
func GroupByRegion(coords []geo.Coordinate) []Region {
	byName := make(map[string][]geo.Coordinate)
	for _, c := range coords {
		if c.Region == "" {
			continue
		}
		byName[c.Region] = append(byName[c.Region], c)
	}

	regions := make([]Region, 0, len(byName))
	for name, cs := range byName {
		regions = append(regions, Region{Name: name, Coords: cs})
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Name < regions[j].Name
	})
	return regions
}

// FilterRegion returns the coordinates of one region, in input order.
func FilterRegion(coords []geo.Coordinate, name string) []geo.Coordinate {
	var out []geo.Coordinate
	for _, c := range coords {
		if c.Region == name {
			out = append(out, c)
		}
	}
	return out
}

// FormatMinutes renders a duration the way it is stored in output CSVs.
func FormatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func indexOf(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
