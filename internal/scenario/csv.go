// Package scenario reads and writes station and task tables and assembles
// simulation instances from a scenario config.
package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// ErrMalformedCSV reports a missing column or an unparsable cell.
var ErrMalformedCSV = errors.New("malformed csv")

var (
	stationHeader = []string{"station", "row", "col"}
	taskHeader    = []string{"station", "objects", "task_name", "points"}
)

// Station is a named workstation cell.
type Station struct {
	Name  string
	Coord core.Coord
}

// StationMap converts a station list into a lookup.
func StationMap(stations []Station) map[string]core.Coord {
	m := make(map[string]core.Coord, len(stations))
	for _, s := range stations {
		m[s.Name] = s.Coord
	}
	return m
}

// SortedStations lists a lookup in name order.
func SortedStations(m map[string]core.Coord) []Station {
	out := make([]Station, 0, len(m))
	for name, c := range m {
		out = append(out, Station{Name: name, Coord: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// columns maps header names to indices and checks the required ones exist.
func columns(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, r := range required {
		if _, ok := idx[r]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, r)
		}
	}
	return idx, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ReadStations parses a station,row,col table. Later rows override earlier
// rows with the same name; the returned list keeps first-seen order.
func ReadStations(r io.Reader) ([]Station, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedCSV, err)
	}
	idx, err := columns(header, stationHeader...)
	if err != nil {
		return nil, err
	}

	var out []Station
	pos := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}
		name := field(rec, idx, "station")
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty station name", ErrMalformedCSV, line)
		}
		row, err := strconv.Atoi(field(rec, idx, "row"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: row: %v", ErrMalformedCSV, line, err)
		}
		col, err := strconv.Atoi(field(rec, idx, "col"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: col: %v", ErrMalformedCSV, line, err)
		}

		s := Station{Name: name, Coord: core.Coord{Row: row, Col: col}}
		if i, ok := pos[name]; ok {
			out[i] = s
			continue
		}
		pos[name] = len(out)
		out = append(out, s)
	}
	return out, nil
}

// WriteStations writes a station,row,col table.
func WriteStations(w io.Writer, stations []Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationHeader); err != nil {
		return err
	}
	for _, s := range stations {
		rec := []string{s.Name, strconv.Itoa(s.Coord.Row), strconv.Itoa(s.Coord.Col)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTasks parses a station,objects,task_name[,points] table. Objects are a
// comma-separated list inside one cell. A missing or empty points cell is
// filled from sc, which must then be non-nil.
func ReadTasks(r io.Reader, sc *core.ScoringContext) ([]*core.Task, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedCSV, err)
	}
	idx, err := columns(header, "station", "objects", "task_name")
	if err != nil {
		return nil, err
	}

	var tasks []*core.Task
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		station := field(rec, idx, "station")
		name := field(rec, idx, "task_name")
		objects := splitObjects(field(rec, idx, "objects"))

		pts := field(rec, idx, "points")
		if pts == "" {
			if sc == nil {
				return nil, fmt.Errorf("%w: line %d: points missing", ErrMalformedCSV, line)
			}
			tasks = append(tasks, core.NewTaskAutoPoints(station, objects, name, sc))
			continue
		}
		points, err := strconv.Atoi(pts)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: points: %v", ErrMalformedCSV, line, err)
		}
		t, err := core.NewTask(station, objects, name, points)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func splitObjects(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WriteTasks writes a station,objects,task_name,points table.
func WriteTasks(w io.Writer, tasks []*core.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taskHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		rec := []string{t.Station, strings.Join(t.Objects, ","), t.Name, strconv.Itoa(t.Points)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadStations reads a station table from disk.
func LoadStations(path string) ([]Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stations: %w", err)
	}
	defer f.Close()
	stations, err := ReadStations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stations, nil
}

// LoadTasks reads a task table from disk.
func LoadTasks(path string, sc *core.ScoringContext) ([]*core.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks: %w", err)
	}
	defer f.Close()
	tasks, err := ReadTasks(f, sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// SaveStations writes a station table to disk.
func SaveStations(path string, stations []Station) error {
	return saveFile(path, func(w io.Writer) error { return WriteStations(w, stations) })
}

// SaveTasks writes a task table to disk.
func SaveTasks(path string, tasks []*core.Task) error {
	return saveFile(path, func(w io.Writer) error { return WriteTasks(w, tasks) })
}

func saveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
