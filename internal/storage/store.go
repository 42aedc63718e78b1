package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/san-kum/sway/internal/sim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Rig       string             `json:"rig"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	FrameRate float64            `json:"frame_rate"`
	Duration  float64            `json:"duration"`
	Stabilize bool               `json:"stabilize"`
	Gravity   Vec2               `json:"gravity"`
	Wind      Vec2               `json:"wind"`
	SubRigs   []string           `json:"sub_rigs,omitempty"`
	Frames    int                `json:"frames"`
	Ticks     int                `json:"ticks"`
	Columns   []string           `json:"columns"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Trace is the recorded time series of a run.
type Trace struct {
	Times   []float64
	Columns []string
	Samples [][]float64
}

// Series returns one column of the trace, or nil.
func (t *Trace) Series(column string) []float64 {
	for c, name := range t.Columns {
		if name != column {
			continue
		}
		out := make([]float64, len(t.Samples))
		for i, row := range t.Samples {
			if c < len(row) {
				out[i] = row[c]
			}
		}
		return out
	}
	return nil
}

func runName(rig string) string {
	name := filepath.Base(strings.TrimPrefix(rig, "builtin:"))
	name = strings.TrimSuffix(name, ".json")
	name = strings.TrimSuffix(name, ".physics3")
	if name == "" || name == "." {
		name = "run"
	}
	return name
}

func (s *Store) newRunDir(rig string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", runName(rig), ts.Unix())
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// Save writes meta and the result trace into a new run directory and
// returns the run id. ID, Timestamp, Frames, Ticks, Columns and Metrics
// are taken from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	meta.Timestamp = s.now()
	runID, runDir, err := s.newRunDir(meta.Rig, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Frames = result.Frames
	meta.Ticks = result.Ticks
	meta.Columns = result.Columns
	meta.Metrics = result.Metrics

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	trace := Trace{Times: result.Times, Columns: result.Columns, Samples: make([][]float64, len(result.Samples))}
	for i, x := range result.Samples {
		trace.Samples[i] = x
	}
	if err := WriteCSV(f, &trace); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a trace as a header of "time" plus the columns, then one
// row per sample.
func WriteCSV(out io.Writer, trace *Trace) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, trace.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range trace.Samples {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, formatFloat(trace.Times[i]))
		for _, v := range row {
			rec = append(rec, formatFloat(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a trace written by WriteCSV.
func ReadCSV(in io.Reader) (*Trace, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Trace{}, nil
	}

	trace := &Trace{
		Columns: append([]string(nil), records[0][1:]...),
		Times:   make([]float64, 0, len(records)-1),
		Samples: make([][]float64, 0, len(records)-1),
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		row := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			row[j-1] = v
		}
		trace.Times = append(trace.Times, t)
		trace.Samples = append(trace.Samples, row)
	}
	return trace, nil
}
