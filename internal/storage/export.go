package storage

import (
	"io"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Steps   int         `json:"steps"`
	Times   []float64   `json:"times"`
	Columns []string    `json:"columns"`
	Samples [][]float64 `json:"samples"`
}

// ExportJSON writes a run and its trace as one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, trace *Trace) error {
	data := ExportData{
		Run:     *meta,
		Steps:   len(trace.Times),
		Times:   trace.Times,
		Columns: trace.Columns,
		Samples: trace.Samples,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
