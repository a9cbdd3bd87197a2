package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dblueman/heatcanvas/internal/axis"
	"github.com/dblueman/heatcanvas/internal/grid"
)

// dataset is the JSON form of one grid. Axis values are numbers or
// RFC3339 timestamps; z values that are null or not numbers are missing.
type dataset struct {
	X []json.RawMessage   `json:"x"`
	Y []json.RawMessage   `json:"y"`
	Z [][]json.RawMessage `json:"z"`
}

// readDatasets decodes a single dataset object or an array of them.
func readDatasets(r io.Reader) ([]*grid.Grid, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	var sets []dataset
	if len(raw) > 0 && raw[0] == '[' {
		err = json.Unmarshal(raw, &sets)
	} else {
		var d dataset
		err = json.Unmarshal(raw, &d)
		sets = []dataset{d}
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}

	grids := make([]*grid.Grid, 0, len(sets))
	for i, d := range sets {
		g, err := d.grid()
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		grids = append(grids, g)
	}
	return grids, nil
}

// loadDatasets reads every file in paths, or stdin when paths is empty
// or "-".
func loadDatasets(paths []string, stdin io.Reader) ([]*grid.Grid, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var out []*grid.Grid
	for _, p := range paths {
		var r io.Reader = stdin
		if p != "-" {
			f, err := os.Open(p)
			if err != nil {
				return nil, fmt.Errorf("dataset: %w", err)
			}
			defer f.Close()
			r = f
		}
		grids, err := readDatasets(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, grids...)
	}
	return out, nil
}

func (d dataset) grid() (*grid.Grid, error) {
	switch {
	case d.X == nil:
		return nil, fmt.Errorf("%w: x is missing", grid.ErrInvalidGrid)
	case d.Y == nil:
		return nil, fmt.Errorf("%w: y is missing", grid.ErrInvalidGrid)
	case d.Z == nil:
		return nil, fmt.Errorf("%w: z is missing", grid.ErrInvalidGrid)
	}

	x, xTime, err := axisValues("x", d.X)
	if err != nil {
		return nil, err
	}
	y, yTime, err := axisValues("y", d.Y)
	if err != nil {
		return nil, err
	}

	z := make([][]float64, len(d.Z))
	for r, row := range d.Z {
		z[r] = make([]float64, len(row))
		for c, v := range row {
			z[r][c] = sample(v)
		}
	}

	g, err := grid.New(x, y, z)
	if err != nil {
		return nil, err
	}
	g.XTime, g.YTime = xTime, yTime
	return g, nil
}

// axisValues decodes coordinates that are either all numbers or all
// RFC3339 timestamps. Timestamps become Unix seconds.
func axisValues(name string, raw []json.RawMessage) ([]float64, bool, error) {
	out := make([]float64, len(raw))
	var numbers, times int
	for i, m := range raw {
		if isNull(m) {
			return nil, false, fmt.Errorf("%w: %s[%d] is null", grid.ErrInvalidGrid, name, i)
		}
		var f float64
		if err := json.Unmarshal(m, &f); err == nil {
			out[i] = f
			numbers++
			continue
		}
		var s string
		if err := json.Unmarshal(m, &s); err != nil {
			return nil, false, fmt.Errorf("%w: %s[%d] is neither a number nor a timestamp", grid.ErrInvalidGrid, name, i)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s[%d]: %v", grid.ErrInvalidGrid, name, i, err)
		}
		out[i] = axis.TimeValue(t)
		times++
	}
	if numbers > 0 && times > 0 {
		return nil, false, fmt.Errorf("%w: %s mixes numbers and timestamps", grid.ErrInvalidGrid, name)
	}
	return out, times > 0, nil
}

func sample(m json.RawMessage) float64 {
	var f float64
	if isNull(m) || json.Unmarshal(m, &f) != nil {
		return grid.Missing
	}
	return f
}

func isNull(m json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}
