package features

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/models"
)

// MinRows is the smallest labelled table worth training on or trusting
const MinRows = 50

// ErrInsufficientData is returned when fewer than MinRows complete rows remain
var ErrInsufficientData = errors.New("insufficient history")

var nan = math.NaN()

// Dataset is the aligned feature table for one annotated series.
//
// X/Y/Times hold every complete row that has a next bar to label it. The final
// bar never has a label; its features go to Latest when they are complete.
type Dataset struct {
	Schema Schema

	X     [][]float64
	Y     []int
	Times []time.Time

	Latest     []float64
	LatestTime time.Time
}

// Rows returns the number of labelled rows
func (d *Dataset) Rows() int { return len(d.X) }

// Build assembles the feature table and next-bar targets for frame.
// Rows holding any undefined value are dropped.
func Build(frame *calculate.Frame) (*Dataset, error) {
	if frame == nil || frame.Len() == 0 {
		return nil, models.ErrNoData
	}

	schema := NewSchema(frame.Params)
	cols := schema.Columns(frame)
	n := frame.Len()

	ds := &Dataset{Schema: schema}
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		complete := true
		for j, c := range cols {
			v := c.Values[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				complete = false
				break
			}
			row[j] = v
		}
		if !complete {
			continue
		}

		if i == n-1 {
			ds.Latest = row
			ds.LatestTime = frame.Candles[i].Time
			continue
		}

		target := 0
		if frame.Close[i+1] > frame.Close[i] {
			target = 1
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, target)
		ds.Times = append(ds.Times, frame.Candles[i].Time)
	}

	if len(ds.X) < MinRows {
		return nil, fmt.Errorf("%w: %d complete rows of %d bars, need %d", ErrInsufficientData, len(ds.X), n, MinRows)
	}

	return ds, nil
}
