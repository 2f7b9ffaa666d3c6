package features

import (
	"errors"
	"fmt"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
)

// SchemaVersion identifies the field layout produced by NewSchema.
const SchemaVersion = "v1"

var (
	lagSteps       = []int{1, 2, 3, 5}
	rollingWindows = []int{5, 10, 20}
)

// ErrSchemaMismatch means a feature row was built with a different layout
// than the one a model was fitted on.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// field is one named feature column. lead is the number of leading bars for
// which the column is undefined on a gap-free series.
type field struct {
	name   string
	lead   int
	column func(f *calculate.Frame) []float64
}

// Schema is the ordered feature layout together with the indicator
// parameters the columns were computed with.
type Schema struct {
	Version string           `json:"version"`
	Params  calculate.Params `json:"params"`
	Fields  []string         `json:"fields"`

	fields []field
}

// NewSchema builds the v1 layout for the given indicator parameters.
// Training and inference both go through here, so the column order cannot drift.
func NewSchema(p calculate.Params) Schema {
	fs := []field{
		{"close", 0, func(f *calculate.Frame) []float64 { return f.Close }},
		{"volume", 0, func(f *calculate.Frame) []float64 { return f.Volume }},
		{"high_low_ratio", 0, func(f *calculate.Frame) []float64 { return ratio(f.High, f.Low) }},
		{"price_change", 1, func(f *calculate.Frame) []float64 { return f.PriceChange }},
		{"volume_change", 1, func(f *calculate.Frame) []float64 { return calculate.PctChange(f.Volume) }},
		{fmt.Sprintf("sma_%d", p.SMAShort), p.SMAShort - 1, func(f *calculate.Frame) []float64 { return f.SMAShort }},
		{fmt.Sprintf("sma_%d", p.SMALong), p.SMALong - 1, func(f *calculate.Frame) []float64 { return f.SMALong }},
		{fmt.Sprintf("ema_%d", p.EMAFast), 0, func(f *calculate.Frame) []float64 { return f.EMAFast }},
		{fmt.Sprintf("ema_%d", p.EMASlow), 0, func(f *calculate.Frame) []float64 { return f.EMASlow }},
		{"macd", 0, func(f *calculate.Frame) []float64 { return f.MACD }},
		{"macd_signal", 0, func(f *calculate.Frame) []float64 { return f.MACDSignal }},
		{"macd_histogram", 0, func(f *calculate.Frame) []float64 { return f.MACDHist }},
		{"rsi", p.RSIPeriod - 1, func(f *calculate.Frame) []float64 { return f.RSI }},
		{"bb_upper", p.BBPeriod - 1, func(f *calculate.Frame) []float64 { return f.BBUpper }},
		{"bb_middle", p.BBPeriod - 1, func(f *calculate.Frame) []float64 { return f.BBMiddle }},
		{"bb_lower", p.BBPeriod - 1, func(f *calculate.Frame) []float64 { return f.BBLower }},
		{"bb_position", p.BBPeriod - 1, func(f *calculate.Frame) []float64 {
			return calculate.BandPosition(f.Close, f.BBUpper, f.BBLower)
		}},
		{"stoch_k", p.StochKPeriod - 1, func(f *calculate.Frame) []float64 { return f.StochK }},
		{"stoch_d", p.StochKPeriod + p.StochDPeriod - 2, func(f *calculate.Frame) []float64 { return f.StochD }},
		{"volume_sma", p.VolumeSMAPeriod - 1, func(f *calculate.Frame) []float64 { return f.VolumeSMA }},
		{"volatility", p.VolatilityPeriod, func(f *calculate.Frame) []float64 { return f.Volatility }},
		{"support_resistance", p.SupportResistance - 1, func(f *calculate.Frame) []float64 { return f.SupportResistance }},
	}

	for _, lag := range lagSteps {
		fs = append(fs,
			field{fmt.Sprintf("close_lag_%d", lag), lag, func(f *calculate.Frame) []float64 { return calculate.Shift(f.Close, lag) }},
			field{fmt.Sprintf("volume_lag_%d", lag), lag, func(f *calculate.Frame) []float64 { return calculate.Shift(f.Volume, lag) }},
			field{fmt.Sprintf("rsi_lag_%d", lag), p.RSIPeriod - 1 + lag, func(f *calculate.Frame) []float64 { return calculate.Shift(f.RSI, lag) }},
		)
	}

	for _, w := range rollingWindows {
		fs = append(fs,
			field{fmt.Sprintf("close_mean_%d", w), w - 1, func(f *calculate.Frame) []float64 { return calculate.SMA(f.Close, w) }},
			field{fmt.Sprintf("close_std_%d", w), w - 1, func(f *calculate.Frame) []float64 { return calculate.RollingStd(f.Close, w) }},
			field{fmt.Sprintf("volume_mean_%d", w), w - 1, func(f *calculate.Frame) []float64 { return calculate.SMA(f.Volume, w) }},
			field{fmt.Sprintf("volume_std_%d", w), w - 1, func(f *calculate.Frame) []float64 { return calculate.RollingStd(f.Volume, w) }},
		)
	}

	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}

	return Schema{
		Version: SchemaVersion,
		Params:  p,
		Fields:  names,
		fields:  fs,
	}
}

// Len returns the number of features per row
func (s Schema) Len() int { return len(s.Fields) }

// WarmUp is the number of leading bars without a complete feature row
func (s Schema) WarmUp() int {
	warmUp := 0
	for _, f := range s.fields {
		if f.lead > warmUp {
			warmUp = f.lead
		}
	}
	return warmUp
}

// featureParams drops the periods of indicators that only feed presentation
func featureParams(p calculate.Params) calculate.Params {
	p.ATRPeriod = 0
	p.WilliamsRPeriod = 0
	return p
}

// Equal reports whether both schemas describe the same columns in the same order
// computed with the same periods
func (s Schema) Equal(other Schema) bool {
	if s.Version != other.Version || featureParams(s.Params) != featureParams(other.Params) || len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Check returns ErrSchemaMismatch when other differs from s
func (s Schema) Check(other Schema) error {
	if s.Equal(other) {
		return nil
	}
	return fmt.Errorf("%w: %s/%d fields vs %s/%d fields", ErrSchemaMismatch,
		s.Version, len(s.Fields), other.Version, len(other.Fields))
}

// Columns computes every feature column for the frame, NaN where undefined
func (s Schema) Columns(frame *calculate.Frame) []calculate.Column {
	cols := make([]calculate.Column, len(s.fields))
	for i, f := range s.fields {
		cols[i] = calculate.Column{Name: f.name, Values: f.column(frame)}
	}
	return cols
}

func ratio(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		if den[i] == 0 {
			out[i] = nan
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}
