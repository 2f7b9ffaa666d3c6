package calculate

import (
	"fmt"

	"github.com/Alias1177/CandlePredictor/models"
)

// Library is the set of windowed transforms the annotator relies on.
// Reference is the only implementation.
type Library interface {
	SMA(series []float64, window int) []float64
	EMA(series []float64, span int) []float64
	RSI(series []float64, window int) []float64
	BollingerBands(series []float64, window int, k float64) (upper, mid, lower []float64)
	MACD(series []float64, fast, slow, signalPeriod int) (line, signal, hist []float64)
	Stochastic(high, low, close []float64, kWindow, dWindow int) (k, d []float64)
	Volatility(close []float64, window int) []float64
	SupportResistance(close []float64, window int) []float64
}

// Reference implements Library with the functions of this package
type Reference struct{}

var _ Library = Reference{}

func (Reference) SMA(series []float64, window int) []float64 { return SMA(series, window) }
func (Reference) EMA(series []float64, span int) []float64   { return EMA(series, span) }
func (Reference) RSI(series []float64, window int) []float64 { return RSI(series, window) }

func (Reference) BollingerBands(series []float64, window int, k float64) ([]float64, []float64, []float64) {
	return BollingerBands(series, window, k)
}

func (Reference) MACD(series []float64, fast, slow, signal int) ([]float64, []float64, []float64) {
	return MACD(series, fast, slow, signal)
}

func (Reference) Stochastic(high, low, close []float64, kWindow, dWindow int) ([]float64, []float64) {
	return Stochastic(high, low, close, kWindow, dWindow)
}

func (Reference) Volatility(close []float64, window int) []float64 { return Volatility(close, window) }

func (Reference) SupportResistance(close []float64, window int) []float64 {
	return SupportResistance(close, window)
}

// Frame is a candle series annotated with indicator columns.
// Every column has one value per candle; warm-up positions are NaN.
type Frame struct {
	Candles []models.Candle
	Params  Params

	Open, High, Low, Close, Volume []float64

	SMAShort, SMALong []float64
	EMAFast, EMASlow  []float64

	MACD, MACDSignal, MACDHist []float64
	RSI                        []float64

	BBUpper, BBMiddle, BBLower []float64

	StochK, StochD []float64

	VolumeSMA         []float64
	PriceChange       []float64
	Volatility        []float64
	SupportResistance []float64

	ATR, OBV, WilliamsR []float64
}

// Len returns the number of bars
func (f *Frame) Len() int { return len(f.Candles) }

// Column is a named indicator series
type Column struct {
	Name   string
	Values []float64
}

// Columns lists the frame's series in a stable order for presentation
func (f *Frame) Columns() []Column {
	p := f.Params
	return []Column{
		{"open", f.Open},
		{"high", f.High},
		{"low", f.Low},
		{"close", f.Close},
		{"volume", f.Volume},
		{fmt.Sprintf("sma_%d", p.SMAShort), f.SMAShort},
		{fmt.Sprintf("sma_%d", p.SMALong), f.SMALong},
		{fmt.Sprintf("ema_%d", p.EMAFast), f.EMAFast},
		{fmt.Sprintf("ema_%d", p.EMASlow), f.EMASlow},
		{"macd", f.MACD},
		{"macd_signal", f.MACDSignal},
		{"macd_histogram", f.MACDHist},
		{"rsi", f.RSI},
		{"bb_upper", f.BBUpper},
		{"bb_middle", f.BBMiddle},
		{"bb_lower", f.BBLower},
		{"stoch_k", f.StochK},
		{"stoch_d", f.StochD},
		{"volume_sma", f.VolumeSMA},
		{"price_change", f.PriceChange},
		{"volatility", f.Volatility},
		{"support_resistance", f.SupportResistance},
		{"atr", f.ATR},
		{"obv", f.OBV},
		{"williams_r", f.WilliamsR},
	}
}

// Annotate calculates all indicators for the series with the reference library
func Annotate(candles []models.Candle, params Params) (*Frame, error) {
	return AnnotateWith(Reference{}, candles, params)
}

// AnnotateWith calculates all indicators for the series. Input candles are
// copied; the caller's slice is never modified.
func AnnotateWith(lib Library, candles []models.Candle, params Params) (*Frame, error) {
	if len(candles) == 0 {
		return nil, models.ErrNoData
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := len(candles)
	f := &Frame{
		Candles: append([]models.Candle(nil), candles...),
		Params:  params,
		Open:    make([]float64, n),
		High:    make([]float64, n),
		Low:     make([]float64, n),
		Close:   make([]float64, n),
		Volume:  make([]float64, n),
	}
	for i, c := range candles {
		f.Open[i] = c.Open
		f.High[i] = c.High
		f.Low[i] = c.Low
		f.Close[i] = c.Close
		f.Volume[i] = c.Volume
	}

	f.SMAShort = lib.SMA(f.Close, params.SMAShort)
	f.SMALong = lib.SMA(f.Close, params.SMALong)
	f.EMAFast = lib.EMA(f.Close, params.EMAFast)
	f.EMASlow = lib.EMA(f.Close, params.EMASlow)
	f.MACD, f.MACDSignal, f.MACDHist = lib.MACD(f.Close, params.MACDFastPeriod, params.MACDSlowPeriod, params.MACDSignalPeriod)
	f.RSI = lib.RSI(f.Close, params.RSIPeriod)
	f.BBUpper, f.BBMiddle, f.BBLower = lib.BollingerBands(f.Close, params.BBPeriod, params.BBStdDev)
	f.StochK, f.StochD = lib.Stochastic(f.High, f.Low, f.Close, params.StochKPeriod, params.StochDPeriod)
	f.VolumeSMA = lib.SMA(f.Volume, params.VolumeSMAPeriod)
	f.PriceChange = PctChange(f.Close)
	f.Volatility = lib.Volatility(f.Close, params.VolatilityPeriod)
	f.SupportResistance = lib.SupportResistance(f.Close, params.SupportResistance)

	f.ATR = ATR(f.High, f.Low, f.Close, params.ATRPeriod)
	f.OBV = OBV(f.Close, f.Volume)
	f.WilliamsR = WilliamsR(f.High, f.Low, f.Close, params.WilliamsRPeriod)

	return f, nil
}
