package calculate

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/CandlePredictor/models"
)

func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price *= 1 + rng.NormFloat64()*0.01
		out[i] = price
	}
	return out
}

func generateTestCandles(n int, generator func(int) models.Candle) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
	}
	return candles
}

func countLeadingNaN(series []float64) int {
	n := 0
	for _, v := range series {
		if !math.IsNaN(v) {
			break
		}
		n++
	}
	return n
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{100, 102, 104, 103, 105}, 3)

	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 102.0, got[2], 1e-9)
	assert.InDelta(t, 103.0, got[3], 1e-9)
	assert.InDelta(t, 104.0, got[4], 1e-9)
}

func TestSMAPropagatesNaNInsideWindow(t *testing.T) {
	got := SMA([]float64{1, math.NaN(), 3, 4, 5}, 2)

	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
	assert.InDelta(t, 3.5, got[3], 1e-9)
}

func TestEMAAdjustedWeights(t *testing.T) {
	got := EMA([]float64{1, 2, 3}, 3)

	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.InDelta(t, 2.5/1.5, got[1], 1e-9)
	assert.InDelta(t, 4.25/1.75, got[2], 1e-9)
}

func TestEMASkipsLeadingNaN(t *testing.T) {
	got := EMA([]float64{math.NaN(), math.NaN(), 5, 5}, 4)

	assert.Equal(t, 2, countLeadingNaN(got))
	assert.InDelta(t, 5.0, got[3], 1e-9)
}

func TestRSI(t *testing.T) {
	t.Run("warm-up", func(t *testing.T) {
		got := RSI(randomWalk(60, 1), 14)
		assert.Equal(t, 13, countLeadingNaN(got))
	})

	t.Run("bounded", func(t *testing.T) {
		for seed := int64(1); seed <= 5; seed++ {
			for i, v := range RSI(randomWalk(300, seed), 14) {
				if math.IsNaN(v) {
					continue
				}
				assert.GreaterOrEqual(t, v, 0.0, "bar %d", i)
				assert.LessOrEqual(t, v, 100.0, "bar %d", i)
			}
		}
	})

	t.Run("only gains reads 100", func(t *testing.T) {
		series := make([]float64, 30)
		for i := range series {
			series[i] = 100 + float64(i)
		}
		got := RSI(series, 14)
		for i := 13; i < len(got); i++ {
			assert.Equal(t, 100.0, got[i])
		}
	})

	t.Run("only losses reads 0", func(t *testing.T) {
		series := make([]float64, 30)
		for i := range series {
			series[i] = 100 - float64(i)
		}
		got := RSI(series, 14)
		assert.InDelta(t, 0.0, got[29], 1e-9)
	})
}

func TestBollingerBandsOrdering(t *testing.T) {
	series := randomWalk(200, 7)
	for _, k := range []float64{0, 1, 2, 3.5} {
		upper, mid, lower := BollingerBands(series, 20, k)
		assert.Equal(t, 19, countLeadingNaN(mid))
		for i := 19; i < len(series); i++ {
			assert.GreaterOrEqual(t, upper[i], mid[i])
			assert.GreaterOrEqual(t, mid[i], lower[i])
		}
	}
}

func TestBollingerBandsSampleStdDev(t *testing.T) {
	upper, mid, lower := BollingerBands([]float64{1, 2, 3}, 3, 1)

	assert.InDelta(t, 2.0, mid[2], 1e-9)
	assert.InDelta(t, 3.0, upper[2], 1e-9)
	assert.InDelta(t, 1.0, lower[2], 1e-9)
}

func TestMACD(t *testing.T) {
	series := randomWalk(100, 3)
	line, signal, hist := MACD(series, 12, 26, 9)

	fast := EMA(series, 12)
	slow := EMA(series, 26)
	for i := range series {
		assert.InDelta(t, fast[i]-slow[i], line[i], 1e-12)
		assert.InDelta(t, line[i]-signal[i], hist[i], 1e-12)
	}
}

func TestStochastic(t *testing.T) {
	t.Run("flat range reads 50", func(t *testing.T) {
		flat := []float64{10, 10, 10, 10, 10, 10}
		k, d := Stochastic(flat, flat, flat, 3, 2)
		for i := 2; i < len(k); i++ {
			assert.Equal(t, 50.0, k[i])
		}
		assert.Equal(t, 50.0, d[5])
	})

	t.Run("bounded", func(t *testing.T) {
		closes := randomWalk(200, 11)
		high := make([]float64, len(closes))
		low := make([]float64, len(closes))
		for i, c := range closes {
			high[i] = c * 1.002
			low[i] = c * 0.998
		}
		k, d := Stochastic(high, low, closes, 14, 3)
		assert.Equal(t, 13, countLeadingNaN(k))
		assert.Equal(t, 15, countLeadingNaN(d))
		for i := 13; i < len(k); i++ {
			assert.GreaterOrEqual(t, k[i], 0.0)
			assert.LessOrEqual(t, k[i], 100.0)
		}
	})
}

func TestSupportResistance(t *testing.T) {
	got := SupportResistance([]float64{5, 5, 5, 1, 3}, 3)

	assert.Equal(t, 0.5, got[2])
	assert.InDelta(t, 0.0, got[3], 1e-9)
	assert.InDelta(t, 0.5, got[4], 1e-9)
}

func TestVolatility(t *testing.T) {
	got := Volatility(randomWalk(50, 5), 20)
	assert.Equal(t, 20, countLeadingNaN(got))
	for _, v := range got[20:] {
		assert.Greater(t, v, 0.0)
	}
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{0, 0, 5, 10, 0})

	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 0.0, got[1])
	assert.True(t, math.IsNaN(got[2]), "move away from zero is undefined")
	assert.InDelta(t, 1.0, got[3], 1e-9)
	assert.InDelta(t, -1.0, got[4], 1e-9)
}

func TestShift(t *testing.T) {
	got := Shift([]float64{1, 2, 3, 4}, 2)
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, []float64{1, 2}, got[2:])

	assert.Equal(t, 4, countLeadingNaN(Shift([]float64{1, 2, 3, 4}, -1)))
}

func TestWilliamsRAndATR(t *testing.T) {
	flat := []float64{10, 10, 10}
	assert.Equal(t, -50.0, WilliamsR(flat, flat, flat, 2)[2])

	atr := ATR([]float64{11, 12, 13}, []float64{9, 10, 11}, []float64{10, 11, 12}, 2)
	assert.True(t, math.IsNaN(atr[0]))
	assert.InDelta(t, 2.0, atr[2], 1e-9)
}

func TestOBV(t *testing.T) {
	got := OBV([]float64{10, 11, 11, 9}, []float64{100, 50, 70, 20})
	assert.Equal(t, []float64{100, 150, 150, 130}, got)
}

// Outputs at or before bar i must not change when a later input changes.
func TestNoLookAhead(t *testing.T) {
	base := randomWalk(120, 42)
	high := make([]float64, len(base))
	low := make([]float64, len(base))
	for i, c := range base {
		high[i] = c + 0.5
		low[i] = c - 0.5
	}

	indicators := map[string]func(close, high, low []float64) [][]float64{
		"sma": func(c, _, _ []float64) [][]float64 { return [][]float64{SMA(c, 20)} },
		"ema": func(c, _, _ []float64) [][]float64 { return [][]float64{EMA(c, 12)} },
		"rsi": func(c, _, _ []float64) [][]float64 { return [][]float64{RSI(c, 14)} },
		"bollinger": func(c, _, _ []float64) [][]float64 {
			u, m, l := BollingerBands(c, 20, 2)
			return [][]float64{u, m, l}
		},
		"macd": func(c, _, _ []float64) [][]float64 {
			line, sig, hist := MACD(c, 12, 26, 9)
			return [][]float64{line, sig, hist}
		},
		"stochastic": func(c, h, l []float64) [][]float64 {
			k, d := Stochastic(h, l, c, 14, 3)
			return [][]float64{k, d}
		},
		"volatility":         func(c, _, _ []float64) [][]float64 { return [][]float64{Volatility(c, 20)} },
		"support_resistance": func(c, _, _ []float64) [][]float64 { return [][]float64{SupportResistance(c, 20)} },
	}

	const perturbAt = 80
	for name, fn := range indicators {
		t.Run(name, func(t *testing.T) {
			before := fn(base, high, low)

			c := append([]float64(nil), base...)
			h := append([]float64(nil), high...)
			l := append([]float64(nil), low...)
			c[perturbAt] *= 1.5
			h[perturbAt] *= 1.5
			l[perturbAt] *= 0.5
			after := fn(c, h, l)

			for s := range before {
				for i := 0; i < perturbAt; i++ {
					if math.IsNaN(before[s][i]) {
						assert.True(t, math.IsNaN(after[s][i]), "output %d bar %d", s, i)
						continue
					}
					assert.Equal(t, before[s][i], after[s][i], "output %d bar %d", s, i)
				}
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := randomWalk(120, 9)
	candles := generateTestCandles(len(closes), func(i int) models.Candle {
		return models.Candle{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   closes[i],
			High:   closes[i] + 1,
			Low:    closes[i] - 1,
			Close:  closes[i],
			Volume: 1000 + float64(i),
		}
	})
	original := append([]models.Candle(nil), candles...)

	frame, err := Annotate(candles, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, original, candles, "input candles must not be modified")
	assert.Equal(t, len(candles), frame.Len())
	for _, col := range frame.Columns() {
		assert.Len(t, col.Values, len(candles), col.Name)
	}
	assert.Equal(t, 49, countLeadingNaN(frame.SMALong))
	assert.Equal(t, "sma_50", frame.Columns()[6].Name)
}

func TestAnnotateErrors(t *testing.T) {
	_, err := Annotate(nil, DefaultParams())
	assert.ErrorIs(t, err, models.ErrNoData)

	params := DefaultParams()
	params.SMALong = 10
	_, err = Annotate([]models.Candle{{Close: 1}}, params)
	assert.Error(t, err)
}

func TestReferenceLibrary(t *testing.T) {
	var lib Library = Reference{}
	closes := randomWalk(120, 3)

	sameSeries := func(want, got []float64) {
		t.Helper()
		require.Len(t, got, len(want))
		for i := range want {
			if math.IsNaN(want[i]) {
				assert.True(t, math.IsNaN(got[i]), "index %d", i)
				continue
			}
			assert.Equal(t, want[i], got[i], "index %d", i)
		}
	}

	line, signal, hist := lib.MACD(closes, 12, 26, 9)
	wantLine, wantSignal, wantHist := MACD(closes, 12, 26, 9)
	sameSeries(wantLine, line)
	sameSeries(wantSignal, signal)
	sameSeries(wantHist, hist)

	candles := generateTestCandles(len(closes), func(i int) models.Candle {
		c := closes[i]
		return models.Candle{Open: c, High: c * 1.001, Low: c * 0.999, Close: c, Volume: 1000}
	})
	frame, err := AnnotateWith(lib, candles, DefaultParams())
	require.NoError(t, err)
	sameSeries(wantHist, frame.MACDHist)
}
