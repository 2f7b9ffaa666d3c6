package calculate

// MACD returns the MACD line, its signal line and the histogram
func MACD(series []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, hist []float64) {
	fast := EMA(series, fastPeriod)
	slow := EMA(series, slowPeriod)

	line = nanSeries(len(series))
	for i := range series {
		line[i] = fast[i] - slow[i]
	}

	signal = EMA(line, signalPeriod)

	hist = nanSeries(len(series))
	for i := range series {
		hist[i] = line[i] - signal[i]
	}

	return line, signal, hist
}
