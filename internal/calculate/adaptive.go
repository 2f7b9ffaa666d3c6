package calculate

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Params holds the indicator periods. They are configuration: the feature
// schema records them, so a model is only ever applied to features computed
// with the same values.
type Params struct {
	SMAShort          int     `yaml:"sma_short" default:"20" validate:"min=2"`
	SMALong           int     `yaml:"sma_long" default:"50" validate:"min=2,gtfield=SMAShort"`
	EMAFast           int     `yaml:"ema_fast" default:"12" validate:"min=1"`
	EMASlow           int     `yaml:"ema_slow" default:"26" validate:"min=1,gtfield=EMAFast"`
	RSIPeriod         int     `yaml:"rsi_period" default:"14" validate:"min=2"`
	MACDFastPeriod    int     `yaml:"macd_fast" default:"12" validate:"min=1"`
	MACDSlowPeriod    int     `yaml:"macd_slow" default:"26" validate:"min=1,gtfield=MACDFastPeriod"`
	MACDSignalPeriod  int     `yaml:"macd_signal" default:"9" validate:"min=1"`
	BBPeriod          int     `yaml:"bb_period" default:"20" validate:"min=2"`
	BBStdDev          float64 `yaml:"bb_std_dev" default:"2" validate:"gte=0"`
	StochKPeriod      int     `yaml:"stoch_k" default:"14" validate:"min=1"`
	StochDPeriod      int     `yaml:"stoch_d" default:"3" validate:"min=1"`
	VolumeSMAPeriod   int     `yaml:"volume_sma" default:"20" validate:"min=1"`
	VolatilityPeriod  int     `yaml:"volatility_period" default:"20" validate:"min=2"`
	SupportResistance int     `yaml:"support_resistance_period" default:"20" validate:"min=1"`
	ATRPeriod         int     `yaml:"atr_period" default:"14" validate:"min=1"`
	WilliamsRPeriod   int     `yaml:"williams_r_period" default:"14" validate:"min=1"`
}

// DefaultParams returns the classic periods
func DefaultParams() Params {
	return Params{
		SMAShort:          20,
		SMALong:           50,
		EMAFast:           12,
		EMASlow:           26,
		RSIPeriod:         14,
		MACDFastPeriod:    12,
		MACDSlowPeriod:    26,
		MACDSignalPeriod:  9,
		BBPeriod:          20,
		BBStdDev:          2.0,
		StochKPeriod:      14,
		StochDPeriod:      3,
		VolumeSMAPeriod:   20,
		VolatilityPeriod:  20,
		SupportResistance: 20,
		ATRPeriod:         14,
		WilliamsRPeriod:   14,
	}
}

var validate = validator.New()

// Validate checks periods for consistency
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("indicator params: %w", err)
	}
	return nil
}
