package scopecap

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses one captured channel for logging, publishing, and quick
// sanity checks. Voltages are in volts, durations in seconds.
type Summary struct {
	Channel    string  `json:"channel"`
	Points     int     `json:"points"`
	Duration   float64 `json:"duration_s"`
	SampleRate float64 `json:"sample_rate_hz"`
	Min        float64 `json:"min_v"`
	Max        float64 `json:"max_v"`
	Mean       float64 `json:"mean_v"`
	StdDev     float64 `json:"std_dev_v"`
	PeakToPeak float64 `json:"peak_to_peak_v"`
}

// Summarize computes the summary of one captured channel.
func (cc *ChannelCapture) Summarize() Summary {
	v := cc.Waveform.Volts
	s := Summary{Channel: cc.Channel.String(), Points: len(v)}
	if len(v) == 0 {
		return s
	}
	s.Min = floats.Min(v)
	s.Max = floats.Max(v)
	s.Mean, s.StdDev = stat.MeanStdDev(v, nil)
	s.PeakToPeak = s.Max - s.Min
	s.Duration = float64(len(v)) * cc.Preamble.XIncrement
	if cc.Preamble.XIncrement > 0 {
		s.SampleRate = 1 / cc.Preamble.XIncrement
	}
	return s
}
