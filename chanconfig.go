package scopecap

import (
	"fmt"
	"strconv"
	"strings"
)

// Mnemonic keys under which raw configuration replies are stored. These are
// also the keys used in the persisted document, so they are part of the
// schema and must stay stable.
const (
	cfgScale     = "scale"
	cfgOffset    = "offset"
	cfgCoupling  = "coupling"
	cfgProbe     = "probe"
	cfgBandwidth = "bwlimit"
	cfgEnabled   = "enabled"
)

// ChannelConfig holds one channel's vertical configuration at capture time.
// Raw maps each mnemonic to the exact reply text its parsed field came from;
// both forms are retained so any parse can be re-verified offline. Fields
// whose query the instrument family does not support for this channel kind
// (for example probe attenuation on MATH) are absent from Raw and zero in
// parsed form.
type ChannelConfig struct {
	Raw map[string]string

	Scale            float64 // volts per division
	Offset           float64 // volts
	ProbeAttenuation float64 // e.g. 10 for a 10x probe
	Coupling         string  // AC, DC, or GND
	BandwidthLimit   string  // OFF, 20M, 100M, ...
	Enabled          bool
}

// parseChannelConfig derives the typed fields from a raw reply map.
func parseChannelConfig(raw map[string]string) (ChannelConfig, error) {
	cfg := ChannelConfig{Raw: raw}
	for mnem, reply := range raw {
		var err error
		switch mnem {
		case cfgScale:
			cfg.Scale, err = strconv.ParseFloat(strings.TrimSpace(reply), 64)
		case cfgOffset:
			cfg.Offset, err = strconv.ParseFloat(strings.TrimSpace(reply), 64)
		case cfgProbe:
			cfg.ProbeAttenuation, err = strconv.ParseFloat(strings.TrimSpace(reply), 64)
		case cfgCoupling:
			cfg.Coupling = strings.ToUpper(strings.TrimSpace(reply))
		case cfgBandwidth:
			cfg.BandwidthLimit = strings.ToUpper(strings.TrimSpace(reply))
		case cfgEnabled:
			cfg.Enabled, err = parseEnabled(reply)
		default:
			err = fmt.Errorf("unknown mnemonic")
		}
		if err != nil {
			return ChannelConfig{}, fmt.Errorf("channel config %s=%q: %v", mnem, reply, err)
		}
	}
	return cfg, nil
}

// parseEnabled interprets an on/off style reply. MATH reports its CALC mode
// instead of 0/1; any mode other than OFF means the trace is displayed.
func parseEnabled(reply string) (bool, error) {
	switch s := strings.ToUpper(strings.TrimSpace(reply)); s {
	case "1", "ON":
		return true, nil
	case "0", "OFF":
		return false, nil
	case "":
		return false, fmt.Errorf("empty enabled-state reply")
	default:
		// A CALC mode name: ADD, SUB, FFT, ...
		return true, nil
	}
}
