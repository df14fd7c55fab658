package scopecap

import (
	"fmt"
	"strconv"
	"strings"
)

// Raw-map keys for trigger replies; part of the document schema.
const (
	trigMode       = "mode"
	trigSweep      = "sweep"
	trigEdgeSource = "edge_source"
	trigEdgeLevel  = "edge_level"
	trigEdgeSlope  = "edge_slope"
)

// TriggerConfig is the trigger state at retrieval time. The scope only
// reports its current settings, not the ones that produced the stopped
// acquisition, so this is fetched once per capture, before the channel loop.
// The edge fields are populated only when the scope is in EDGE mode; the
// other trigger families keep just the mode and sweep in Raw.
type TriggerConfig struct {
	Raw map[string]string

	Mode       string
	Sweep      string
	EdgeSource string
	EdgeSlope  string
	EdgeLevel  float64 // volts
}

// parseTriggerConfig derives the typed fields from a raw reply map.
func parseTriggerConfig(raw map[string]string) (TriggerConfig, error) {
	t := TriggerConfig{Raw: raw}
	t.Mode = strings.ToUpper(strings.TrimSpace(raw[trigMode]))
	t.Sweep = strings.ToUpper(strings.TrimSpace(raw[trigSweep]))
	t.EdgeSource = strings.ToUpper(strings.TrimSpace(raw[trigEdgeSource]))
	t.EdgeSlope = strings.ToUpper(strings.TrimSpace(raw[trigEdgeSlope]))
	if reply, ok := raw[trigEdgeLevel]; ok {
		level, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
		if err != nil {
			return TriggerConfig{}, fmt.Errorf("trigger edge level %q: %v", reply, err)
		}
		t.EdgeLevel = level
	}
	return t, nil
}
