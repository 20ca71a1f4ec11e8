package sequencer

import "github.com/roach88/tickseq/internal/engine"

// SystemName is the name the driver registers under.
const SystemName = "sequencer"

// Plugin registers the sequencer driver with an engine.
type Plugin struct {
	Options []DriverOption
}

// Build implements engine.Plugin.
func (p Plugin) Build(e *engine.Engine) {
	e.AddSystem(SystemName, NewDriver(p.Options...).Run)
}
