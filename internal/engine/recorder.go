package engine

import "github.com/bamsammich/dirmirror/internal/event"

// Recorder receives an audit event for every mutation the engine applies and
// for every cycle boundary. Implementations must not block for long: the
// engine calls Record synchronously between filesystem operations.
type Recorder interface {
	Record(ev event.Event)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ev event.Event)

// Record calls f(ev).
func (f RecorderFunc) Record(ev event.Event) { f(ev) }

type discardRecorder struct{}

func (discardRecorder) Record(event.Event) {}
