package streamchat

// Dispatcher routes client events to registered callbacks.
// All callbacks run on the client's event loop and must not block.
type Dispatcher struct {
	onLogChanged   func([]Entry)
	onScroll       func()
	onStateChanged func(StateEvent)
	onError        func(error)
}

func (d *Dispatcher) SetOnLogChanged(fn func([]Entry))      { d.onLogChanged = fn }
func (d *Dispatcher) SetOnScroll(fn func())                 { d.onScroll = fn }
func (d *Dispatcher) SetOnStateChanged(fn func(StateEvent)) { d.onStateChanged = fn }
func (d *Dispatcher) SetOnError(fn func(error))             { d.onError = fn }

// logChanged notifies the render sink and asks it to scroll to the newest entry.
func (d *Dispatcher) logChanged(snapshot []Entry) {
	if d.onLogChanged != nil {
		d.onLogChanged(snapshot)
	}
	if d.onScroll != nil {
		d.onScroll()
	}
}

func (d *Dispatcher) stateChanged(ev StateEvent) {
	if d.onStateChanged != nil {
		d.onStateChanged(ev)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
