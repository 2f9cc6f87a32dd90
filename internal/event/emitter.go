package event

// Type identifies the kind of a run event.
type Type int

const (
	TypeUnspecified Type = iota
	TypeLog
	TypeProgress
	TypeChunk // partial model response for one artifact
	TypeComplete
	TypeError
)

// Severity levels for log events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// Event is a single streamable notification from a generation run.
type Event struct {
	Type      Type   `json:"type"`
	Severity  string `json:"severity,omitempty"`
	Source    string `json:"source,omitempty"`
	Message   string `json:"message,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
}

// Emitter receives events during a run. Implementations must be safe for
// use from a single run goroutine; they are never shared across runs.
type Emitter interface {
	Emit(Event)
	Log(severity, message string)
	Progress(filename string, completed, total int)
	Chunk(filename, chunk string)
}

// Noop discards all events. It is the default when no emitter is injected.
type Noop struct{}

func (Noop) Emit(Event)               {}
func (Noop) Log(string, string)       {}
func (Noop) Progress(string, int, int) {}
func (Noop) Chunk(string, string)     {}

// Channel forwards events to a channel without blocking; events are
// dropped when the receiver lags.
type Channel struct {
	Ch     chan<- Event
	Source string
}

func (e *Channel) Emit(ev Event) {
	if e == nil || e.Ch == nil {
		return
	}
	if ev.Source == "" {
		ev.Source = e.Source
	}
	select {
	case e.Ch <- ev:
	default: // non-blocking
	}
}

func (e *Channel) Log(severity, message string) {
	e.Emit(Event{Type: TypeLog, Severity: severity, Message: message})
}

func (e *Channel) Progress(filename string, completed, total int) {
	e.Emit(Event{Type: TypeProgress, Filename: filename, Completed: completed, Total: total})
}

func (e *Channel) Chunk(filename, chunk string) {
	e.Emit(Event{Type: TypeChunk, Filename: filename, Chunk: chunk})
}

// Multi fans an event out to several emitters.
type Multi []Emitter

func (m Multi) Emit(ev Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ev)
		}
	}
}

func (m Multi) Log(severity, message string) {
	for _, e := range m {
		if e != nil {
			e.Log(severity, message)
		}
	}
}

func (m Multi) Progress(filename string, completed, total int) {
	for _, e := range m {
		if e != nil {
			e.Progress(filename, completed, total)
		}
	}
}

func (m Multi) Chunk(filename, chunk string) {
	for _, e := range m {
		if e != nil {
			e.Chunk(filename, chunk)
		}
	}
}
