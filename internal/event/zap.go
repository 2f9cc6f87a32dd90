package event

import "go.uber.org/zap"

// Zap routes run events into a structured zap logger. Chunk events are
// skipped; per-token logging would drown everything else.
type Zap struct {
	Logger *zap.Logger
	Source string
}

// NewZap wraps a zap logger as an Emitter. A nil logger yields a no-op.
func NewZap(logger *zap.Logger, source string) Emitter {
	if logger == nil {
		return Noop{}
	}
	return &Zap{Logger: logger, Source: source}
}

func (z *Zap) Emit(ev Event) {
	if z == nil || z.Logger == nil {
		return
	}
	switch ev.Type {
	case TypeChunk:
		return
	case TypeProgress:
		z.Logger.Info("generation progress",
			zap.String("source", z.Source),
			zap.String("filename", ev.Filename),
			zap.Int("completed", ev.Completed),
			zap.Int("total", ev.Total),
		)
	case TypeComplete:
		z.Logger.Info("generation complete",
			zap.String("source", z.Source),
			zap.Int("completed", ev.Completed),
			zap.Int("total", ev.Total),
		)
	case TypeError:
		z.Logger.Error(ev.Message, zap.String("source", z.Source), zap.String("filename", ev.Filename))
	default:
		fields := []zap.Field{zap.String("source", z.Source)}
		if ev.Filename != "" {
			fields = append(fields, zap.String("filename", ev.Filename))
		}
		switch ev.Severity {
		case SeverityError:
			z.Logger.Error(ev.Message, fields...)
		case SeverityWarning:
			z.Logger.Warn(ev.Message, fields...)
		default:
			z.Logger.Info(ev.Message, fields...)
		}
	}
}

func (z *Zap) Log(severity, message string) {
	z.Emit(Event{Type: TypeLog, Severity: severity, Message: message})
}

func (z *Zap) Progress(filename string, completed, total int) {
	z.Emit(Event{Type: TypeProgress, Filename: filename, Completed: completed, Total: total})
}

func (z *Zap) Chunk(string, string) {}
