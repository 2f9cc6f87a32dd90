package event

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Websocket streams run events as JSON frames over a websocket
// connection. Writes are serialized; a failed write closes the stream and
// later events are dropped.
type Websocket struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	Source string
	dead   bool
}

func NewWebsocket(conn *websocket.Conn, source string) *Websocket {
	return &Websocket{conn: conn, Source: source}
}

func (w *Websocket) Emit(ev Event) {
	if w == nil || w.conn == nil {
		return
	}
	if ev.Source == "" {
		ev.Source = w.Source
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return
	}
	if err := w.conn.WriteJSON(ev); err != nil {
		w.dead = true
	}
}

func (w *Websocket) Log(severity, message string) {
	w.Emit(Event{Type: TypeLog, Severity: severity, Message: message})
}

func (w *Websocket) Progress(filename string, completed, total int) {
	w.Emit(Event{Type: TypeProgress, Filename: filename, Completed: completed, Total: total})
}

func (w *Websocket) Chunk(filename, chunk string) {
	w.Emit(Event{Type: TypeChunk, Filename: filename, Chunk: chunk})
}
