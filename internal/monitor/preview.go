package monitor

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const previewWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// Stream each new frame to the viewer as a text message with the file name
// followed by a binary message with the JPEG bytes.
func (m *Monitor) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: %v", err)
		return
	}
	defer ws.Close()
	log.Medium("Preview viewer %v connected", r.RemoteAddr)

	// Drain incoming messages so control frames are handled, and notice
	// when the viewer goes away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var sent *frame
	for {
		f, changed := m.next()
		if f != nil && f != sent {
			ws.SetWriteDeadline(time.Now().Add(previewWriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(f.name)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.BinaryMessage, f.data); err != nil {
				return
			}
			sent = f
		}

		select {
		case <-changed:
		case <-ctx.Done():
			log.Medium("Preview viewer %v disconnected", r.RemoteAddr)
			return
		}
	}
}
