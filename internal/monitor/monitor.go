// Package monitor runs an optional local webserver exposing pipeline metrics,
// a health check and a live preview of the most recent JPEG frame.
package monitor

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("monitor")

// A published frame. Immutable once stored.
type frame struct {
	name string
	data []byte
}

type Monitor struct {
	server *http.Server
	health func() error

	mu      sync.Mutex
	ln      net.Listener
	latest  *frame
	changed chan struct{}
}

// New builds the router. health reports whether the pipeline is still
// running; nil means always healthy.
func New(addr string, health func() error) *Monitor {
	m := &Monitor{
		health:  health,
		changed: make(chan struct{}),
	}
	m.server = &http.Server{
		Addr:              addr,
		Handler:           m.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return m
}

func (m *Monitor) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", m.handleIndex)
	r.Get("/healthz", m.handleHealth)
	r.Get("/preview", m.handlePreview)
	r.Get("/latest", m.handleLatest)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (m *Monitor) Handler() http.Handler {
	return m.server.Handler
}

// Serve accepts connections on ln until Shutdown.
func (m *Monitor) Serve(ln net.Listener) error {
	log.Medium("Monitor on http://%v/", ln.Addr())
	err := m.server.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Listen binds the configured address, so a busy port is reported before
// anything runs. ListenAndServe then serves on it.
func (m *Monitor) Listen() error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.ln = ln
	m.mu.Unlock()
	return nil
}

// Addr is the bound address, or nil before Listen.
func (m *Monitor) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

// ListenAndServe serves on the listener bound by Listen, binding one first if
// needed.
func (m *Monitor) ListenAndServe() error {
	if m.Addr() == nil {
		if err := m.Listen(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	ln := m.ln
	m.mu.Unlock()
	return m.Serve(ln)
}

// Shutdown stops serving. It also closes a listener that was bound but never
// served.
func (m *Monitor) Shutdown(ctx context.Context) error {
	err := m.server.Shutdown(ctx)
	m.mu.Lock()
	ln := m.ln
	m.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	return err
}

// Publish replaces the preview frame. data is copied, so callers may reuse
// their buffer. Viewers that have not caught up skip straight to this frame.
func (m *Monitor) Publish(name string, data []byte) {
	f := &frame{name: name, data: append([]byte(nil), data...)}

	m.mu.Lock()
	m.latest = f
	close(m.changed)
	m.changed = make(chan struct{})
	m.mu.Unlock()
}

// next returns the current frame and a channel closed on the next Publish.
func (m *Monitor) next() (*frame, <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.changed
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	if m.health != nil {
		if err := m.health(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

func (m *Monitor) handleLatest(w http.ResponseWriter, r *http.Request) {
	f, _ := m.next()
	if f == nil {
		http.Error(w, "no frame yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Frame-Name", f.name)
	w.Write(f.data)
}

func (m *Monitor) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>framecast</title></head>
<body>
<img id="frame" alt="waiting for frames">
<p id="name"></p>
<script>
var img = document.getElementById("frame");
var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/preview");
ws.binaryType = "blob";
ws.onmessage = function(ev) {
	if (typeof ev.data === "string") {
		document.getElementById("name").textContent = ev.data;
		return;
	}
	var old = img.src;
	img.src = URL.createObjectURL(ev.data);
	if (old) URL.revokeObjectURL(old);
};
</script>
</body>
</html>
`
