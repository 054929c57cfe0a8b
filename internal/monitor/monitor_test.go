package monitor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/framecast/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	var failure error
	m := New(":0", func() error { return failure })

	assert.Equal(t, http.StatusOK, get(t, m.Handler(), "/healthz").Code)

	failure = errors.New("capture stage failed")
	rec := get(t, m.Handler(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "capture stage failed")
}

func TestMetricsEndpoint(t *testing.T) {
	m := New(":0", nil)
	metrics.FramesCaptured.Inc()

	rec := get(t, m.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "framecast_capture_frames_total")
}

func TestLatest(t *testing.T) {
	m := New(":0", nil)
	assert.Equal(t, http.StatusNotFound, get(t, m.Handler(), "/latest").Code)

	buf := []byte{0xff, 0xd8, 1}
	m.Publish("capture_0001.jpeg", buf)
	buf[2] = 2

	rec := get(t, m.Handler(), "/latest")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "capture_0001.jpeg", rec.Header().Get("X-Frame-Name"))
	assert.Equal(t, []byte{0xff, 0xd8, 1}, rec.Body.Bytes())

	assert.True(t, strings.Contains(get(t, m.Handler(), "/").Body.String(), "/preview"))
}

func TestPreviewStreamsLatestFrame(t *testing.T) {
	m := New(":0", nil)
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	m.Publish("capture_0001.jpeg", []byte("one"))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/preview"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	read := func() (string, []byte) {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		typ, name, err := ws.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, typ)
		typ, data, err := ws.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, typ)
		return string(name), data
	}

	name, data := read()
	assert.Equal(t, "capture_0001.jpeg", name)
	assert.Equal(t, []byte("one"), data)

	m.Publish("capture_0002.jpeg", []byte("two"))
	name, data = read()
	assert.Equal(t, "capture_0002.jpeg", name)
	assert.Equal(t, []byte("two"), data)
}

func TestServeAndShutdown(t *testing.T) {
	m := New("127.0.0.1:0", nil)
	done := make(chan error, 1)
	go func() { done <- m.ListenAndServe() }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestListenReportsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	m := New(busy.Addr().String(), nil)
	assert.Error(t, m.Listen())
	assert.Nil(t, m.Addr())
}

func TestShutdownClosesUnservedListener(t *testing.T) {
	m := New("127.0.0.1:0", nil)
	require.NoError(t, m.Listen())
	addr := m.Addr().String()

	require.NoError(t, m.Shutdown(context.Background()))
	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}
