package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/metrics"
	metricsconfig "github.com/prebid/prebid-mediation/metrics/config"
	prometheusmetrics "github.com/prebid/prebid-mediation/metrics/prometheus"
)

func TestNewAdminServer(t *testing.T) {
	cfg := &config.Configuration{
		Host:      "prebid.com",
		AdminPort: 6060,
		Port:      8000,
	}
	server := newAdminServer(cfg, http.HandlerFunc(handler))
	assert.Equal(t, "prebid.com:6060", server.Addr)
}

func TestNewMainServer(t *testing.T) {
	cfg := &config.Configuration{
		Host:      "prebid.com",
		AdminPort: 6060,
		Port:      8000,
	}
	server := newMainServer(cfg, http.HandlerFunc(handler))
	assert.Equal(t, "prebid.com:8000", server.Addr)
}

func TestMainServerGzip(t *testing.T) {
	body := strings.Repeat("mediation ", 200)
	cfg := &config.Configuration{Port: 8000, EnableGzip: true}
	server := newMainServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestNewPrometheusServer(t *testing.T) {
	cfg := &config.Configuration{
		Metrics: config.Metrics{
			Prometheus: config.PrometheusMetrics{Port: 9090, TimeoutMillisRaw: 100},
		},
	}
	me := &metricsconfig.DetailedMetricsEngine{
		PrometheusMetrics: prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus),
	}
	me.PrometheusMetrics.RecordLoadRequest("line")

	server := newPrometheusServer(cfg, me)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, ":9090", server.Addr)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "adapter_load_requests")
}

func TestServerShutdown(t *testing.T) {
	server := &http.Server{}
	ln := &mockListener{}

	stopper := make(chan os.Signal)
	done := make(chan struct{})
	go shutdownAfterSignals(server, stopper, done)
	go server.Serve(ln)

	stopper <- os.Interrupt
	<-done

	// If the test didn't hang, then we know server.Shutdown really _did_ return, and shutdownAfterSignals
	// passed the message along as expected.
}

func TestWait(t *testing.T) {
	inbound := make(chan os.Signal)
	chan1 := make(chan os.Signal)
	chan2 := make(chan os.Signal)
	chan3 := make(chan os.Signal)
	done := make(chan struct{})

	go forwardSignal(t, done, chan1)
	go forwardSignal(t, done, chan2)
	go forwardSignal(t, done, chan3)

	go func(chan os.Signal) {
		inbound <- os.Interrupt
	}(inbound)

	wait(inbound, done, chan1, chan2, chan3)
	// If this doesn't hang, then wait() is sending and receiving messages as expected.
}

func TestMonitorableListener(t *testing.T) {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordConnectionAccept", true).Return().Once()
	me.On("RecordConnectionClose", true).Return().Once()

	ln, err := newListener("127.0.0.1:0", me)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		client, err := net.Dial("tcp", ln.Addr().String())
		if err == nil {
			client.Close()
		}
	}()

	conn, err := ln.Accept()
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	me.AssertExpectations(t)
}

func TestMonitorableListenerAcceptError(t *testing.T) {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordConnectionAccept", false).Return().Once()

	ln := &monitorableListener{&mockListener{}, me}
	_, err := ln.Accept()

	assert.Error(t, err)
	me.AssertExpectations(t)
}

func handler(w http.ResponseWriter, req *http.Request) {

}

// forwardSignal is basically a working mock for shutdownAfterSignals().
// It is used to test wait() effectively
func forwardSignal(t *testing.T, outbound chan<- struct{}, inbound <-chan os.Signal) {
	var s struct{}
	sig := <-inbound
	if sig != os.Interrupt {
		t.Errorf("Unexpected signal: %s\n", sig.String())
	}
	outbound <- s
}

type mockListener struct{}

func (l *mockListener) Accept() (net.Conn, error) {
	return nil, errListenerClosed
}

func (l *mockListener) Close() error {
	return nil
}

func (l *mockListener) Addr() net.Addr {
	return &net.TCPAddr{}
}

var errListenerClosed = &net.OpError{Op: "accept", Err: net.ErrClosed}
