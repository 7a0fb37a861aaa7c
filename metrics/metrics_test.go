package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/internal/test/testlogger"
	"github.com/zutxo/sigma/metrics/pprof"
)

func TestHandlerExposesCounters(t *testing.T) {
	VerificationCounter.WithLabelValues("valid").Inc()
	CostHistogram.WithLabelValues("verify").Observe(1234)

	srv := httptest.NewServer(InterpreterHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `sigma_verifications_total{result="valid"}`)
	require.Contains(t, string(body), "sigma_call_cost_bucket")
}

func TestStart(t *testing.T) {
	l, err := Start(testlogger.New(t), "127.0.0.1:0", pprof.WithProfile())
	require.NoError(t, err)
	defer l.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", l.Addr().String(), path))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	code, body := get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.Contains(body, "go_goroutines"))

	code, _ = get("/metrics/interpreter")
	require.Equal(t, http.StatusOK, code)

	code, body = get("/debug/gc")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "GC run complete", body)
}
