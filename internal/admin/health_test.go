package admin

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectEchoesGameCountAndSamplesProcessLoad(t *testing.T) {
	s := Collect(3)
	require.Equal(t, 3, s.GameCount)
	require.Greater(t, s.Goroutines, 0)
	require.Greater(t, s.HeapAllocMB, 0.0)
}

func TestRegisterDebugEndpointsSucceedsOnAFreshMux(t *testing.T) {
	mux := http.NewServeMux()
	require.NoError(t, RegisterDebugEndpoints(mux))
}
