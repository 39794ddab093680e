// Package admin exposes process health and live debugging endpoints:
// gopsutil load sampling and an arl/statsviz dashboard.
package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/arl/statsviz"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"mahjong/internal/logx"
)

// Stats is a point-in-time snapshot of process load.
type Stats struct {
	GameCount   int     `json:"game_count"`
	CPUPercent  float64 `json:"cpu_percent"`
	MemPercent  float64 `json:"mem_percent"`
	Goroutines  int     `json:"goroutines"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
}

// Collect samples current load. gameCount comes from the caller (the hub's
// room count), since admin has no direct dependency on the dispatcher.
func Collect(gameCount int) Stats {
	s := Stats{GameCount: gameCount, Goroutines: runtime.NumGoroutine()}

	if pcts, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	} else if err != nil {
		logx.Debug("admin: cpu sample failed", "err", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemPercent = vm.UsedPercent
	} else {
		logx.Debug("admin: mem sample failed", "err", err)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAllocMB = float64(ms.HeapAlloc) / (1024 * 1024)

	return s
}

// RegisterDebugEndpoints mounts arl/statsviz's live runtime dashboard onto
// mux, attached to the main router instead of a separate port.
func RegisterDebugEndpoints(mux *http.ServeMux) error {
	return statsviz.Register(mux)
}
