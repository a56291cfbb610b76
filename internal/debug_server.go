// Package internal hosts the operational debug endpoint: a JSON view of
// the coordinator's live state plus self-stats of the process. Not part of
// the client protocol and not meant to be exposed publicly.
package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsProvider supplies dynamic counters for the dashboard.
type StatsProvider func() map[string]any

// NewDebugServer builds the stats endpoint. The returned server is started
// and shut down by the caller.
func NewDebugServer(log *slog.Logger, port int, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := make(map[string]any)
		if statsProvider != nil {
			stats = statsProvider()
		}
		stats["time"] = time.Now().Format(time.RFC822)

		if rss, cpu, status, err := selfStats(); err == nil {
			stats["ram_bytes"] = rss
			stats["cpu_percent"] = cpu
			stats["pid_status"] = status
			stats["pid"] = os.Getpid()
		} else {
			log.Debug("self stats unavailable", "error", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Warn("failed to write stats", "error", err)
		}
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}

// selfStats retrieves technical metrics (memory, CPU, and OS status) for
// the current process.
func selfStats() (uint64, float64, string, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, "", err
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
