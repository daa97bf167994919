package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var healthServe bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report liveness and, with --serve, expose /metrics (spec op: health)",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthServe, "serve", false, "block, serving /metrics on $WORKER_HOST:$WORKER_PORT")
}

func runHealth(cmd *cobra.Command, args []string) error {
	metricsRegistry() // ensure gauges are registered before /metrics is scraped

	if healthServe {
		return serveMetrics()
	}

	list := sharedRegistry().List()
	resp := map[string]any{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"active_jobs": list.Active,
		"environment": environmentName(),
	}
	data, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(data))
	return nil
}

func environmentName() string {
	if cfg.QdrantURL == "" {
		return "unknown"
	}
	return "default"
}

// serveMetrics blocks, exposing the process's Prometheus registry on
// /metrics, grounded on kraklabs-cie's
// metrics HTTP exposition, the pack's only Prometheus-client user.
func serveMetrics() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf("%s:%d", cfg.WorkerHost, cfg.WorkerPort)
	logger.WithField("addr", addr).Info("serving /metrics")
	return http.ListenAndServe(addr, mux)
}
