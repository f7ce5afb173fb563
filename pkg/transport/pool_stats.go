package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/luizaranda/go-restclient/pkg/telemetry"
)

const _connPoolGauge = "restclient.http.client.conn_pool"

// ReportPoolStats publishes the open connections of every PooledTransport as
// a gauge every interval, until ctx is done. It blocks, so it is usually run
// in its own goroutine.
func ReportPoolStats(ctx context.Context, tracer telemetry.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reportPoolStats(tracer)
		case <-ctx.Done():
			return
		}
	}
}

// pool name -> "network:address" -> open connections
type poolStats map[string]map[string]int64

func reportPoolStats(tracer telemetry.Client) {
	var stats poolStats
	if err := json.Unmarshal([]byte(_expvar.String()), &stats); err != nil {
		return
	}

	for pool, conns := range stats {
		for address, open := range conns {
			tracer.Gauge(_connPoolGauge, float64(open), telemetry.Tags("pool", pool, "address", address))
		}
	}
}
