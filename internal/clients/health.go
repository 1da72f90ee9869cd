package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultProbeTimeout = 2 * time.Second

// HealthProbe describes one upstream health endpoint. A zero Timeout uses
// the default of two seconds.
type HealthProbe struct {
	Name    string
	Client  *Client
	Path    string
	Timeout time.Duration
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Status     string `json:"status,omitempty"`
	LatencyMS  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

// CheckHealth calls the probe once. An upstream is healthy when it answers
// 2xx and, if its body carries a "status" field, that field is "ok".
func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := HealthResult{Name: probe.Name}
	start := time.Now()

	resp, err := probe.Client.Do(ctx, http.MethodGet, probe.Path, nil)
	if err != nil {
		res.Error = err.Error()
		return finish(res, start)
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	var body struct {
		Status string `json:"status"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(b, &body)
	}
	res.Status = body.Status
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300 && (body.Status == "" || body.Status == "ok")
	return finish(res, start)
}

func finish(res HealthResult, start time.Time) HealthResult {
	res.LatencyMS = time.Since(start).Milliseconds()
	return res
}

// CheckAll probes every upstream concurrently; results keep the probe order.
func CheckAll(ctx context.Context, probes []HealthProbe) []HealthResult {
	results := make([]HealthResult, len(probes))

	var wg sync.WaitGroup
	wg.Add(len(probes))
	for i := range probes {
		go func() {
			defer wg.Done()
			results[i] = CheckHealth(ctx, probes[i])
		}()
	}
	wg.Wait()
	return results
}

// Healthy reports whether every result is OK.
func Healthy(results []HealthResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}
