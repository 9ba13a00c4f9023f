// Command send-test-logs posts a batch of synthetic log events against a
// running slogger instance. Development tool only.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	apiKey := flag.String("api-key", os.Getenv("TEST_SLOGGER_API_KEY"), "API key (or TEST_SLOGGER_API_KEY)")
	baseURL := flag.String("base-url", envOr("TEST_SLOGGER_BASE_URL", "http://localhost:8080"), "base URL")
	source := flag.String("source", "test-data", "source name")
	count := flag.Int("count", 25, "number of events")
	flag.Parse()

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "Missing API key. Pass --api-key <key> or set TEST_SLOGGER_API_KEY.")
		os.Exit(1)
	}

	payload, err := json.Marshal(buildPayload(*count))
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	endpoint := fmt.Sprintf("%s/api/logs/%s", *baseURL, url.PathEscape(*source))
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Authorization", "Bearer "+*apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Request failed (%d): %s\n", resp.StatusCode, body)
		os.Exit(1)
	}
	fmt.Printf("Sent %d logs to %s\n", *count, *source)
	fmt.Printf("%s\n", body)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildPayload(count int) []map[string]any {
	levels := []string{"debug", "info", "warn", "error"}
	routes := []string{"/", "/api/logs", "/login", "/checkout", "/healthz"}
	actions := []string{"page_view", "button_click", "payment_attempt", "job_run", "auth_check"}
	statuses := []int{200, 200, 200, 201, 400, 401, 404, 500}
	regions := []string{"us-east-1", "us-west-2", "eu-west-1"}

	events := make([]map[string]any, count)
	for i := range events {
		events[i] = map[string]any{
			"event_id":    fmt.Sprintf("evt_%d_%d_%d", time.Now().UnixMilli(), i, 1000+rand.Intn(9000)),
			"timestamp":   randomTimestamp(),
			"level":       levels[rand.Intn(len(levels))],
			"action":      actions[rand.Intn(len(actions))],
			"route":       routes[rand.Intn(len(routes))],
			"duration_ms": 10 + rand.Intn(1491),
			"status_code": statuses[rand.Intn(len(statuses))],
			"message":     fmt.Sprintf("Synthetic log event %d", i+1),
			"user_id":     fmt.Sprintf("user_%d", 1+rand.Intn(100)),
			"meta": map[string]any{
				"region":  regions[rand.Intn(len(regions))],
				"release": fmt.Sprintf("2026.%d.%d", 1+rand.Intn(12), rand.Intn(31)),
			},
		}
	}
	return events
}

// randomTimestamp picks a moment in the past week.
func randomTimestamp() string {
	lookback := time.Duration(rand.Int63n(int64(7 * 24 * time.Hour)))
	return time.Now().Add(-lookback).UTC().Format(time.RFC3339)
}
