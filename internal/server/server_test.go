package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/config"
	"github.com/tobilg/otlp-langfuse-bridge/internal/handlers"
)

// getTestConfig returns a config with a test-appropriate port
func getTestConfig(port int) *config.Config {
	return &config.Config{
		OTLPPort:       port,
		MaxRequestSize: 10 * 1024 * 1024,
		SessionTimeout: time.Hour,
	}
}

func startTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	server := New(cfg)
	go func() {
		_ = server.ListenAndServe()
	}()

	// Wait for the listener to come up
	time.Sleep(100 * time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	return server
}

func TestNewServer(t *testing.T) {
	server := New(getTestConfig(14319))

	if server == nil {
		t.Fatal("Server is nil")
	}
	if server.registry == nil {
		t.Error("Server registry is nil")
	}
	if server.wsHub == nil {
		t.Error("Server wsHub is nil")
	}
	if server.config == nil {
		t.Error("Server config is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown before start returned error: %v", err)
	}
}

func TestServerStartAndShutdown(t *testing.T) {
	startTestServer(t, getTestConfig(14320))

	resp, err := http.Get("http://localhost:14320/health")
	if err != nil {
		t.Fatalf("Failed to reach health endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"status":"healthy"`) {
		t.Errorf("Unexpected health body: %s", body)
	}
}

func TestServerAcceptsOTLPLogs(t *testing.T) {
	startTestServer(t, getTestConfig(14321))

	payload := `{
		"resourceLogs": [{
			"scopeLogs": [{
				"logRecords": [{
					"timeUnixNano": "1703500000000000000",
					"body": {"stringValue": "claude_code.user_prompt"},
					"attributes": [
						{"key": "session.id", "value": {"stringValue": "s1"}},
						{"key": "prompt", "value": {"stringValue": "hi"}}
					]
				}]
			}]
		}]
	}`

	resp, err := http.Post("http://localhost:14321/v1/logs", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to post logs: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"partialSuccess":{}}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestServerRejectsOversizedPayload(t *testing.T) {
	cfg := getTestConfig(14322)
	cfg.MaxRequestSize = 64
	startTestServer(t, cfg)

	payload := strings.Repeat("x", 1024)
	resp, err := http.Post("http://localhost:14322/v1/logs", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", resp.StatusCode)
	}

	// The rejected request still shows up in the health counters
	resp, err = http.Get("http://localhost:14322/health")
	if err != nil {
		t.Fatalf("Failed to reach health: %v", err)
	}
	defer resp.Body.Close()

	var health handlers.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.RequestCount != 1 || health.ErrorCount != 1 {
		t.Errorf("Expected rejected request in counters, got requests=%d errors=%d",
			health.RequestCount, health.ErrorCount)
	}
}

func TestServerBearerAuth(t *testing.T) {
	cfg := getTestConfig(14323)
	cfg.APIKey = "secret"
	startTestServer(t, cfg)

	// No token on an OTLP endpoint
	resp, err := http.Post("http://localhost:14323/v1/traces", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	// Valid token
	req, _ := http.NewRequest("POST", "http://localhost:14323/v1/traces", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d", resp.StatusCode)
	}

	// Health stays open
	resp, err = http.Get("http://localhost:14323/health")
	if err != nil {
		t.Fatalf("Failed to reach health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected health to bypass auth, got %d", resp.StatusCode)
	}
}

func TestServerUnknownPath(t *testing.T) {
	startTestServer(t, getTestConfig(14324))

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/nope", 14324))
	if err != nil {
		t.Fatalf("Failed to reach server: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
