package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wn7ant/eve-value/pkg/logging"
)

func TestGetLoggerFromConfig(t *testing.T) {
	logger := logging.NewNoopLogger()

	tests := []struct {
		name   string
		config map[string]interface{}
		want   *logging.Logger
	}{
		{
			name:   "logger present",
			config: map[string]interface{}{"logger": logger},
			want:   logger,
		},
		{
			name:   "logger absent",
			config: map[string]interface{}{},
		},
		{
			name:   "logger wrong type",
			config: map[string]interface{}{"logger": "not a logger"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetLoggerFromConfig(tt.config)
			if got == nil {
				t.Fatal("Expected a logger, got nil")
			}
			if tt.want != nil && got != tt.want {
				t.Error("Expected configured logger instance")
			}
		})
	}
}

func TestFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected Accept header application/json, got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer server.Close()

	var out struct {
		Value int `json:"value"`
	}
	client := &http.Client{Timeout: 5 * time.Second}
	if err := FetchJSON(context.Background(), client, server.URL, &out); err != nil {
		t.Fatalf("FetchJSON failed: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("Expected value 42, got %d", out.Value)
	}
}

func TestFetchJSON_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	var out map[string]interface{}
	client := &http.Client{Timeout: 5 * time.Second}
	err := FetchJSON(context.Background(), client, server.URL, &out)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestFetchJSON_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value": `))
	}))
	defer server.Close()

	var out map[string]interface{}
	client := &http.Client{Timeout: 5 * time.Second}
	err := FetchJSON(context.Background(), client, server.URL, &out)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Expected ErrInvalidResponse, got %v", err)
	}
}

func TestFetchJSON_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Closed before use: connection refused

	var out map[string]interface{}
	client := &http.Client{Timeout: time.Second}
	err := FetchJSON(context.Background(), client, server.URL, &out)
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("Expected ErrRequestFailed, got %v", err)
	}
}

func TestConfigValueHelpers(t *testing.T) {
	config := map[string]interface{}{
		"region":  10000002,
		"float":   float64(7),
		"side":    "sell",
		"fields":  []interface{}{"median", "min"},
		"garbage": []interface{}{1, true},
	}

	if got := IntFromConfig(config, "region", 0); got != 10000002 {
		t.Errorf("Expected 10000002, got %d", got)
	}
	if got := IntFromConfig(config, "float", 0); got != 7 {
		t.Errorf("Expected 7 from float64, got %d", got)
	}
	if got := IntFromConfig(config, "missing", 5); got != 5 {
		t.Errorf("Expected default 5, got %d", got)
	}
	if got := StringFromConfig(config, "side", "buy"); got != "sell" {
		t.Errorf("Expected sell, got %s", got)
	}
	if got := StringFromConfig(config, "region", "def"); got != "def" {
		t.Errorf("Expected default for wrong type, got %s", got)
	}
	fields := StringsFromConfig(config, "fields")
	if len(fields) != 2 || fields[0] != "median" {
		t.Errorf("Unexpected fields: %v", fields)
	}
	if got := StringsFromConfig(config, "garbage"); len(got) != 0 {
		t.Errorf("Expected non-strings to be skipped, got %v", got)
	}
	if got := StringsFromConfig(config, "missing"); got != nil {
		t.Errorf("Expected nil for missing key, got %v", got)
	}
}
