package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/version"
)

// GetLoggerFromConfig extracts logger from config map or returns a default noop logger.
// Feeds should use this to get the logger passed down from the chain builder.
// If no logger is configured, returns a noop logger to prevent nil pointer dereferences.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}

	// return default noop logger if logger not found
	return logging.NewNoopLogger()
}

// FetchJSON performs a GET request against url and decodes the JSON body into out.
// Failures map onto the package sentinels so callers can distinguish transport
// errors from malformed payloads.
func FetchJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// Helper functions for extracting values from feed config maps

// StringFromConfig retrieves a string value from a feed config map.
func StringFromConfig(config map[string]interface{}, key, defaultVal string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return defaultVal
}

// IntFromConfig retrieves an integer value from a feed config map.
// YAML decodes numeric scalars as int or float64 depending on notation.
func IntFromConfig(config map[string]interface{}, key string, defaultVal int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultVal
	}
}

// StringsFromConfig retrieves a string slice from a feed config map.
func StringsFromConfig(config map[string]interface{}, key string) []string {
	raw, ok := config[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
