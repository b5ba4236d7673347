package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the version written into every stored envelope.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned when a payload was written by a newer schema.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// SetJSON encodes v inside a versioned envelope and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode envelope %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// GetJSON loads key into v. It reports false with a nil error when the key is absent.
// Payloads written before envelopes existed are decoded as-is.
func GetJSON(ctx context.Context, s Storage, key string, v any) (bool, error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	data := b
	if isEnvelope(b) {
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			return false, fmt.Errorf("decode envelope %s: %w", key, err)
		}
		if env.Version > SchemaVersion {
			return false, fmt.Errorf("%s version %d: %w", key, env.Version, ErrUnsupportedVersion)
		}
		data = env.Data
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func isEnvelope(b []byte) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return false
	}
	_, hasVersion := fields["version"]
	_, hasData := fields["data"]
	return hasVersion && hasData && len(fields) == 2
}
