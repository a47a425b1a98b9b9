package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// PayloadVersion is the current shape of stored envelopes.
const PayloadVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// GetJSON decodes the value stored at key into v. It reports false when the
// key does not exist.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, asStorageError("get", key, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := DecodeJSON(key, raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeJSON unwraps a stored envelope read from key into v.
func DecodeJSON(key string, raw []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &StorageError{Op: "decode", Key: key, Err: err}
	}
	if env.Version != PayloadVersion {
		return &StorageError{Op: "decode", Key: key, Err: fmt.Errorf("unsupported payload version %d", env.Version)}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &StorageError{Op: "decode", Key: key, Err: err}
	}
	return nil
}

// SetJSON stores v at key inside a versioned envelope.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	raw, err := json.Marshal(envelope{Version: PayloadVersion, Data: data})
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return asStorageError("set", key, err)
	}
	return nil
}

// Delete removes key, reporting failures as *StorageError.
func Delete(ctx context.Context, s Store, key string) error {
	if err := s.Remove(ctx, key); err != nil {
		return asStorageError("remove", key, err)
	}
	return nil
}
