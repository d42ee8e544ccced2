package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MarshalIndentJSON renders v as indented UTF-8 JSON without HTML escaping.
func MarshalIndentJSON[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "json encode")
	}
	return buf.Bytes(), nil
}

// WriteJSONFile writes v to path (resolved to an absolute path) and returns that path.
func WriteJSONFile[T any](path string, v T) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}
	b, err := MarshalIndentJSON(v)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrapf(err, "mkdir %s", filepath.Dir(abs))
	}
	if err := os.WriteFile(abs, b, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", abs)
	}
	return abs, nil
}

// UnmarshalFromJSON decodes data into output.
func UnmarshalFromJSON[T any](data []byte, output *T) error {
	return json.Unmarshal(data, output)
}
