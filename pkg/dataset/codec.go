// Package dataset reads, writes, validates and repairs order datasets.
// A dataset is a list of orders, each a tuple of six phase completion
// timestamps in process order.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// File extensions for supported codecs.
const (
	jsonExtension    = ".json"
	jsonLZ4Extension = ".json.lz4"
	yamlExtension    = ".yaml"
	ymlExtension     = ".yml"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// ErrUnsupportedFormat is returned for a path whose extension has no codec.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Codec defines how a dataset document is serialized and deserialized.
type Codec interface {
	// Encode writes v to the writer.
	Encode(w io.Writer, v any) error
	// Decode reads the document into v.
	Decode(r io.Reader, v any) error
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec implements Codec using indented JSON.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode.
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps compact JSON in an LZ4 frame.
type LZ4Codec struct {
	inner JSONCodec
}

// NewLZ4Codec creates an LZ4-framed JSON codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, v any) error {
	zw := lz4.NewWriter(w)

	err := c.inner.Encode(zw, v)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader, v any) error {
	return c.inner.Decode(lz4.NewReader(r), v)
}

// Extension implements Codec.Extension.
func (c *LZ4Codec) Extension() string {
	return jsonLZ4Extension
}

// YAMLCodec implements Codec using YAML.
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Encode implements Codec.Encode.
func (c *YAMLCodec) Encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	closeErr := encoder.Close()
	if closeErr != nil {
		return fmt.Errorf("yaml close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *YAMLCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *YAMLCodec) Extension() string {
	return yamlExtension
}

// CodecFor picks the codec matching the path's extension.
func CodecFor(path string) (Codec, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, jsonLZ4Extension):
		return NewLZ4Codec(), nil
	case strings.HasSuffix(lower, jsonExtension):
		return NewJSONCodec(), nil
	case strings.HasSuffix(lower, yamlExtension), strings.HasSuffix(lower, ymlExtension):
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
