// Package loader decodes structural model documents into core.Project values.
//
// Supported formats are JSON, YAML, HCL and MessagePack. JSON, YAML and
// MessagePack share one document shape (snake_case keys, as emitted by the
// editor frontend); HCL uses labelled blocks, see DecodeHCL.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/structview/structview/pkg/core"
	"github.com/vmihailenco/msgpack/v5"
)

// Format identifies a model document encoding.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatHCL     Format = "hcl"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath infers the format from a file extension.
// Unknown extensions fall back to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl", ".sv":
		return FormatHCL
	case ".msgpack", ".mpk":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// FormatFromContentType maps an HTTP Content-Type to a format.
// An empty or unrecognised type is treated as JSON.
func FormatFromContentType(contentType string) (Format, error) {
	if contentType == "" {
		return FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type %q: %w", contentType, err)
	}
	switch mediaType {
	case "application/json", "text/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML, nil
	case "application/hcl", "text/hcl":
		return FormatHCL, nil
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return FormatMsgpack, nil
	default:
		return "", &UnsupportedFormatError{Value: mediaType}
	}
}

// UnsupportedFormatError is returned for a content type with no decoder.
type UnsupportedFormatError struct {
	Value string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported model format: %s", e.Value)
}

// LoadFile reads and decodes the model at path.
func LoadFile(path string) (*core.Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	format := FormatFromPath(path)
	if format == FormatHCL {
		return DecodeHCL(data, path)
	}
	return DecodeBytes(data, format)
}

// Decode reads r fully and decodes it in the given format.
func Decode(r io.Reader, format Format) (*core.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return DecodeBytes(data, format)
}

// DecodeBytes decodes a model document held in memory.
func DecodeBytes(data []byte, format Format) (*core.Project, error) {
	var doc projectDoc

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON model: %w", err)
		}
	case FormatYAML:
		if err := decodeYAML(data, &doc); err != nil {
			return nil, err
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack model: %w", err)
		}
	case FormatHCL:
		return DecodeHCL(data, "model.hcl")
	default:
		return nil, &UnsupportedFormatError{Value: string(format)}
	}

	return doc.toProject(), nil
}

// EncodeMsgpack encodes a model document for the msgpack wire format.
// It is the inverse of DecodeBytes with FormatMsgpack.
func EncodeMsgpack(p *core.Project) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(fromProject(p)); err != nil {
		return nil, fmt.Errorf("failed to encode msgpack model: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON encodes a model in the JSON document shape.
func EncodeJSON(p *core.Project) ([]byte, error) {
	data, err := json.Marshal(fromProject(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON model: %w", err)
	}
	return data, nil
}
