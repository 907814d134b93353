package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/san-kum/camkin/internal/cam"
)

type Format string

const (
	JSON Format = "json"
	TOML Format = "toml"
)

// ParseFormat accepts "json" or "toml" in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case JSON, TOML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

func (f Format) Extension() string { return "." + string(f) }

func (f Format) String() string { return string(f) }

func Marshal(f Format, p cam.Params) ([]byte, error) {
	switch f {
	case JSON:
		return MarshalJSON(p)
	case TOML:
		return MarshalTOML(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func Unmarshal(f Format, data []byte) (cam.Params, error) {
	switch f {
	case JSON:
		return UnmarshalJSON(data)
	case TOML:
		return UnmarshalTOML(data)
	default:
		return cam.Params{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
