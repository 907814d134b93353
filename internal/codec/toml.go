package codec

import (
	"errors"

	"github.com/pelletier/go-toml/v2"

	"github.com/san-kum/camkin/internal/cam"
)

// MarshalTOML writes p as flat key = value lines, cam_duration included.
func MarshalTOML(p cam.Params) ([]byte, error) {
	p, err := cam.New(p)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(p)
}

func UnmarshalTOML(data []byte) (cam.Params, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		pe := &ParseError{Format: TOML, Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return cam.Params{}, pe
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return fromMap(doc)
}
