package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

var errNoBytes = errors.New("confloader: override provider has no byte form")

// overrides is a koanf provider for dotted-key values such as
// {"server.http.addr": ":9000"}.
type overrides map[string]any

func (o overrides) ReadBytes() ([]byte, error) {
	return nil, errNoBytes
}

func (o overrides) Read() (map[string]any, error) {
	return maps.Unflatten(o, "."), nil
}
