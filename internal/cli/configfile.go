package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
)

// Loads a TOML configuration file as a kong resolver.
//
// The document is decoded and re-encoded as JSON so kong's JSON resolver does
// the flag lookup. Keys are flag names with hyphens replaced by underscores.
func tomlLoader(r io.Reader) (kong.Resolver, error) {
	var values map[string]any
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("invalid configuration file: %w", err)
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return kong.JSON(bytes.NewReader(data))
}
