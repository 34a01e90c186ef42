// Package jsonio serializes a profile.SystemProfile to and from JSON. It
// deliberately uses the standard library encoding/json: nothing in this
// corpus reaches for a faster codec for a shape this small and this
// infrequently (de)serialized, and a bespoke codec would buy nothing but
// risk drifting from profile's field tags.
package jsonio

import (
	"encoding/json"
	"io"

	"github.com/usbtree/usbtree/profile"
)

// Load decodes a SystemProfile from r.
func Load(r io.Reader) (*profile.SystemProfile, error) {
	var sp profile.SystemProfile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// Save encodes sp to w as indented JSON.
func Save(w io.Writer, sp *profile.SystemProfile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sp)
}
