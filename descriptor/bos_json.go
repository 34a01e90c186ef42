package descriptor

import "encoding/json"

// BOS.Capabilities holds the Descriptor interface, which encoding/json
// cannot unmarshal without a concrete type to target. Marshal/unmarshal
// through each capability's wire bytes instead, re-decoding generically
// (not through class context, which BOS capabilities don't need).

type bosJSON struct {
	TotalLength   uint16
	NumDeviceCaps uint8
	Capabilities  [][]byte
}

// MarshalJSON implements json.Marshaler.
func (b *BOS) MarshalJSON() ([]byte, error) {
	aux := bosJSON{TotalLength: b.TotalLength, NumDeviceCaps: b.NumDeviceCaps}
	for _, c := range b.Capabilities {
		aux.Capabilities = append(aux.Capabilities, c.Bytes())
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BOS) UnmarshalJSON(data []byte) error {
	var aux bosJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	caps := make([]Descriptor, len(aux.Capabilities))
	for i, raw := range aux.Capabilities {
		d, err := Decode(raw)
		if err != nil {
			return err
		}
		caps[i] = d
	}
	b.TotalLength = aux.TotalLength
	b.NumDeviceCaps = aux.NumDeviceCaps
	b.Capabilities = caps
	return nil
}
