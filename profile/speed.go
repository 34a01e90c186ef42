package profile

// Speed is the negotiated signalling rate of a device.
type Speed int

const (
	SpeedUnknown Speed = iota
	SpeedLow
	SpeedFull
	SpeedHigh
	SpeedHighBandwidth
	SpeedSuper
	SpeedSuperPlus
)

// speedInfo is the numeric rate, SI unit, and human description of a Speed.
type speedInfo struct {
	Rate        float64
	Unit        string
	Description string
}

var speedTable = map[Speed]speedInfo{
	SpeedLow:           {Rate: 1.5, Unit: "Mbps", Description: "Low Speed"},
	SpeedFull:          {Rate: 12, Unit: "Mbps", Description: "Full Speed"},
	SpeedHigh:          {Rate: 480, Unit: "Mbps", Description: "High Speed"},
	SpeedHighBandwidth: {Rate: 480, Unit: "Mbps", Description: "High Bandwidth"},
	SpeedSuper:         {Rate: 5, Unit: "Gbps", Description: "SuperSpeed"},
	SpeedSuperPlus:     {Rate: 10, Unit: "Gbps", Description: "SuperSpeed+"},
	SpeedUnknown:       {Rate: 0, Unit: "", Description: "Unknown"},
}

// Rate returns the numeric signalling rate and its SI unit.
func (s Speed) Rate() (float64, string) {
	info := speedTable[s]
	return info.Rate, info.Unit
}

// String renders the human-readable description of a Speed.
func (s Speed) String() string {
	return speedTable[s].Description
}

// SpeedFromBcdUSB classifies a Speed from the negotiated bcdUSB version and
// whether a SuperSpeedPlus BOS capability was present; callers that only
// know the wire speed (e.g. from sysfs) should use SpeedFromWireValue.
func SpeedFromBcdUSB(bcdUSBMajor uint8, hasSuperSpeedPlus bool) Speed {
	switch {
	case bcdUSBMajor >= 3 && hasSuperSpeedPlus:
		return SpeedSuperPlus
	case bcdUSBMajor >= 3:
		return SpeedSuper
	default:
		return SpeedUnknown
	}
}

// SpeedFromWireValue maps the platform port's device-speed enumeration
// (e.g. Linux sysfs "speed" file, already normalized to Mbps) to a Speed.
func SpeedFromWireValue(mbps float64) Speed {
	switch {
	case mbps >= 10000:
		return SpeedSuperPlus
	case mbps >= 5000:
		return SpeedSuper
	case mbps >= 480:
		return SpeedHigh
	case mbps >= 12:
		return SpeedFull
	case mbps > 0:
		return SpeedLow
	default:
		return SpeedUnknown
	}
}
