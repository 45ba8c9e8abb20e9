package radar

import "strconv"

// Mode is the operating mode implied by a volume coverage pattern.
type Mode string

const (
	ModePrecip Mode = "precip"
	ModeClear  Mode = "clear"
)

// VCP describes a volume coverage pattern for display.
type VCP struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Mode  Mode   `json:"mode"`
}

var vcpTable = map[int]VCP{
	12:  {Code: 12, Label: "VCP 12 · Convective", Mode: ModePrecip},
	21:  {Code: 21, Label: "VCP 21 · Stratiform", Mode: ModePrecip},
	31:  {Code: 31, Label: "VCP 31 · Clear Air (slow)", Mode: ModeClear},
	32:  {Code: 32, Label: "VCP 32 · Clear Air (fast)", Mode: ModeClear},
	35:  {Code: 35, Label: "VCP 35 · SAILS", Mode: ModePrecip},
	112: {Code: 112, Label: "VCP 112 · AVSET", Mode: ModePrecip},
	212: {Code: 212, Label: "VCP 212 · MESO-SAILS", Mode: ModePrecip},
	215: {Code: 215, Label: "VCP 215 · Convective+", Mode: ModePrecip},
}

// VCPInfo returns the label and mode for code. Unknown patterns are labelled
// "VCP <code>" in precipitation mode.
func VCPInfo(code int) VCP {
	if v, ok := vcpTable[code]; ok {
		return v
	}
	return VCP{Code: code, Label: "VCP " + strconv.Itoa(code), Mode: ModePrecip}
}
