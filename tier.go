package glyph

import "github.com/gogpu/glyph/gpu"

// Tier selects which pipeline variant a Renderer drives.
type Tier int

const (
	// TierLegacy uses the plain vertex-buffer pipeline. Chosen for devices
	// below API major version 3.
	TierLegacy Tier = iota

	// TierModern uses the instanced storage-buffer pipeline. Chosen for
	// devices with API major version 3 or later.
	TierModern
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierModern:
		return "modern"
	case TierLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// DetectTier maps a device API version to a pipeline tier.
// Only the major version matters: 3 and later is modern, everything
// below is legacy.
func DetectTier(v gpu.APIVersion) Tier {
	if v.Major >= 3 {
		return TierModern
	}
	return TierLegacy
}
