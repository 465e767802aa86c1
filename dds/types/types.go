package types

import (
	"encoding/json"
	"fmt"
)

// Sentinel values kept for the external row contract.
const (
	SentinelMissing int64 = -1
	SentinelUnknown int64 = -2
)

// SizeState tags a Size
type SizeState int

const (
	// SizeUnknown is the placeholder state before a size is resolved
	SizeUnknown SizeState = iota
	// SizeMissing means the path does not exist or is not a directory
	SizeMissing
	// SizeComputed carries a real byte count, zero included
	SizeComputed
)

func (s SizeState) String() string {
	switch s {
	case SizeUnknown:
		return "unknown"
	case SizeMissing:
		return "missing"
	case SizeComputed:
		return "computed"
	default:
		return fmt.Sprintf("SizeState(%d)", int(s))
	}
}

// Size is a directory size that cannot be confused with its sentinel encoding.
// The zero value is Unknown.
type Size struct {
	state SizeState
	bytes int64
}

// Unknown returns the not-yet-computed size.
func Unknown() Size { return Size{state: SizeUnknown} }

// Missing returns the size of a path that is not a directory.
func Missing() Size { return Size{state: SizeMissing} }

// Bytes returns a computed size. Negative counts are treated as Missing.
func Bytes(n int64) Size {
	if n < 0 {
		return Missing()
	}
	return Size{state: SizeComputed, bytes: n}
}

// SizeFromSentinel decodes the -1/-2/n integer form.
func SizeFromSentinel(n int64) Size {
	switch {
	case n == SentinelUnknown:
		return Unknown()
	case n < 0:
		return Missing()
	default:
		return Bytes(n)
	}
}

// State reports which variant s holds.
func (s Size) State() SizeState { return s.state }

// Value returns the byte count and whether s is Computed.
func (s Size) Value() (int64, bool) {
	if s.state != SizeComputed {
		return 0, false
	}
	return s.bytes, true
}

// IsComputed reports whether s carries a byte count.
func (s Size) IsComputed() bool { return s.state == SizeComputed }

// IsZero reports whether s is falsy in the display sense: Computed with zero bytes.
func (s Size) IsZero() bool { return s.state == SizeComputed && s.bytes == 0 }

// Sentinel encodes s as -2 (unknown), -1 (missing) or the byte count.
func (s Size) Sentinel() int64 {
	switch s.state {
	case SizeComputed:
		return s.bytes
	case SizeMissing:
		return SentinelMissing
	default:
		return SentinelUnknown
	}
}

// Add sums two sizes. Only computed operands contribute.
func (s Size) Add(other Size) Size {
	a, _ := s.Value()
	b, _ := other.Value()
	return Bytes(a + b)
}

func (s Size) String() string {
	if s.state == SizeComputed {
		return fmt.Sprintf("%d", s.bytes)
	}
	return s.state.String()
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sentinel())
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("size must be an integer: %w", err)
	}
	*s = SizeFromSentinel(n)
	return nil
}

// Descriptor is one logical entry to report on
type Descriptor struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsSum      bool   `json:"sum,omitempty"`
	IsDatabase bool   `json:"database,omitempty"`
}

// Cacheable reports whether the descriptor's size goes through the path-keyed cache.
func (d Descriptor) Cacheable() bool {
	return !d.IsSum && !d.IsDatabase && d.Path != ""
}

// Row is a descriptor together with its resolved size
type Row struct {
	Descriptor
	Size         Size   `json:"size"`
	SizeFriendly string `json:"size_friendly"`
}

// NewRow returns a row for d in the Unknown state.
func NewRow(d Descriptor) Row {
	return Row{Descriptor: d, Size: Unknown()}
}
