// Package format defines the enumerated field values stored in an aria stream.
package format

type (
	SampleWidth       uint8
	CompressionMethod uint8
	ReferenceType     uint8
	FilterMode        uint8
	FilterKind        uint8
)

const (
	SampleWidth8  SampleWidth = 0x0 // SampleWidth8 stores one byte per sample.
	SampleWidth16 SampleWidth = 0x1 // SampleWidth16 stores two little-endian bytes per sample.

	CompressionNone CompressionMethod = 0x0 // CompressionNone stores packet payloads verbatim.
	CompressionLZ4  CompressionMethod = 0x1 // CompressionLZ4 represents LZ4 block compression.
	CompressionS2   CompressionMethod = 0x2 // CompressionS2 represents S2 block compression.
	CompressionZstd CompressionMethod = 0x3 // CompressionZstd represents Zstandard compression.

	ReferenceNone     ReferenceType = 0x0 // ReferenceNone codes a frame on its own (intra).
	ReferencePrevFull ReferenceType = 0x1 // ReferencePrevFull codes a frame against the last intra frame.
	ReferencePrev     ReferenceType = 0x2 // ReferencePrev codes a frame against the preceding frame.
)

// Intra filter modes. Ex variants split each row into interleaved lanes.
const (
	FilterNone       FilterMode = 0
	FilterTop        FilterMode = 1
	FilterLeft       FilterMode = 2
	FilterAverage    FilterMode = 3
	FilterPaeth      FilterMode = 4
	FilterLeftEx2    FilterMode = 5
	FilterLeftEx4    FilterMode = 6
	FilterLeftEx6    FilterMode = 7
	FilterLeftEx8    FilterMode = 8
	FilterAverageEx2 FilterMode = 9
	FilterAverageEx4 FilterMode = 10
	FilterAverageEx6 FilterMode = 11
	FilterAverageEx8 FilterMode = 12

	filterModeCount = 13
)

// Filter kinds shared by the plain and Ex modes.
const (
	KindNone FilterKind = iota
	KindTop
	KindLeft
	KindAverage
	KindPaeth
)

var exLanes = [...]int{2, 4, 6, 8}

// Bytes returns the number of bytes per sample.
func (w SampleWidth) Bytes() int {
	if w == SampleWidth16 {
		return 2
	}

	return 1
}

// IsValid reports whether w is a known sample width.
func (w SampleWidth) IsValid() bool {
	return w == SampleWidth8 || w == SampleWidth16
}

func (w SampleWidth) String() string {
	switch w {
	case SampleWidth8:
		return "8bit"
	case SampleWidth16:
		return "16bit"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression method.
func (c CompressionMethod) IsValid() bool {
	return c <= CompressionZstd
}

func (c CompressionMethod) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionS2:
		return "S2"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// IsValid reports whether r is a known reference type.
func (r ReferenceType) IsValid() bool {
	return r <= ReferencePrev
}

func (r ReferenceType) String() string {
	switch r {
	case ReferenceNone:
		return "NONE"
	case ReferencePrevFull:
		return "PREV_FULL"
	case ReferencePrev:
		return "PREV"
	default:
		return "Unknown"
	}
}

// IsValid reports whether m is a known filter mode.
func (m FilterMode) IsValid() bool {
	return m < filterModeCount
}

// Kind returns the predictor family of m.
func (m FilterMode) Kind() FilterKind {
	switch {
	case m >= FilterLeftEx2 && m <= FilterLeftEx8:
		return KindLeft
	case m >= FilterAverageEx2 && m <= FilterAverageEx8:
		return KindAverage
	case m <= FilterPaeth:
		return FilterKind(m)
	default:
		return KindNone
	}
}

// Lanes returns the lane count of m. Plain filters use a single lane.
func (m FilterMode) Lanes() int {
	switch {
	case m >= FilterLeftEx2 && m <= FilterLeftEx8:
		return exLanes[m-FilterLeftEx2]
	case m >= FilterAverageEx2 && m <= FilterAverageEx8:
		return exLanes[m-FilterAverageEx2]
	default:
		return 1
	}
}

// ExFilterMode returns the Ex variant of kind with the given lane count.
// ok is false when kind has no Ex variant or lanes is not 2, 4, 6 or 8.
func ExFilterMode(kind FilterKind, lanes int) (FilterMode, bool) {
	var base FilterMode
	switch kind {
	case KindLeft:
		base = FilterLeftEx2
	case KindAverage:
		base = FilterAverageEx2
	default:
		return FilterNone, false
	}

	for i, l := range exLanes {
		if l == lanes {
			return base + FilterMode(i), true
		}
	}

	return FilterNone, false
}

func (m FilterMode) String() string {
	switch m {
	case FilterNone:
		return "None"
	case FilterTop:
		return "Top"
	case FilterLeft:
		return "Left"
	case FilterAverage:
		return "Average"
	case FilterPaeth:
		return "Paeth"
	case FilterLeftEx2, FilterLeftEx4, FilterLeftEx6, FilterLeftEx8:
		return "LeftEx" + lanesSuffix(m.Lanes())
	case FilterAverageEx2, FilterAverageEx4, FilterAverageEx6, FilterAverageEx8:
		return "AverageEx" + lanesSuffix(m.Lanes())
	default:
		return "Unknown"
	}
}

func (k FilterKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindTop:
		return "Top"
	case KindLeft:
		return "Left"
	case KindAverage:
		return "Average"
	case KindPaeth:
		return "Paeth"
	default:
		return "Unknown"
	}
}

func lanesSuffix(n int) string {
	return string(rune('0' + n))
}
