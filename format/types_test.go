package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterMode_KindAndLanes(t *testing.T) {
	tests := []struct {
		mode  FilterMode
		kind  FilterKind
		lanes int
		name  string
	}{
		{FilterNone, KindNone, 1, "None"},
		{FilterTop, KindTop, 1, "Top"},
		{FilterLeft, KindLeft, 1, "Left"},
		{FilterAverage, KindAverage, 1, "Average"},
		{FilterPaeth, KindPaeth, 1, "Paeth"},
		{FilterLeftEx2, KindLeft, 2, "LeftEx2"},
		{FilterLeftEx8, KindLeft, 8, "LeftEx8"},
		{FilterAverageEx4, KindAverage, 4, "AverageEx4"},
		{FilterAverageEx6, KindAverage, 6, "AverageEx6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.mode.IsValid())
			require.Equal(t, tt.kind, tt.mode.Kind())
			require.Equal(t, tt.lanes, tt.mode.Lanes())
			require.Equal(t, tt.name, tt.mode.String())
		})
	}

	require.False(t, FilterMode(13).IsValid())
	require.Equal(t, "Unknown", FilterMode(200).String())
}

func TestExFilterMode(t *testing.T) {
	m, ok := ExFilterMode(KindLeft, 6)
	require.True(t, ok)
	require.Equal(t, FilterLeftEx6, m)

	m, ok = ExFilterMode(KindAverage, 2)
	require.True(t, ok)
	require.Equal(t, FilterAverageEx2, m)

	_, ok = ExFilterMode(KindTop, 2)
	require.False(t, ok)

	_, ok = ExFilterMode(KindLeft, 3)
	require.False(t, ok)
}

func TestEnumValidity(t *testing.T) {
	require.Equal(t, 1, SampleWidth8.Bytes())
	require.Equal(t, 2, SampleWidth16.Bytes())
	require.False(t, SampleWidth(2).IsValid())

	require.True(t, CompressionZstd.IsValid())
	require.False(t, CompressionMethod(4).IsValid())
	require.Equal(t, "LZ4", CompressionLZ4.String())

	require.True(t, ReferencePrev.IsValid())
	require.False(t, ReferenceType(3).IsValid())
	require.Equal(t, "PREV_FULL", ReferencePrevFull.String())
}
