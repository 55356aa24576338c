package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPageInfoTrimsProbeRow(t *testing.T) {
	a, b, c := 1, 2, 3
	rows, info := BuildPageInfo([]*int{&a, &b, &c}, Pagination{Limit: 2, Offset: 4})
	require.Len(t, rows, 2)
	require.True(t, info.HasMore)
	require.Equal(t, 6, info.NextOffset)

	rows, info = BuildPageInfo([]*int{&a}, Pagination{Limit: 2})
	require.Len(t, rows, 1)
	require.False(t, info.HasMore)
	require.Equal(t, 1, info.NextOffset)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, Pagination{Limit: DefaultLimit}, Pagination{}.Normalize())
	require.Equal(t, Pagination{Limit: MaxLimit}, Pagination{Limit: 1000, Offset: -3}.Normalize())
}
