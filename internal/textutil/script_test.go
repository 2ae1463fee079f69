package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsTarget(t *testing.T) {
	cases := map[string]bool{
		"":         false,
		"hello":    false,
		"Ünïcödé":  false,
		"ÿ":        false,
		"Ā":        true,
		"数据 data": true,
		"こんにちは":    true,
		"😀":        true,
	}
	for in, want := range cases {
		require.Equal(t, want, ContainsTarget(in), "ContainsTarget(%q)", in)
		require.Equal(t, want, ContainsTargetBytes([]byte(in)), "ContainsTargetBytes(%q)", in)
	}
}

func TestContainsTargetBytes不正なUTF8(t *testing.T) {
	require.False(t, ContainsTargetBytes([]byte{0xff, 0xfe, 'a'}))
	require.True(t, ContainsTargetBytes(append([]byte{0xff}, "中"...)))
}

func TestTargetRuns(t *testing.T) {
	require.Equal(t, []string{"你好", "世界"}, TargetRuns("{{ a }} 你好, 世界!"))
	require.Nil(t, TargetRuns("plain é"))
}
