package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	require.Equal(t, 0, Estimate(""))
	require.Equal(t, 1, Estimate("hi"))
	require.Equal(t, 5, Estimate("a b c d e"))
	require.Equal(t, 5, Estimate("hydration matters"))
	require.Equal(t, 4, Estimate("drink water now!"))
}

func TestCounter_HeuristicWithoutEncoding(t *testing.T) {
	var c *Counter
	require.Equal(t, Estimate("drink more water today"), c.Count("drink more water today"))
	require.Equal(t, 0, (&Counter{}).Count(""))
}
