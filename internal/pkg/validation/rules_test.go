package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"jane.doe", true},
		{"j_d-99", true},
		{"ab", false},
		{"has space", false},
		{"émile", false},
		{"abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijk", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUsername(tt.in))
		})
	}
}

func TestIsClockTime(t *testing.T) {
	assert.True(t, IsClockTime("00:00"))
	assert.True(t, IsClockTime("23:59"))
	assert.False(t, IsClockTime("24:00"))
	assert.False(t, IsClockTime("7:30"))
	assert.False(t, IsClockTime("12:60"))
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, IsCurrency("USD"))
	assert.True(t, IsCurrency("eur"))
	assert.False(t, IsCurrency("U5D"))
	assert.False(t, IsCurrency("US"))
}
