package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 VND", FormatVND(0))
	assert.Equal(t, "500 VND", FormatVND(500))
	assert.Equal(t, "1,500,000 VND", FormatVND(1_500_000))
	assert.Equal(t, "100,000,000 VND", FormatVND(100_000_000))
	assert.Equal(t, "-2,000 VND", FormatVND(-2_000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12%", FormatPercent(12))
	assert.Equal(t, "12.5%", FormatPercent(12.5))
}
