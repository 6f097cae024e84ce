package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "92.3%", FormatPercent(0.9234, TextPrecision))
	assert.Equal(t, "92.34%", FormatPercent(0.9234, ImagePrecision))
	assert.Equal(t, "100.0%", FormatPercent(1, TextPrecision))
	assert.Equal(t, "0.00%", FormatPercent(0, ImagePrecision))
	assert.Equal(t, "50.5%", FormatPercent(0.505, TextPrecision))
}
