package flow

import "strconv"

// Precision differs per flow on purpose; the two screens have always rendered it this way.
const (
	TextPrecision  = 1
	ImagePrecision = 2
)

// FormatPercent renders a [0,1] score as a percentage with a fixed number of decimals.
func FormatPercent(confidence float64, decimals int) string {
	return strconv.FormatFloat(confidence*100, 'f', decimals, 64) + "%"
}
