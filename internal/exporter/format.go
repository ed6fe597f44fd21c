package exporter

import (
	"strconv"
)

// formatFloat renders a float without trailing zero padding; profile
// bounds and quality metrics read better without forced precision.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
