package domain

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count the way the upload list shows it: two
// decimals at most, trailing zeros dropped, e.g. "1.5 KB"
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	rounded := math.Round(size*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[i]
}
