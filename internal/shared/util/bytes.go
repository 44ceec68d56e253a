package util

import "fmt"

// FormatMB renders a byte count in megabytes with two decimals, e.g. "5.00MB".
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024*1024))
}
