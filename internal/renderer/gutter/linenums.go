package gutter

import "strconv"

// FormatNumber converts a line number to a string.
func FormatNumber(n int) string {
	return strconv.Itoa(n)
}

// PadLeft pads a string with spaces on the left to the specified width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	padding := make([]byte, width-len(s))
	for i := range padding {
		padding[i] = ' '
	}
	return string(padding) + s
}

// CalculateWidth calculates the minimum width needed to display line numbers
// for the given line count.
func CalculateWidth(lineCount, minWidth int) int {
	digits := countDigits(lineCount)
	if digits < minWidth {
		return minWidth
	}
	return digits
}

// countDigits returns the number of digits needed to display a number.
func countDigits(n int) int {
	if n <= 0 {
		return 1
	}
	digits := 0
	for n > 0 {
		digits++
		n /= 10
	}
	return digits
}

// FormatLineRange formats a 1-based line range as "start-end".
func FormatLineRange(start, end int) string {
	if start == end {
		return FormatNumber(start)
	}
	return FormatNumber(start) + "-" + FormatNumber(end)
}
