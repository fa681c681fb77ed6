package domain

// IsYearColumn reports whether a header cell names a year column: a
// non-empty string consisting solely of ASCII digits.
func IsYearColumn(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InferYears extracts the year columns from a header row, preserving their
// original order. The set of aggregated columns depends entirely on the
// input header, not on a fixed schema.
func InferYears(header []string) []string {
	var years []string
	for _, col := range header {
		if IsYearColumn(col) {
			years = append(years, col)
		}
	}
	return years
}
