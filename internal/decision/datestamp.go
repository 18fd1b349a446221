package decision

import "time"

// DatetimeStamp returns the first digit run of exactly eight characters in
// name that parses as a YYYYMMDD calendar date. Runs longer or shorter than
// eight digits are never considered, matching digit-boundary semantics.
func DatetimeStamp(name string) (string, bool) {
	n := len(name)
	for i := 0; i < n; {
		if !isDigit(name[i]) {
			i++
			continue
		}
		j := i
		for j < n && isDigit(name[j]) {
			j++
		}
		if j-i == 8 {
			candidate := name[i:j]
			if _, err := time.Parse("20060102", candidate); err == nil {
				return candidate, true
			}
		}
		i = j
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
