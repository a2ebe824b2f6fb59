package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
)

// TimeSignature is a meter such as 4/4 or 6/8
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// CommonTime is 4/4
var CommonTime = TimeSignature{Numerator: 4, Denominator: 4}

// ParseTimeSignature parses "N/D". Empty or invalid input falls back to 4/4.
func ParseTimeSignature(s string) TimeSignature {
	s = strings.TrimSpace(s)
	if s == "" {
		return CommonTime
	}

	num, den, ok := strings.Cut(s, "/")
	if !ok {
		logger.Warn("Invalid time signature, using 4/4", logger.Fields{"time_signature": s})
		return CommonTime
	}
	n, errN := strconv.Atoi(strings.TrimSpace(num))
	d, errD := strconv.Atoi(strings.TrimSpace(den))
	if errN != nil || errD != nil || n <= 0 || !isPowerOfTwo(d) {
		logger.Warn("Invalid time signature, using 4/4", logger.Fields{"time_signature": s})
		return CommonTime
	}
	return TimeSignature{Numerator: n, Denominator: d}
}

// BeatsPerMeasure returns the measure length in quarter-note beats
func (ts TimeSignature) BeatsPerMeasure() float64 {
	return float64(ts.Numerator) * 4.0 / float64(ts.Denominator)
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
