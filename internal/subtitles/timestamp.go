package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// msLimit is 2^63; rounded millisecond counts must stay below it to fit int64.
const msLimit = float64(1 << 63)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. The value is rounded to
// the nearest millisecond and split with floor division, so negative input
// is rendered rather than clamped. NaN, infinities, and values whose
// millisecond count overflows int64 return ErrInvalidTiming.
func FormatTimestamp(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "", fmt.Errorf("%w: %v", ErrInvalidTiming, seconds)
	}
	rounded := math.Round(seconds * 1000)
	if rounded >= msLimit || rounded < -msLimit {
		return "", fmt.Errorf("%w: %v out of range", ErrInvalidTiming, seconds)
	}
	totalMS := int64(rounded)
	ms := floorMod(totalMS, 1000)
	totalS := floorDiv(totalMS, 1000)
	s := floorMod(totalS, 60)
	totalM := floorDiv(totalS, 60)
	m := floorMod(totalM, 60)
	h := floorDiv(totalM, 60)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms), nil
}

// ParseTimestamp reads HH:MM:SS,mmm (a period is accepted in place of the
// comma) and returns seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	normalized := strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(normalized, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.ParseInt(hms[0], 10, 64)
	minutes, errM := strconv.ParseInt(hms[1], 10, 64)
	secs, errS := strconv.ParseInt(hms[2], 10, 64)
	millis, errMS := strconv.ParseInt(timeParts[1], 10, 64)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes < 0 || minutes > 59 || secs < 0 || secs > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	totalMS := ((hours*60+minutes)*60+secs)*1000 + millis
	return float64(totalMS) / 1000, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
