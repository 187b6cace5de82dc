package connpager

const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps limit to maxLimit. The second result is false
// when the limit had to be changed. Negative limits are returned as-is and
// rejected later by validation; 0 is a legal page size.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func clampLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
