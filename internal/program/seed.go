package program

import "unicode/utf16"

// Seed derives a stable non-negative integer from a semantic input string.
// It walks the UTF-16 code units with a rolling 31x hash and 32-bit
// wraparound, so identical inputs produce identical seeds on every platform
// and run. Collisions are tolerable; the seed only needs to be reproducible,
// not unique.
func Seed(input string) int64 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(input)) {
		hash = hash*31 + int32(unit)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return v
}
