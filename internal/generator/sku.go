package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// NewSKU mints a paper SKU from an uppercased base plus three random digits,
// so papers generated in one request get distinguishable codes.
func NewSKU(r *rand.Rand, base string) string {
	return fmt.Sprintf("%s%03d", strings.ToUpper(base), r.IntN(1000))
}
