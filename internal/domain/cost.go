package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ─── Cost Vectors ───────────────────────────────────────────────────────────

// Cost is a vector of resource amounts keyed by type. Zero or absent entries
// mean "not required/not present". The same value type serves both directions:
// a cost to pay and a reward to grant — the ledger operation consuming it
// determines the sign.
//
// Cost values are immutable by convention: operations return new vectors and
// never modify their receiver.
type Cost map[Resource]int64

// NewCost builds a cost vector, dropping non-positive entries.
func NewCost(amounts map[Resource]int64) Cost {
	c := make(Cost, len(amounts))
	for r, n := range amounts {
		if n > 0 {
			c[r] = n
		}
	}
	return c
}

// Amount returns the required amount for r (zero when absent).
func (c Cost) Amount(r Resource) int64 { return c[r] }

// IsZero reports whether every component is zero.
func (c Cost) IsZero() bool {
	for _, n := range c {
		if n > 0 {
			return false
		}
	}
	return true
}

// Add returns the component-wise sum of c and other.
func (c Cost) Add(other Cost) Cost {
	sum := make(Cost, len(c)+len(other))
	for r, n := range c {
		sum[r] += n
	}
	for r, n := range other {
		sum[r] += n
	}
	return sum
}

// Scale returns c multiplied by factor, each component floored.
// Negative factors clamp to zero — a scaled cost is never negative.
func (c Cost) Scale(factor float64) Cost {
	if factor <= 0 {
		return Cost{}
	}
	scaled := make(Cost, len(c))
	for r, n := range c {
		if v := int64(math.Floor(float64(n) * factor)); v > 0 {
			scaled[r] = v
		}
	}
	return scaled
}

// Clone returns an independent copy of c.
func (c Cost) Clone() Cost {
	out := make(Cost, len(c))
	for r, n := range c {
		out[r] = n
	}
	return out
}

// String renders the vector for logs and UI, e.g. "500 stone, 20 gold".
// Components are ordered by resource name for stable output.
func (c Cost) String() string {
	if c.IsZero() {
		return "nothing"
	}
	type entry struct {
		r Resource
		n int64
	}
	entries := make([]entry, 0, len(c))
	for r, n := range c {
		if n > 0 {
			entries = append(entries, entry{r, n})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].r < entries[j].r })

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%d %s", e.n, e.r)
	}
	return strings.Join(parts, ", ")
}
