// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

// ─── Resource Types ─────────────────────────────────────────────────────────

// Resource is one of the fixed set of fungible quantities tracked by the
// ledger. The set is closed; extending it means adding a constant here.
type Resource string

const (
	Stone         Resource = "stone"
	Wood          Resource = "wood"
	Iron          Resource = "iron"
	Crystal       Resource = "crystal"
	ArcaneEssence Resource = "arcane_essence"
	Gems          Resource = "gems"
	Gold          Resource = "gold"
	Food          Resource = "food"
	Energy        Resource = "energy"
)

// AllResources returns every resource type in display order.
func AllResources() []Resource {
	return []Resource{Stone, Wood, Iron, Crystal, ArcaneEssence, Gems, Gold, Food, Energy}
}

// Valid reports whether r is a member of the closed resource set.
func (r Resource) Valid() bool {
	switch r {
	case Stone, Wood, Iron, Crystal, ArcaneEssence, Gems, Gold, Food, Energy:
		return true
	}
	return false
}

// String returns the wire/storage name of the resource.
func (r Resource) String() string { return string(r) }

// ParseResource resolves a storage/wire name to a Resource.
// Returns ErrUnknownResource for names outside the closed set.
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.Valid() {
		return "", ErrUnknownResource
	}
	return r, nil
}
