package pipeline

import (
	"strings"

	"pricewatch/internal/types"
)

// AliasTable maps free-text merchant names to canonical merchant keys.
// Entries are tried in order and the first trigger found as a substring
// wins, so more specific triggers ("back market") must be listed before
// generic ones. The table is read-only after construction and safe to
// share across concurrent requests.
type AliasTable []types.MerchantAlias

// DefaultAliasTable returns the French retail merchants the comparator
// recognizes out of the box.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		{Trigger: "amazon", Key: "amazon.fr"},
		{Trigger: "fnac", Key: "fnac.com"},
		{Trigger: "cdiscount", Key: "cdiscount.com"},
		{Trigger: "darty", Key: "darty.com"},
		{Trigger: "boulanger", Key: "boulanger.com"},
		{Trigger: "ldlc", Key: "ldlc.com"},
		{Trigger: "materiel", Key: "materiel.net"},
		{Trigger: "back market", Key: "backmarket.fr"},
		{Trigger: "backmarket", Key: "backmarket.fr"},
		{Trigger: "rakuten", Key: "rakuten.fr"},
		{Trigger: "auchan", Key: "auchan.fr"},
		{Trigger: "carrefour", Key: "carrefour.fr"},
		{Trigger: "electro", Key: "electrodepot.fr"},
	}
}

// Resolve maps a raw merchant name to its canonical key. The second
// return value is false when no alias matches; callers decide whether to
// drop the offer (strict mode) or keep it under a synthetic key.
func (t AliasTable) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	nameLower := strings.ToLower(name)
	for _, alias := range t {
		if strings.Contains(nameLower, alias.Trigger) {
			return alias.Key, true
		}
	}

	return "", false
}

// Keys returns the distinct canonical merchant keys of the table, in
// table order. The scrape strategy uses them as the domain fragments a
// candidate purchase URL must contain.
func (t AliasTable) Keys() []string {
	seen := make(map[string]bool)
	var keys []string

	for _, alias := range t {
		if !seen[alias.Key] {
			seen[alias.Key] = true
			keys = append(keys, alias.Key)
		}
	}

	return keys
}

// SyntheticKey derives a grouping key from a raw merchant name for
// permissive mode, where unknown merchants are shown rather than dropped.
func SyntheticKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
