package engine

import (
	"sort"
	"time"
)

// Converter normalizes amounts between currencies. Satisfied by
// fx.Converter; conversion must degrade to passthrough, never error.
type Converter interface {
	ToBase(amount float64, currency string) float64
	ToDisplay(amountBase float64) float64
	Base() string
	Display() string
}

// Txn is the engine's view of one ledger transaction.
type Txn struct {
	ID       string
	Ts       time.Time
	Kind     string
	Amount   float64
	Currency string
	Status   string
	Actor    string
	Category string
}

// Actor scopes a computation to the owner or one family member.
type Actor struct {
	Type     string // "owner" or "member"
	MemberID string
}

// IsMember reports whether the actor is a family member context.
func (a Actor) IsMember() bool {
	return a.Type == "member" && a.MemberID != ""
}

// MemberInfo carries the member fields the engine needs. A member's
// displayed balance is its allowance, not any wallet.
type MemberInfo struct {
	ID        string
	Allowance float64
}

// WalletBalance is one currency position of the owner.
type WalletBalance struct {
	Currency string
	Balance  float64
}

// GoalInfo is the engine's view of one savings goal.
type GoalInfo struct {
	ID        string
	Title     string
	Target    float64
	Months    int
	Saved     float64
	CreatedAt time.Time
}

// sortedKeys fixes the iteration order when summing map values. Float
// addition is not associative, so ranging over the map directly would make
// repeated builds over the same input differ in the last bits.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
