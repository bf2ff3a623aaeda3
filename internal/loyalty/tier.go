package loyalty

import "math"

// Perks is the benefit bundle unlocked by a tier.
type Perks struct {
	DiscountPercent int `json:"reduction"`
	FreeShippings   int `json:"livraisonsGratuites"`
	FreeItems       int `json:"articlesOfferts"`
}

// Tier is a named loyalty level unlocked at a point threshold.
type Tier struct {
	Name      string `json:"nom"`
	Threshold int    `json:"pointsRequis"`
	Perks     Perks  `json:"recompenses"`
}

// tiers is the fixed ladder, ascending by threshold.
var tiers = []Tier{
	{Name: "GBAO", Threshold: 0, Perks: Perks{DiscountPercent: 0}},
	{Name: "Supporteur", Threshold: 500, Perks: Perks{DiscountPercent: 5}},
	{Name: "FANA", Threshold: 1500, Perks: Perks{DiscountPercent: 10}},
	{Name: "VRAI FANA", Threshold: 3000, Perks: Perks{DiscountPercent: 15}},
	{Name: "CR7 VS MESSI", Threshold: 7000, Perks: Perks{DiscountPercent: 20, FreeShippings: 2, FreeItems: 1}},
	{Name: "GOAT", Threshold: 15000, Perks: Perks{DiscountPercent: 25, FreeShippings: 4, FreeItems: 2}},
}

// Level describes where a point balance sits on the ladder.
type Level struct {
	Current Tier `json:"niveauActuel"`
	// Next is nil when the balance is already in the top tier.
	Next *Tier `json:"niveauSuivant,omitempty"`
	// Progress toward the next threshold, 0–100, two decimals. Exactly 100
	// in the top tier.
	Progress float64 `json:"progression"`
	// PointsToNext is the shortfall to the next threshold, 0 in the top tier.
	PointsToNext int    `json:"pointsPourNiveauSuivant"`
	AllTiers     []Tier `json:"tousLesNiveaux"`
}

// Tiers returns a copy of the ladder.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// ComputeLevel maps a point balance to the highest tier whose threshold is
// ≤ points. Pure and deterministic.
func ComputeLevel(points int) Level {
	idx := 0
	for i, t := range tiers {
		if points >= t.Threshold {
			idx = i
		}
	}
	current := tiers[idx]

	level := Level{
		Current:  current,
		Progress: 100,
		AllTiers: Tiers(),
	}
	if idx+1 < len(tiers) {
		next := tiers[idx+1]
		level.Next = &next
		span := float64(next.Threshold - current.Threshold)
		level.Progress = round2(float64(points-current.Threshold) / span * 100)
		level.PointsToNext = next.Threshold - points
	}
	return level
}

// DiscountPercent is the tier discount for a point balance.
func DiscountPercent(points int) int {
	return ComputeLevel(points).Current.Perks.DiscountPercent
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
