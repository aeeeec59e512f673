// Package relationships tracks pairwise affinity between citizens:
// scores, derived or explicit relationship types, grudges, and the
// gossip trail of undetected crimes.
package relationships

import (
	"fmt"
	"sort"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// RelType classifies a pair. Derived from score unless explicitly set.
type RelType string

const (
	TypeFriend       RelType = "friend"
	TypeColleague    RelType = "colleague"
	TypeEnemy        RelType = "enemy"
	TypeNeighbor     RelType = "neighbor"
	TypeAcquaintance RelType = "acquaintance"
	TypeLover        RelType = "lover"
)

// pairKey canonicalizes an unordered citizen pair.
type pairKey struct{ a, b string }

func key(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Graph holds every scored edge. Edges are created lazily on first
// interaction and never swept: edges of dead citizens are filtered by
// readers through a live-citizen existence check instead. The leak is
// bounded by population turnover.
type Graph struct {
	scores map[pairKey]int
	types  map[pairKey]RelType

	// citizen id → crime ids they know about through gossip.
	knownCrimes map[string]map[string]bool
	// victim id → perpetrator id → crime type label.
	grudges map[string]map[string]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		scores:      make(map[pairKey]int),
		types:       make(map[pairKey]RelType),
		knownCrimes: make(map[string]map[string]bool),
		grudges:     make(map[string]map[string]string),
	}
}

// Score returns the affinity between two citizens (0 if never met).
func (g *Graph) Score(a, b string) int {
	return g.scores[key(a, b)]
}

// SetScore stores a score, clamped to [-100, 100].
func (g *Graph) SetScore(a, b string, val int) {
	g.scores[key(a, b)] = clampScore(val)
}

// ChangeScore adjusts a score by delta, clamped to [-100, 100].
func (g *Graph) ChangeScore(a, b string, delta int) {
	k := key(a, b)
	g.scores[k] = clampScore(g.scores[k] + delta)
}

// Type returns the explicit type override if present, else derives one
// from the score. Thresholds are checked extremes-first so strong
// relationships win over the weaker bands.
func (g *Graph) Type(a, b string) RelType {
	k := key(a, b)
	if t, ok := g.types[k]; ok {
		return t
	}
	score := g.scores[k]
	switch {
	case score >= 70:
		return TypeFriend
	case score >= 40:
		return TypeColleague
	case score <= -50:
		return TypeEnemy
	case score <= -20:
		return TypeNeighbor
	default:
		return TypeAcquaintance
	}
}

// SetType pins an explicit type on a pair.
func (g *Graph) SetType(a, b string, t RelType) {
	g.types[key(a, b)] = t
}

// HasGrudge reports whether victim holds a grudge against perp.
func (g *Graph) HasGrudge(victim, perp string) bool {
	return g.grudges[victim][perp] != ""
}

// KnowsCrime reports whether a citizen has heard of a crime.
func (g *Graph) KnowsCrime(citizenID, crimeID string) bool {
	return g.knownCrimes[citizenID][crimeID]
}

func (g *Graph) learnCrime(citizenID, crimeID string) {
	if g.knownCrimes[citizenID] == nil {
		g.knownCrimes[citizenID] = make(map[string]bool)
	}
	g.knownCrimes[citizenID][crimeID] = true
}

// CrimeFact is the slice of a crime record the graph needs for grudges
// and gossip; justice feeds these in each tick.
type CrimeFact struct {
	ID            string
	TypeLabel     string
	PerpetratorID string
	VictimID      string
	Undetected    bool
	WitnessIDs    []string
}

// Tick runs relationship dynamics every fourth tick: proximity bonding,
// romance formation, crime grudges, and witness gossip.
func (g *Graph) Tick(tick int, reg *citizens.Registry, recentCrimes []CrimeFact, r *rng.Provider, news func(text, category string)) {
	if tick%4 != 0 {
		return
	}

	// Same-location bonding, locations visited in directory order.
	byLoc := make(map[world.LocationID][]*citizens.Citizen)
	for _, c := range reg.All() {
		if c.Arrived() {
			byLoc[c.Location] = append(byLoc[c.Location], c)
		}
	}
	for _, loc := range world.Locations {
		group := byLoc[loc.ID]
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !r.Chance(0.1) {
					continue
				}
				a, b := group[i], group[j]
				bonus := 1
				if a.Employer != "" && a.Employer == b.Employer {
					bonus = 2
				}
				compat := 1.0 - abs(a.Personality.Extraversion-b.Personality.Extraversion)
				scaled := int(float64(bonus)*compat + 0.5)
				if scaled < 1 {
					scaled = 1
				}
				g.ChangeScore(a.ID, b.ID, scaled)
			}
		}
	}

	// Romance: a warm, untyped edge between two eligible citizens can
	// turn into a lover tag. Edges are walked in sorted key order; map
	// order would leak into the draw sequence.
	pairs := g.sortedPairs()
	for _, k := range pairs {
		score := g.scores[k]
		if score < 60 {
			continue
		}
		if _, typed := g.types[k]; typed {
			continue
		}
		ca, cb := reg.Get(k.a), reg.Get(k.b)
		if ca == nil || cb == nil {
			continue // orphaned edge, filtered at read time
		}
		if ca.Gender == cb.Gender || ca.SpouseID != "" || cb.SpouseID != "" {
			continue
		}
		if ca.Age >= 18 && cb.Age >= 18 && r.Chance(0.05) {
			g.SetType(k.a, k.b, TypeLover)
			news(fmt.Sprintf("💕 %s and %s have started seeing each other", ca.Name, cb.Name), "social")
		}
	}

	// Crime fallout and gossip.
	for _, crime := range recentCrimes {
		if crime.VictimID != "" && crime.PerpetratorID != "" {
			g.ChangeScore(crime.PerpetratorID, crime.VictimID, -20)
			if g.grudges[crime.VictimID] == nil {
				g.grudges[crime.VictimID] = make(map[string]string)
			}
			g.grudges[crime.VictimID][crime.PerpetratorID] = crime.TypeLabel
		}

		if !crime.Undetected || len(crime.WitnessIDs) == 0 {
			continue
		}
		for _, wid := range crime.WitnessIDs {
			g.learnCrime(wid, crime.ID)
			// Witnesses whisper to their well-disposed contacts; every
			// successful spread depresses the friend's opinion of the
			// perpetrator. Walks the pre-gossip edge set: spreads can
			// mint new edges and those do not whisper this round.
			for _, k := range pairs {
				score := g.scores[k]
				if score < 30 {
					continue
				}
				var friendID string
				switch wid {
				case k.a:
					friendID = k.b
				case k.b:
					friendID = k.a
				default:
					continue
				}
				if r.Chance(0.15) {
					g.learnCrime(friendID, crime.ID)
					g.ChangeScore(friendID, crime.PerpetratorID, -5)
				}
			}
		}
	}
}

// Entry is one edge as seen from a particular citizen.
type Entry struct {
	CitizenID string  `json:"citizen_id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	Type      RelType `json:"type"`
}

// For lists a citizen's relationships, best first, capped at 20. Dead
// counterparts are filtered out here rather than swept from the map.
func (g *Graph) For(citizenID string, reg *citizens.Registry) []Entry {
	var out []Entry
	for k, score := range g.scores {
		var otherID string
		switch citizenID {
		case k.a:
			otherID = k.b
		case k.b:
			otherID = k.a
		default:
			continue
		}
		other := reg.Get(otherID)
		if other == nil {
			continue
		}
		out = append(out, Entry{
			CitizenID: otherID,
			Name:      other.Name,
			Score:     score,
			Type:      g.Type(citizenID, otherID),
		})
	}
	sortEntries(out)
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// Summary condenses a citizen's social standing.
type Summary struct {
	Friends    int    `json:"friends"`
	Enemies    int    `json:"enemies"`
	Lover      string `json:"lover,omitempty"`
	TopFriend  string `json:"top_friend,omitempty"`
	WorstEnemy string `json:"worst_enemy,omitempty"`
}

// SummaryFor aggregates the For listing into counts and headliners.
func (g *Graph) SummaryFor(citizenID string, reg *citizens.Registry) Summary {
	rels := g.For(citizenID, reg)
	var s Summary
	for _, e := range rels {
		if e.Score >= 40 {
			s.Friends++
			if s.TopFriend == "" {
				s.TopFriend = e.Name
			}
		}
		if e.Type == TypeLover && s.Lover == "" {
			s.Lover = e.Name
		}
	}
	for i := len(rels) - 1; i >= 0; i-- {
		if rels[i].Score <= -30 {
			s.Enemies++
			if s.WorstEnemy == "" {
				s.WorstEnemy = rels[i].Name
			}
		}
	}
	return s
}

// InitFamilyBonds seeds high scores for founding families: spouses are
// lovers, children and parents start close.
func (g *Graph) InitFamilyBonds(reg *citizens.Registry) {
	for _, c := range reg.All() {
		if c.SpouseID != "" {
			g.SetScore(c.ID, c.SpouseID, 80)
			g.SetType(c.ID, c.SpouseID, TypeLover)
		}
		for _, childID := range c.ChildrenIDs {
			g.SetScore(c.ID, childID, 75)
		}
		for _, pid := range c.ParentIDs {
			g.SetScore(c.ID, pid, 70)
		}
	}
}

// LoverOf returns the id of the lover-typed counterpart with the best
// score above min, or "" when there is none. Score ties break on the
// lower counterpart id so the answer never depends on map order. Used
// by the marriage pass.
func (g *Graph) LoverOf(citizenID string, minScore int, eligible func(id string) bool) (string, int) {
	bestID, bestScore := "", minScore
	for k, score := range g.scores {
		if g.types[k] != TypeLover || score <= minScore {
			continue
		}
		var otherID string
		switch citizenID {
		case k.a:
			otherID = k.b
		case k.b:
			otherID = k.a
		default:
			continue
		}
		if eligible != nil && !eligible(otherID) {
			continue
		}
		if score > bestScore || (score == bestScore && otherID < bestID) {
			bestID, bestScore = otherID, score
		}
	}
	return bestID, bestScore
}

// sortedPairs snapshots the edge keys in lexicographic order.
func (g *Graph) sortedPairs() []pairKey {
	keys := make([]pairKey, 0, len(g.scores))
	for k := range g.scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	return keys
}

func clampScore(v int) int {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
}
