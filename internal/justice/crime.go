// Package justice generates crimes, resolves detection and trials, and
// tracks incarceration.
package justice

import (
	"fmt"
	"sort"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/relationships"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// CrimeType is a closed enumeration of offenses.
type CrimeType uint8

const (
	Theft CrimeType = iota
	Fraud
	Embezzlement
	Assault
	Smuggling
)

// crimeInfo holds the fixed parameters per offense.
type crimeInfo struct {
	label         string
	baseDetection float64
	baseFine      int
	jailTicks     int
	emoji         string
}

var crimeTable = map[CrimeType]crimeInfo{
	Theft:        {"theft", 0.40, 500, 30, "🔓"},
	Fraud:        {"fraud", 0.20, 1500, 50, "📄"},
	Embezzlement: {"embezzlement", 0.15, 3000, 80, "💰"},
	Assault:      {"assault", 0.60, 800, 40, "👊"},
	Smuggling:    {"smuggling", 0.25, 2000, 60, "📦"},
}

// Label returns the display name of a crime type.
func (t CrimeType) Label() string {
	return crimeTable[t].label
}

// Status is the per-crime state machine:
// committed → detected|undetected; detected → guilty|acquitted.
type Status string

const (
	StatusCommitted  Status = "committed"
	StatusDetected   Status = "detected"
	StatusUndetected Status = "undetected"
	StatusGuilty     Status = "guilty"
	StatusAcquitted  Status = "acquitted"
)

// Crime is immutable once adjudicated.
type Crime struct {
	ID              string           `json:"id"`
	Type            CrimeType        `json:"-"`
	TypeLabel       string           `json:"type"`
	PerpetratorID   string           `json:"perpetrator_id"`
	PerpetratorName string           `json:"perpetrator"`
	VictimID        string           `json:"victim_id,omitempty"`
	VictimName      string           `json:"victim,omitempty"`
	Location        world.LocationID `json:"location"`
	Tick            int              `json:"tick"`
	Detected        bool             `json:"detected"`
	Status          Status           `json:"status"`
	Proceeds        int              `json:"proceeds"`
	Fine            int              `json:"fine"`
	JailUntil       int              `json:"-"`
	WitnessIDs      []string         `json:"-"`
}

// Tuning constants for the detection and trial models.
const (
	maxCrimes         = 200
	maxWitnesses      = 5
	policeBoost       = 0.15
	witnessBoost      = 0.03
	detectionCeiling  = 0.95
	guiltBase         = 0.5
	guiltPerWitness   = 0.1
	guiltCeiling      = 0.92
	crimeCheckEvery   = 5
	convictionSadness = 25
)

// Engine holds recent crimes, criminal records, and the jail roster.
type Engine struct {
	crimes  []*Crime            // newest first, bounded at maxCrimes
	records map[string][]string // citizen id → crime ids
	jail    map[string]int      // citizen id → release tick

	// Facts accumulated since the last drain, for the relationship
	// graph's grudge/gossip pass.
	pendingFacts []relationships.CrimeFact
}

// New creates an empty justice engine.
func New() *Engine {
	return &Engine{
		records: make(map[string][]string),
		jail:    make(map[string]int),
	}
}

// IsImprisoned reports whether a citizen is currently jailed.
func (e *Engine) IsImprisoned(id string) bool {
	_, ok := e.jail[id]
	return ok
}

// HasRecord reports whether a citizen has any conviction.
func (e *Engine) HasRecord(id string) bool {
	return len(e.records[id]) > 0
}

// Recent returns up to limit crimes, newest first.
func (e *Engine) Recent(limit int) []*Crime {
	if limit > len(e.crimes) {
		limit = len(e.crimes)
	}
	return e.crimes[:limit]
}

// DrainFacts hands accumulated crime facts to the relationship pass and
// clears the buffer.
func (e *Engine) DrainFacts() []relationships.CrimeFact {
	out := e.pendingFacts
	e.pendingFacts = nil
	return out
}

// Tick releases finished sentences, forces confined citizens to stay at
// the police station, and (every fifth tick) evaluates the propensity
// rules over the free population.
func (e *Engine) Tick(clock *world.Clock, reg *citizens.Registry, r *rng.Provider) []string {
	var events []string

	// Sorted ids: jail processing consumes the draw stream, so the
	// order must not come from the map.
	jailed := make([]string, 0, len(e.jail))
	for cid := range e.jail {
		jailed = append(jailed, cid)
	}
	sort.Strings(jailed)

	for _, cid := range jailed {
		releaseTick := e.jail[cid]
		if clock.Tick < releaseTick {
			// Still serving: location is pinned every tick so nothing
			// else can walk them out of confinement.
			if c := reg.Get(cid); c != nil {
				c.SetLocation(world.LocPolice, r)
				c.Action = "serving a sentence"
			}
			continue
		}
		delete(e.jail, cid)
		if c := reg.Get(cid); c != nil {
			c.SetLocation(c.Home, r)
			c.Action = "released"
			events = append(events, fmt.Sprintf("🔓 %s has served their sentence and is free", c.Name))
		}
	}

	if clock.Tick%crimeCheckEvery != 0 {
		return events
	}

	for _, c := range reg.All() {
		if e.IsImprisoned(c.ID) || c.External {
			continue
		}
		crime := e.maybeCommit(c, clock, reg, r)
		if crime == nil {
			continue
		}
		e.push(crime)

		if e.checkDetection(crime, clock, reg, r) {
			crime.Detected = true
			crime.Status = StatusDetected
			if ev := e.arrestAndTry(crime, clock, reg, r); ev != "" {
				events = append(events, ev)
			}
		} else {
			crime.Status = StatusUndetected
			c.Money += crime.Proceeds
			if len(crime.WitnessIDs) > 0 {
				events = append(events, fmt.Sprintf("👁️ %s's %s went unnoticed... for now", crime.PerpetratorName, crime.TypeLabel))
			}
		}

		e.pendingFacts = append(e.pendingFacts, relationships.CrimeFact{
			ID:            crime.ID,
			TypeLabel:     crime.TypeLabel,
			PerpetratorID: crime.PerpetratorID,
			VictimID:      crime.VictimID,
			Undetected:    crime.Status == StatusUndetected,
			WitnessIDs:    crime.WitnessIDs,
		})
	}

	return events
}

// maybeCommit runs the ordered propensity rules; at most one crime per
// citizen per evaluation.
func (e *Engine) maybeCommit(c *citizens.Citizen, clock *world.Clock, reg *citizens.Registry, r *rng.Provider) *Crime {
	p := c.Personality

	// Broke and careless → theft from someone nearby.
	if c.Money < 500 && p.Conscientiousness < 0.35 && r.Chance(0.08) {
		victim := e.pickVictim(c, reg, r)
		proceeds := r.Between(100, 800)
		if victim != nil {
			victim.Money = max(0, victim.Money-proceeds)
		}
		return e.newCrime(Theft, c, victim, proceeds, clock, r)
	}

	// Fraying nerves and misery → assault.
	if p.Neuroticism > 0.7 && c.Happiness < 30 && r.Chance(0.06) {
		victim := e.pickVictim(c, reg, r)
		if victim != nil {
			victim.Health = max(0, victim.Health-r.Between(10, 30))
			victim.Happiness = max(0, victim.Happiness-15)
		}
		return e.newCrime(Assault, c, victim, 0, clock, r)
	}

	// Ruthless merchants → fraud.
	if c.Role == citizens.RoleMerchant && p.Agreeableness < 0.3 && r.Chance(0.04) {
		victim := e.pickVictim(c, reg, r)
		proceeds := r.Between(500, 2000)
		if victim != nil {
			victim.Money = max(0, victim.Money-proceeds)
		}
		return e.newCrime(Fraud, c, victim, proceeds, clock, r)
	}

	// Employed but utterly careless → embezzlement, no direct victim.
	if c.Employer != "" && p.Conscientiousness < 0.25 && r.Chance(0.02) {
		return e.newCrime(Embezzlement, c, nil, r.Between(1000, 5000), clock, r)
	}

	// Market opportunists → smuggling, no direct victim.
	if c.Location == world.LocMarket && p.Agreeableness < 0.3 && p.Openness > 0.6 && r.Chance(0.03) {
		return e.newCrime(Smuggling, c, nil, r.Between(800, 3000), clock, r)
	}

	return nil
}

func (e *Engine) pickVictim(perp *citizens.Citizen, reg *citizens.Registry, r *rng.Provider) *citizens.Citizen {
	var candidates []*citizens.Citizen
	for _, c := range reg.All() {
		if c.Location == perp.Location && c.ID != perp.ID && !e.IsImprisoned(c.ID) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return rng.Pick(r, candidates)
}

func (e *Engine) newCrime(t CrimeType, perp, victim *citizens.Citizen, proceeds int, clock *world.Clock, r *rng.Provider) *Crime {
	crime := &Crime{
		ID:              rng.NewID(r),
		Type:            t,
		TypeLabel:       t.Label(),
		PerpetratorID:   perp.ID,
		PerpetratorName: perp.Name,
		Location:        perp.Location,
		Tick:            clock.Tick,
		Status:          StatusCommitted,
		Proceeds:        proceeds,
	}
	if victim != nil {
		crime.VictimID = victim.ID
		crime.VictimName = victim.Name
	}
	return crime
}

// checkDetection rolls whether the crime is noticed. Co-located police
// and bystanders raise the odds; night halves them; the rate is capped.
// Bystanders become the witness pool, a bounded sample in registry
// insertion order.
func (e *Engine) checkDetection(crime *Crime, clock *world.Clock, reg *citizens.Registry, r *rng.Provider) bool {
	rate := crimeTable[crime.Type].baseDetection

	police := 0
	var witnesses []string
	for _, c := range reg.All() {
		if c.Location != crime.Location || c.ID == crime.PerpetratorID {
			continue
		}
		if c.Role == citizens.RoleOfficer {
			police++
		}
		if len(witnesses) < maxWitnesses {
			witnesses = append(witnesses, c.ID)
		}
		rate += witnessBoost
	}
	rate += float64(police) * policeBoost
	crime.WitnessIDs = witnesses

	if clock.Hour >= 22 || clock.Hour < 6 {
		rate *= 0.5
	}
	if rate > detectionCeiling {
		rate = detectionCeiling
	}
	return r.Chance(rate)
}

// arrestAndTry adjudicates a detected crime in the same tick.
func (e *Engine) arrestAndTry(crime *Crime, clock *world.Clock, reg *citizens.Registry, r *rng.Provider) string {
	info := crimeTable[crime.Type]
	perp := reg.Get(crime.PerpetratorID)
	if perp == nil {
		return ""
	}

	perp.SetLocation(world.LocPolice, r)
	perp.Action = "under arrest"

	// Evidence plus the presiding judge's temperament decide guilt.
	evidence := guiltBase + float64(len(crime.WitnessIDs))*guiltPerWitness
	if judges := reg.ByRole(citizens.RoleJudge); len(judges) > 0 {
		judge := judges[0]
		evidence += judge.Personality.Conscientiousness * 0.2
		evidence -= judge.Personality.Agreeableness * 0.1
	}
	if evidence > guiltCeiling {
		evidence = guiltCeiling
	}

	if r.Chance(evidence) {
		crime.Status = StatusGuilty
		crime.Fine = info.baseFine
		crime.JailUntil = clock.Tick + info.jailTicks

		perp.Money = max(0, perp.Money-crime.Fine)
		e.jail[perp.ID] = crime.JailUntil
		e.records[perp.ID] = append(e.records[perp.ID], crime.ID)
		perp.Happiness = max(0, perp.Happiness-convictionSadness)
		perp.Action = "serving a sentence"

		victimPart := ""
		if crime.VictimName != "" {
			victimPart = fmt.Sprintf(" (victim: %s)", crime.VictimName)
		}
		return fmt.Sprintf("⚖️ %s found guilty of %s! Fined %d, jailed for %d ticks%s",
			perp.Name, info.label, crime.Fine, info.jailTicks, victimPart)
	}

	crime.Status = StatusAcquitted
	perp.SetLocation(perp.Home, r)
	return fmt.Sprintf("⚖️ %s acquitted of %s", perp.Name, info.label)
}

// Incarcerate jails a citizen until the given tick. Exposed for the
// coordinator's cross-cutting checks and for tests.
func (e *Engine) Incarcerate(id string, until int) {
	e.jail[id] = until
}

// push prepends a crime, trimming the tail past maxCrimes.
func (e *Engine) push(c *Crime) {
	e.crimes = append([]*Crime{c}, e.crimes...)
	if len(e.crimes) > maxCrimes {
		e.crimes = e.crimes[:maxCrimes]
	}
}
