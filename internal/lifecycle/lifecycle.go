// Package lifecycle runs the vital events: aging, sickness, death,
// marriage, divorce, and birth. Death atomically detaches a citizen's
// family, employer, and parliament links before removal so no live
// citizen carries a dangling spouse reference past the tick.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/relationships"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// DeathCause tags memorial records.
type DeathCause string

const (
	CauseOldAge   DeathCause = "old age"
	CauseIllness  DeathCause = "illness"
	CauseAccident DeathCause = "accident"
)

// Memorial is the record kept after a citizen is removed.
type Memorial struct {
	Name  string     `json:"name"`
	Age   int        `json:"age"`
	Cause DeathCause `json:"cause"`
	Role  string     `json:"role"`
	ID    string     `json:"id"`
	Tick  int        `json:"tick"`
}

// Detacher lets other engines drop their references to a dead citizen
// in the same logical step as removal.
type Detacher interface {
	RemoveEmployee(citizenID string)
	RemoveMember(citizenID string)
}

// Lifecycle tuning constants.
const (
	oldAgeThreshold   = 70
	oldAgePerYear     = 0.003
	accidentChance    = 0.0003
	sicknessChance    = 0.008
	marriageMinScore  = 50
	marriageChance    = 0.15
	divorceThreshold  = 20
	divorceChance     = 0.05
	birthMinHappiness = 60
	birthChance       = 0.01
	checkEvery        = 10
)

var boyNames = []string{"Taro", "Ken", "Sho", "Ren", "Yota", "Yuto", "Sota"}
var girlNames = []string{"Hana", "Yui", "Sakura", "Rin", "Hina", "Misaki", "Ai"}

// Engine tracks memorials and the last year boundary processed.
type Engine struct {
	Memorials []Memorial

	lastAgedYear int
}

// New creates the lifecycle engine.
func New() *Engine {
	return &Engine{}
}

// OldAgeDeathChance is the per-evaluation probability of dying of old
// age, ramping linearly past the threshold.
func OldAgeDeathChance(age int) float64 {
	if age <= oldAgeThreshold {
		return 0
	}
	return float64(age-oldAgeThreshold) * oldAgePerYear
}

// Tick runs the vital events pass. Ages everyone at each 360-day year
// boundary; every tenth tick evaluates deaths, sickness, marriage,
// divorce, and birth.
func (e *Engine) Tick(clock *world.Clock, reg *citizens.Registry, graph *relationships.Graph, det Detacher, r *rng.Provider) []string {
	var events []string

	if year := clock.Day / 360; year > e.lastAgedYear {
		e.lastAgedYear = year
		for _, c := range reg.All() {
			c.Age++
		}
	}

	if clock.Tick%checkEvery != 0 {
		return events
	}

	for _, c := range reg.All() {
		// Death causes in fixed priority order; first one that fires
		// wins.
		var cause DeathCause
		switch {
		case r.Chance(OldAgeDeathChance(c.Age)):
			cause = CauseOldAge
		case c.Health <= 0:
			cause = CauseIllness
		case r.Chance(accidentChance):
			cause = CauseAccident
		}
		if cause != "" {
			events = append(events, e.kill(c, cause, clock, reg, det)...)
			continue
		}

		if r.Chance(sicknessChance) {
			c.Health = max(0, c.Health-r.Between(10, 25))
			c.Happiness = max(0, c.Happiness-5)
			if c.Health < 40 {
				events = append(events, fmt.Sprintf("🏥 %s is seriously unwell (health %d)", c.Name, c.Health))
			}
		}

		// Passive recovery for patients actually at the hospital.
		if c.Location == world.LocHospital && c.Health < 70 {
			c.Health = min(100, c.Health+8)
		}
	}

	events = append(events, e.checkMarriages(reg, graph, r)...)
	events = append(events, e.checkDivorces(reg, r)...)
	events = append(events, e.checkBirths(clock, reg, r)...)

	return events
}

// kill detaches every inbound reference, records a memorial, and
// removes the citizen from the registry.
func (e *Engine) kill(c *citizens.Citizen, cause DeathCause, clock *world.Clock, reg *citizens.Registry, det Detacher) []string {
	e.Memorials = append(e.Memorials, Memorial{
		Name: c.Name, Age: c.Age, Cause: cause,
		Role: citizens.RoleName(c.Role), ID: c.ID, Tick: clock.Tick,
	})

	// Grief ripples through the family.
	for _, cid := range c.ChildrenIDs {
		if child := reg.Get(cid); child != nil {
			child.Happiness = max(0, child.Happiness-40)
		}
	}
	for _, pid := range c.ParentIDs {
		if parent := reg.Get(pid); parent != nil {
			parent.Happiness = max(0, parent.Happiness-50)
		}
	}
	if c.SpouseID != "" {
		if spouse := reg.Get(c.SpouseID); spouse != nil {
			spouse.Happiness = max(0, spouse.Happiness-50)
			spouse.SpouseID = ""
		}
	}

	if det != nil {
		det.RemoveEmployee(c.ID)
		det.RemoveMember(c.ID)
	}
	reg.Remove(c.ID)

	icons := map[DeathCause]string{CauseOldAge: "🕊️", CauseIllness: "💀", CauseAccident: "⚠️"}
	return []string{fmt.Sprintf("%s %s (%d) has died of %s", icons[cause], c.Name, c.Age, cause)}
}

// checkMarriages pairs unmarried adults with their best lover-typed
// match; each citizen marries at most once per pass.
func (e *Engine) checkMarriages(reg *citizens.Registry, graph *relationships.Graph, r *rng.Provider) []string {
	var events []string
	var singles []*citizens.Citizen
	for _, c := range reg.All() {
		if c.SpouseID == "" && c.Age >= 20 {
			singles = append(singles, c)
		}
	}
	rng.Shuffle(r, singles)

	paired := make(map[string]bool)
	for _, c := range singles {
		if paired[c.ID] {
			continue
		}
		partnerID, _ := graph.LoverOf(c.ID, marriageMinScore, func(id string) bool {
			other := reg.Get(id)
			return other != nil && !paired[id] && other.SpouseID == "" &&
				other.Gender != c.Gender && other.Age >= 20
		})
		if partnerID == "" || !r.Chance(marriageChance) {
			continue
		}
		partner := reg.Get(partnerID)
		if partner == nil {
			continue
		}
		c.SpouseID = partner.ID
		partner.SpouseID = c.ID
		c.Happiness = min(100, c.Happiness+20)
		partner.Happiness = min(100, partner.Happiness+20)
		paired[c.ID] = true
		paired[partner.ID] = true
		events = append(events, fmt.Sprintf("💒 %s and %s are married! Congratulations!", c.Name, partner.Name))
	}
	return events
}

// checkDivorces dissolves marriages where both spouses are miserable.
func (e *Engine) checkDivorces(reg *citizens.Registry, r *rng.Provider) []string {
	var events []string
	checked := make(map[string]bool)
	for _, c := range reg.All() {
		if c.SpouseID == "" || checked[c.ID] || checked[c.SpouseID] {
			continue
		}
		spouse := reg.Get(c.SpouseID)
		checked[c.ID] = true
		if spouse == nil {
			continue
		}
		checked[spouse.ID] = true
		if c.Happiness < divorceThreshold && spouse.Happiness < divorceThreshold && r.Chance(divorceChance) {
			c.SpouseID = ""
			spouse.SpouseID = ""
			c.Happiness = max(0, c.Happiness-10)
			spouse.Happiness = max(0, spouse.Happiness-10)
			events = append(events, fmt.Sprintf("💔 %s and %s have divorced", c.Name, spouse.Name))
		}
	}
	return events
}

// checkBirths gives happy married couples a small chance of a child.
func (e *Engine) checkBirths(clock *world.Clock, reg *citizens.Registry, r *rng.Provider) []string {
	var events []string
	checked := make(map[string]bool)
	for _, c := range reg.All() {
		if c.SpouseID == "" || checked[c.ID] {
			continue
		}
		spouse := reg.Get(c.SpouseID)
		if spouse == nil {
			continue
		}
		checked[c.ID] = true
		checked[spouse.ID] = true

		if c.Happiness <= birthMinHappiness || spouse.Happiness <= birthMinHappiness || !r.Chance(birthChance) {
			continue
		}

		mother, father := c, spouse
		if c.Gender == citizens.Male {
			mother, father = spouse, c
		}

		baby := e.makeBaby(mother, father, reg, r)
		baby.SetLocation(mother.Home, r)
		reg.Add(baby)
		father.ChildrenIDs = append(father.ChildrenIDs, baby.ID)
		mother.ChildrenIDs = append(mother.ChildrenIDs, baby.ID)

		events = append(events, fmt.Sprintf("👶 %s and %s welcome a baby: %s!", father.Name, mother.Name, baby.Name))
	}
	return events
}

func (e *Engine) makeBaby(mother, father *citizens.Citizen, reg *citizens.Registry, r *rng.Provider) *citizens.Citizen {
	gender := citizens.Male
	pool := boyNames
	if r.Chance(0.5) {
		gender = citizens.Female
		pool = girlNames
	}
	name := FamilyName(father, reg) + " " + rng.Pick(r, pool)

	// Personality averages the parents with bounded variation.
	vary := func(m, f float64) float64 {
		v := (m+f)/2 + r.Uniform(-0.15, 0.15)
		if v < 0.1 {
			v = 0.1
		}
		if v > 0.95 {
			v = 0.95
		}
		return v
	}
	mp, fp := mother.Personality, father.Personality

	return &citizens.Citizen{
		ID:     rng.NewID(r),
		Name:   name,
		Age:    0,
		Gender: gender,
		Role:   citizens.RoleOffspring,
		Home:   mother.Home,
		Personality: citizens.Personality{
			Openness:          vary(mp.Openness, fp.Openness),
			Conscientiousness: vary(mp.Conscientiousness, fp.Conscientiousness),
			Extraversion:      vary(mp.Extraversion, fp.Extraversion),
			Agreeableness:     vary(mp.Agreeableness, fp.Agreeableness),
			Neuroticism:       vary(mp.Neuroticism, fp.Neuroticism),
		},
		Money:     0,
		Health:    100,
		Happiness: 80,
		Hunger:    10,
		ParentIDs: []string{father.ID, mother.ID},
		Action:    "idle",
	}
}

// FamilyName derives a surname from the father's name prefix: the
// longest prefix shared with any other citizen's name wins, else the
// text before the first space. The collision scan is a quirk kept from
// the original naming heuristic.
func FamilyName(father *citizens.Citizen, reg *citizens.Registry) string {
	runes := []rune(father.Name)
	for l := 8; l >= 3; l-- {
		if l > len(runes) {
			continue
		}
		prefix := string(runes[:l])
		for _, other := range reg.All() {
			if other.ID == father.ID {
				continue
			}
			if len(other.Name) >= l && other.Name[:l] == prefix {
				return strings.TrimSpace(prefix)
			}
		}
	}
	for i, r := range father.Name {
		if r == ' ' {
			return father.Name[:i]
		}
	}
	return father.Name
}
