// Package citizens owns the canonical population: citizen identity,
// demographics, personality, position, needs, and family links. Every
// other subsystem holds citizen ids and resolves them through the
// Registry, never direct references.
package citizens

import (
	"math"

	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// Gender is used by the romance/marriage/birth systems.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// GenderName returns the wire label for a gender.
func GenderName(g Gender) string {
	if g == Female {
		return "female"
	}
	return "male"
}

// Role is a citizen's occupation. A closed enum so adding one is a
// compile-checked change everywhere behavior dispatches on it.
type Role uint8

const (
	RoleFarmer Role = iota
	RoleMerchant
	RoleArtisan
	RoleTeacher
	RoleOfficer // police
	RoleCivilServant
	RoleDoctor
	RoleLegislator
	RoleJudge
	RoleChef
	RoleArtist
	RoleEngineer
	RoleOffspring // born in-world, not yet employed
)

var roleNames = [...]string{
	RoleFarmer:       "farmer",
	RoleMerchant:     "merchant",
	RoleArtisan:      "artisan",
	RoleTeacher:      "teacher",
	RoleOfficer:      "police officer",
	RoleCivilServant: "civil servant",
	RoleDoctor:       "doctor",
	RoleLegislator:   "legislator",
	RoleJudge:        "judge",
	RoleChef:         "chef",
	RoleArtist:       "artist",
	RoleEngineer:     "engineer",
	RoleOffspring:    "child",
}

// RoleName returns the display label for a role.
func RoleName(r Role) string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "citizen"
}

// ParseRole maps a wire label to a role. Unknown labels default to
// civil servant, the original's registration default.
func ParseRole(s string) Role {
	for r, name := range roleNames {
		if name == s {
			return Role(r)
		}
	}
	return RoleCivilServant
}

// Workplace returns where a role reports for work.
func Workplace(r Role) world.LocationID {
	switch r {
	case RoleFarmer, RoleMerchant:
		return world.LocMarket
	case RoleArtisan, RoleEngineer:
		return world.LocOffice
	case RoleTeacher:
		return world.LocSchool
	case RoleOfficer:
		return world.LocPolice
	case RoleCivilServant, RoleLegislator:
		return world.LocParliament
	case RoleDoctor:
		return world.LocHospital
	case RoleJudge:
		return world.LocCourt
	case RoleChef:
		return world.LocRestaurant
	case RoleArtist:
		return world.LocPark
	default:
		return world.LocOffice
	}
}

// Personality is the Big Five vector, each axis in [0,1], fixed at
// creation.
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// RandomPersonality draws each axis uniformly from [0.2, 0.9].
func RandomPersonality(r *rng.Provider) Personality {
	return Personality{
		Openness:          r.Uniform(0.2, 0.9),
		Conscientiousness: r.Uniform(0.2, 0.9),
		Extraversion:      r.Uniform(0.2, 0.9),
		Agreeableness:     r.Uniform(0.2, 0.9),
		Neuroticism:       r.Uniform(0.2, 0.9),
	}
}

// Citizen is one simulated person. Mutable state is owned by the
// Registry; subsystems mutate citizens only inside their tick slot.
type Citizen struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
	Role   Role   `json:"role"`

	Home        world.LocationID `json:"home"`
	Personality Personality      `json:"personality"`

	Location       world.LocationID `json:"location"`
	TargetLocation world.LocationID `json:"target_location"`
	X, Y           float64
	TargetX        float64
	TargetY        float64

	Money     int `json:"money"`
	Health    int `json:"health"`    // 0-100
	Happiness int `json:"happiness"` // 0-100
	Hunger    int `json:"hunger"`    // 0-100

	Employer string `json:"employer,omitempty"` // business name, "" = unemployed
	Salary   int    `json:"salary"`

	SpouseID    string   `json:"spouse_id,omitempty"`
	ChildrenIDs []string `json:"children_ids,omitempty"`
	ParentIDs   []string `json:"parent_ids,omitempty"`

	Speaking   string `json:"speaking,omitempty"`
	SpeakingTo string `json:"speaking_to,omitempty"`
	SpeakTimer int    `json:"-"`

	Action string `json:"action"`

	External bool   `json:"is_external"`
	token    string // capability secret for external control; never serialized
}

// Mood buckets happiness into a display label.
func (c *Citizen) Mood() string {
	switch {
	case c.Happiness >= 80:
		return "ecstatic"
	case c.Happiness >= 60:
		return "happy"
	case c.Happiness >= 40:
		return "neutral"
	case c.Happiness >= 20:
		return "sad"
	default:
		return "miserable"
	}
}

// moveSpeed is map units covered per tick while in transit.
const moveSpeed = 15.0

// SetLocation teleports the citizen to a location (with a small random
// offset so co-located citizens don't stack).
func (c *Citizen) SetLocation(id world.LocationID, r *rng.Provider) {
	c.Location = id
	c.X, c.Y = offsetPosition(id, r)
	c.TargetX, c.TargetY = c.X, c.Y
	c.TargetLocation = id
}

// SetTarget points the citizen at a new destination without moving it.
func (c *Citizen) SetTarget(id world.LocationID, r *rng.Provider) {
	c.TargetLocation = id
	c.TargetX, c.TargetY = offsetPosition(id, r)
}

// MoveTowardTarget advances linearly toward the target position.
// Arrival snaps exactly onto the target and completes the transit.
func (c *Citizen) MoveTowardTarget() {
	if c.Location == c.TargetLocation {
		return
	}
	dx := c.TargetX - c.X
	dy := c.TargetY - c.Y
	dist := math.Hypot(dx, dy)
	if dist < moveSpeed {
		c.X = c.TargetX
		c.Y = c.TargetY
		c.Location = c.TargetLocation
	} else {
		c.X += dx / dist * moveSpeed
		c.Y += dy / dist * moveSpeed
	}
}

// Arrived reports whether the citizen is at (not en route to) a place.
func (c *Citizen) Arrived() bool {
	return c.Location == c.TargetLocation
}

// Say puts a speech bubble on the citizen for a countdown of ticks.
func (c *Citizen) Say(message, toID string, ticks int) {
	c.Speaking = message
	c.SpeakingTo = toID
	c.SpeakTimer = ticks
}

func offsetPosition(id world.LocationID, r *rng.Provider) (float64, float64) {
	loc := world.Lookup(id)
	if loc == nil {
		return 0, 0
	}
	return loc.X + r.Uniform(-25, 25), loc.Y + r.Uniform(-20, 20)
}

