package citizens

import (
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// Registry is the arena that owns every citizen. Lookups by id resolve
// defensively: a missing id means "no such citizen" and callers skip.
// Iteration always follows insertion order, never map order, so a run
// is reproducible from its seed.
type Registry struct {
	citizens map[string]*Citizen
	order    []*Citizen // insertion order, the canonical iteration order

	// Conversations generated this round, replaced wholesale each time.
	Conversations []Conversation
}

// NewRegistry seeds the founding population and its family links.
func NewRegistry(r *rng.Provider) *Registry {
	reg := &Registry{citizens: make(map[string]*Citizen)}
	for _, def := range citizenDefs {
		c := &Citizen{
			ID:          rng.NewID(r),
			Name:        def.name,
			Age:         def.age,
			Gender:      def.gender,
			Role:        def.role,
			Home:        def.home,
			Personality: RandomPersonality(r),
			Money:       r.Between(2000, 8000),
			Health:      r.Between(70, 100),
			Happiness:   r.Between(50, 85),
			Hunger:      r.Between(10, 40),
			Action:      "idle",
		}
		c.SetLocation(def.home, r)
		reg.Add(c)
	}
	reg.initFamilies()
	return reg
}

func (reg *Registry) initFamilies() {
	byName := make(map[string]*Citizen, len(reg.order))
	for _, c := range reg.order {
		byName[c.Name] = c
	}
	for _, fam := range familyDefs {
		h, w := byName[fam.husband], byName[fam.wife]
		if h == nil || w == nil {
			continue
		}
		h.SpouseID = w.ID
		w.SpouseID = h.ID
		for _, childName := range fam.children {
			child := byName[childName]
			if child == nil {
				continue
			}
			h.ChildrenIDs = append(h.ChildrenIDs, child.ID)
			w.ChildrenIDs = append(w.ChildrenIDs, child.ID)
			child.ParentIDs = []string{h.ID, w.ID}
		}
	}
}

// Get returns the citizen for an id, or nil if absent.
func (reg *Registry) Get(id string) *Citizen {
	return reg.citizens[id]
}

// ByName returns the first citizen with an exact name match, or nil.
func (reg *Registry) ByName(name string) *Citizen {
	for _, c := range reg.order {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ByRole returns all citizens with the given role.
func (reg *Registry) ByRole(role Role) []*Citizen {
	var out []*Citizen
	for _, c := range reg.order {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// All returns every citizen in insertion order. The slice is fresh; the
// pointers are the live records.
func (reg *Registry) All() []*Citizen {
	out := make([]*Citizen, len(reg.order))
	copy(out, reg.order)
	return out
}

// Count returns the population size.
func (reg *Registry) Count() int {
	return len(reg.order)
}

// Add inserts a citizen created elsewhere (births).
func (reg *Registry) Add(c *Citizen) {
	reg.citizens[c.ID] = c
	reg.order = append(reg.order, c)
}

// Remove deletes a citizen from the arena. Relationship detachment is
// the caller's job (lifecycle does it before removal).
func (reg *Registry) Remove(id string) {
	delete(reg.citizens, id)
	for i, c := range reg.order {
		if c.ID == id {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			return
		}
	}
}

// Authenticate checks an external citizen's capability token.
func (reg *Registry) Authenticate(id, token string) bool {
	c := reg.citizens[id]
	return c != nil && c.External && c.token == token
}

// RegisterExternal creates a citizen driven by an outside actor and
// returns it along with its freshly minted capability token. The token
// is the sole credential for that citizen's action requests.
func (reg *Registry) RegisterExternal(name string, role Role, p Personality, r *rng.Provider) (*Citizen, string) {
	token := rng.NewID(r)
	c := &Citizen{
		ID:          rng.NewID(r),
		Name:        name,
		Age:         r.Between(20, 50),
		Gender:      Male,
		Role:        role,
		Home:        world.LocResidentialSouth,
		Personality: p,
		Money:       3000,
		Health:      85,
		Happiness:   65,
		Hunger:      20,
		Action:      "idle",
		External:    true,
		token:       token,
	}
	c.SetLocation(c.Home, r)
	reg.Add(c)
	return c, token
}

// UpdateMovement runs the per-tick movement policy. Confined citizens
// (imprisonment) are excluded entirely; external citizens keep whatever
// target their controller last set but still travel toward it.
func (reg *Registry) UpdateMovement(hour int, confined func(id string) bool, r *rng.Provider) {
	for _, c := range reg.order {
		if confined != nil && confined(c.ID) {
			continue
		}
		if !c.External && c.Arrived() {
			if target, ok := decideTarget(c, hour, r); ok && target != c.Location {
				c.SetTarget(target, r)
				if loc := world.Lookup(target); loc != nil {
					c.Action = "heading to " + loc.Name
				}
			}
		}
		c.MoveTowardTarget()
		if c.Arrived() {
			c.Action = locationAction(c, r)
		}
	}
}

// decideTarget is the time-of-day policy table.
func decideTarget(c *Citizen, hour int, r *rng.Provider) (world.LocationID, bool) {
	switch {
	case hour >= 23 || hour < 6:
		return c.Home, true
	case hour >= 7 && hour < 11:
		if r.Chance(0.05) {
			return rng.Pick(r, []world.LocationID{world.LocPark, world.LocShrine, world.LocMarket}), true
		}
		return Workplace(c.Role), true
	case hour >= 11 && hour < 13:
		if r.Chance(0.6) {
			return rng.Pick(r, []world.LocationID{world.LocRestaurant, world.LocMarket, world.LocPark}), true
		}
		return Workplace(c.Role), true
	case hour >= 13 && hour < 17:
		if r.Chance(0.08) {
			return rng.Pick(r, []world.LocationID{world.LocPark, world.LocMarket}), true
		}
		return Workplace(c.Role), true
	case hour >= 17 && hour < 20:
		return rng.Pick(r, []world.LocationID{c.Home, world.LocPark, world.LocRestaurant, world.LocShrine, world.LocMarket}), true
	case hour >= 20 && hour < 23:
		if r.Chance(0.7) {
			return c.Home, true
		}
		return rng.Pick(r, []world.LocationID{world.LocRestaurant, world.LocPark}), true
	}
	return "", false
}

// Flavor actions by location category, with role overrides while at the
// role's own workplace.
var categoryActions = map[world.LocationCategory][]string{
	world.CatGovernment:  {"on duty", "in a meeting", "reviewing paperwork"},
	world.CatCommerce:    {"shopping", "negotiating a deal", "browsing the stalls"},
	world.CatResidential: {"relaxing at home", "doing housework", "taking it easy"},
	world.CatBusiness:    {"working", "in a meeting", "preparing documents"},
	world.CatService:     {"being examined", "in the waiting room", "receiving treatment"},
	world.CatEducation:   {"in class", "studying", "preparing lessons"},
	world.CatLeisure:     {"strolling", "resting on a bench", "exercising"},
	world.CatCulture:     {"paying respects", "wandering the grounds", "meditating"},
}

var roleActions = map[Role][]string{
	RoleLegislator: {"debating a bill", "giving a speech", "weighing policy"},
	RoleOfficer:    {"on patrol", "walking the beat", "writing a report"},
	RoleDoctor:     {"seeing a patient", "updating charts", "prepping for surgery"},
	RoleTeacher:    {"teaching a class", "grading tests", "meeting a student"},
	RoleChef:       {"cooking", "prepping ingredients", "planning the menu"},
	RoleJudge:      {"hearing a case", "drafting a verdict", "reading case law"},
}

func locationAction(c *Citizen, r *rng.Provider) string {
	if acts, ok := roleActions[c.Role]; ok && c.Location == Workplace(c.Role) {
		return rng.Pick(r, acts)
	}
	loc := world.Lookup(c.Location)
	if loc == nil {
		return "idle"
	}
	if acts, ok := categoryActions[loc.Category]; ok {
		return rng.Pick(r, acts)
	}
	return "idle"
}

// Costs and thresholds for the needs pass.
const (
	mealCost        = 100
	treatmentCost   = 200
	hungryThreshold = 70
)

// UpdateNeeds advances hunger, health, and happiness one tick, and
// counts down speech bubbles.
func (reg *Registry) UpdateNeeds(r *rng.Provider) {
	for _, c := range reg.order {
		c.Hunger = clamp(c.Hunger+r.Between(0, 2), 0, 100)
		if c.Hunger > hungryThreshold {
			c.Health = clamp(c.Health-1, 0, 100)
			c.Happiness = clamp(c.Happiness-1, 0, 100)
		}
		if (c.Location == world.LocRestaurant || c.Location == world.LocMarket) &&
			c.Hunger > 40 && c.Money > mealCost {
			c.Hunger = clamp(c.Hunger-30, 0, 100)
			c.Money -= mealCost
			c.Happiness = clamp(c.Happiness+3, 0, 100)
		}
		if c.Location == world.LocHospital && c.Health < 60 && c.Money >= treatmentCost {
			c.Health = clamp(c.Health+5, 0, 100)
			c.Money -= treatmentCost
		}
		if c.Location == world.LocPark {
			c.Happiness = clamp(c.Happiness+1, 0, 100)
		}
		if c.Speaking != "" && c.SpeakTimer > 0 {
			c.SpeakTimer--
			if c.SpeakTimer <= 0 {
				c.Speaking = ""
				c.SpeakingTo = ""
			}
		}
	}
}

// GenerateConversations pairs up arrived citizens by location and rolls
// templated exchanges. The transcript slice is freshly allocated each
// round; snapshots holding the previous round keep it intact.
// Locations are visited in the fixed directory order.
func (reg *Registry) GenerateConversations(r *rng.Provider) {
	reg.Conversations = nil

	byLoc := make(map[world.LocationID][]*Citizen)
	for _, c := range reg.order {
		if c.Arrived() {
			byLoc[c.Location] = append(byLoc[c.Location], c)
		}
	}

	for _, loc := range world.Locations {
		locID := loc.ID
		group := byLoc[locID]
		if len(group) < 2 || !r.Chance(0.20) {
			continue
		}
		i, j := r.PickPair(len(group))
		c1, c2 := group[i], group[j]
		if c1.Speaking != "" || c2.Speaking != "" {
			continue
		}

		var others []string
		for _, c := range reg.order {
			if c.Name != c1.Name && c.Name != c2.Name {
				others = append(others, c.Name)
			}
		}

		topic := rng.Pick(r, topicKeys)
		msg1 := fillNames(rng.Pick(r, convTopics[topic]), others, r)
		msg2 := rng.Pick(r, convResponses[rng.Pick(r, responseKeys)])

		messages := []Message{
			{Speaker: c1.Name, Text: msg1},
			{Speaker: c2.Name, Text: msg2},
		}
		if r.Chance(0.5) {
			msg3 := fillNames(rng.Pick(r, convTopics[rng.Pick(r, followupKeys)]), others, r)
			messages = append(messages, Message{Speaker: c1.Name, Text: msg3})
		}

		c1.Say(msg1, c2.ID, 8)
		c2.Say(msg2, c1.ID, 8)

		reg.Conversations = append(reg.Conversations, Conversation{
			Location:     string(locID),
			Participants: []string{c1.Name, c2.Name},
			Messages:     messages,
		})
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
