package lifecycle

import (
	"testing"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/relationships"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

type recordingDetacher struct {
	employees []string
	members   []string
}

func (d *recordingDetacher) RemoveEmployee(id string) { d.employees = append(d.employees, id) }
func (d *recordingDetacher) RemoveMember(id string)   { d.members = append(d.members, id) }

func TestOldAgeDeathChanceRamp(t *testing.T) {
	if OldAgeDeathChance(70) != 0 {
		t.Error("chance at threshold should be zero")
	}
	if got := OldAgeDeathChance(80); got != 0.03 {
		t.Errorf("chance at 80 = %v, want 0.03", got)
	}
	if OldAgeDeathChance(30) != 0 {
		t.Error("young citizens have old-age risk")
	}
}

func TestKillDetachesEverything(t *testing.T) {
	r := rng.New(1)
	reg := citizens.NewRegistry(r)
	e := New()
	det := &recordingDetacher{}

	// Find a married citizen with children.
	var victim *citizens.Citizen
	for _, c := range reg.All() {
		if c.SpouseID != "" && len(c.ChildrenIDs) > 0 {
			victim = c
			break
		}
	}
	if victim == nil {
		t.Fatal("no married parent in seed population")
	}
	spouse := reg.Get(victim.SpouseID)
	child := reg.Get(victim.ChildrenIDs[0])
	spouse.Happiness = 80
	child.Happiness = 80

	clock := &world.Clock{Tick: 100, Day: 5}
	events := e.kill(victim, CauseIllness, clock, reg, det)

	if reg.Get(victim.ID) != nil {
		t.Error("dead citizen still in registry")
	}
	if spouse.SpouseID != "" {
		t.Error("widowed spouse still linked to the dead")
	}
	if spouse.Happiness != 30 {
		t.Errorf("spouse happiness = %d, want 30 after grief", spouse.Happiness)
	}
	if child.Happiness != 40 {
		t.Errorf("child happiness = %d, want 40 after grief", child.Happiness)
	}
	if len(det.employees) != 1 || det.employees[0] != victim.ID {
		t.Error("employer detachment not invoked")
	}
	if len(det.members) != 1 {
		t.Error("parliament detachment not invoked")
	}
	if len(e.Memorials) != 1 || e.Memorials[0].Cause != CauseIllness {
		t.Error("memorial not recorded")
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestAgingOnlyAtYearBoundary(t *testing.T) {
	r := rng.New(2)
	reg := citizens.NewRegistry(r)
	g := relationships.NewGraph()
	e := New()
	c := reg.All()[0]
	ageBefore := c.Age

	// Day 1 is year zero; nobody ages.
	clock := &world.Clock{Tick: 1, Day: 1, Hour: 12}
	e.Tick(clock, reg, g, nil, r)
	if c.Age != ageBefore {
		t.Error("citizen aged on day 1")
	}

	// Crossing day 360 ages everyone exactly once.
	clock = &world.Clock{Tick: 2, Day: 360, Hour: 12}
	e.Tick(clock, reg, g, nil, r)
	if c.Age != ageBefore+1 {
		t.Errorf("age = %d, want %d after year boundary", c.Age, ageBefore+1)
	}
	clock = &world.Clock{Tick: 3, Day: 361, Hour: 12}
	e.Tick(clock, reg, g, nil, r)
	if c.Age != ageBefore+1 {
		t.Error("citizen aged twice in the same year")
	}
}

func TestMarriageSymmetricAndHappy(t *testing.T) {
	r := rng.New(3)
	reg := citizens.NewRegistry(r)
	g := relationships.NewGraph()
	e := New()

	// Two compatible singles with a strong lover edge.
	var him, her *citizens.Citizen
	for _, c := range reg.All() {
		if c.SpouseID != "" || c.Age < 20 {
			continue
		}
		if him == nil && c.Gender == citizens.Male {
			him = c
		} else if her == nil && c.Gender == citizens.Female {
			her = c
		}
	}
	if him == nil || her == nil {
		t.Fatal("no eligible pair in seed population")
	}
	g.SetScore(him.ID, her.ID, 90)
	g.SetType(him.ID, her.ID, relationships.TypeLover)
	him.Happiness = 50
	her.Happiness = 50

	married := false
	for i := 0; i < 200 && !married; i++ {
		e.checkMarriages(reg, g, r)
		married = him.SpouseID != ""
	}
	if !married {
		t.Fatal("no marriage in 200 passes at 15% per pass")
	}
	if him.SpouseID != her.ID || her.SpouseID != him.ID {
		t.Error("marriage links asymmetric")
	}
	if him.Happiness <= 50 || her.Happiness <= 50 {
		t.Error("wedding brought no joy")
	}
}

func TestDivorceRequiresMutualMisery(t *testing.T) {
	r := rng.New(4)
	reg := citizens.NewRegistry(r)
	e := New()

	var c *citizens.Citizen
	for _, cand := range reg.All() {
		if cand.SpouseID != "" {
			c = cand
			break
		}
	}
	spouse := reg.Get(c.SpouseID)

	// One happy spouse keeps the marriage intact.
	c.Happiness = 5
	spouse.Happiness = 90
	for i := 0; i < 300; i++ {
		e.checkDivorces(reg, r)
	}
	if c.SpouseID == "" {
		t.Fatal("marriage dissolved despite one happy spouse")
	}

	spouse.Happiness = 5
	divorced := false
	for i := 0; i < 500 && !divorced; i++ {
		e.checkDivorces(reg, r)
		divorced = c.SpouseID == ""
	}
	if !divorced {
		t.Fatal("no divorce in 500 passes of mutual misery")
	}
	if spouse.SpouseID != "" {
		t.Error("divorce left one side still married")
	}
}

func TestBirthLinksBothParents(t *testing.T) {
	r := rng.New(5)
	reg := citizens.NewRegistry(r)
	e := New()

	var c *citizens.Citizen
	for _, cand := range reg.All() {
		if cand.SpouseID != "" {
			c = cand
			break
		}
	}
	spouse := reg.Get(c.SpouseID)
	c.Happiness = 95
	spouse.Happiness = 95
	before := reg.Count()
	childrenBefore := len(c.ChildrenIDs)

	clock := &world.Clock{Tick: 10, Day: 1}
	born := false
	for i := 0; i < 3000 && !born; i++ {
		e.checkBirths(clock, reg, r)
		born = reg.Count() > before
	}
	if !born {
		t.Fatal("no birth in 3000 passes at 1% per pass")
	}

	if len(c.ChildrenIDs) != childrenBefore+1 {
		t.Fatalf("parent children = %d, want %d", len(c.ChildrenIDs), childrenBefore+1)
	}
	baby := reg.Get(c.ChildrenIDs[len(c.ChildrenIDs)-1])
	if baby == nil {
		t.Fatal("baby not in registry")
	}
	if baby.Age != 0 || baby.Role != citizens.RoleOffspring {
		t.Error("baby has wrong age or role")
	}
	if len(baby.ParentIDs) != 2 {
		t.Errorf("baby parents = %d, want 2", len(baby.ParentIDs))
	}
	for _, axis := range []float64{
		baby.Personality.Openness, baby.Personality.Conscientiousness,
		baby.Personality.Extraversion, baby.Personality.Agreeableness,
		baby.Personality.Neuroticism,
	} {
		if axis < 0.1 || axis > 0.95 {
			t.Errorf("baby personality axis %v outside [0.1, 0.95]", axis)
		}
	}
}

func TestFamilyNameSharedPrefix(t *testing.T) {
	r := rng.New(6)
	reg := citizens.NewRegistry(r)

	father := reg.ByName("Tanaka Kenichi")
	if father == nil {
		t.Fatal("seed citizen missing")
	}
	// Other Tanakas exist, so the shared prefix wins.
	if got := FamilyName(father, reg); got != "Tanaka" {
		t.Errorf("surname = %q, want Tanaka", got)
	}
}

func TestFamilyNameFallsBackToFirstWord(t *testing.T) {
	r := rng.New(7)
	reg := citizens.NewRegistry(r)
	lone, _ := reg.RegisterExternal("Zyx Qwerty", citizens.RoleEngineer, citizens.RandomPersonality(r), r)
	if got := FamilyName(lone, reg); got != "Zyx" {
		t.Errorf("surname = %q, want Zyx", got)
	}
}
