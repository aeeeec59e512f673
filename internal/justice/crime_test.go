package justice

import (
	"testing"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

func TestIncarcerationPinsLocationUntilRelease(t *testing.T) {
	r := rng.New(1)
	reg := citizens.NewRegistry(r)
	e := New()
	c := reg.All()[0]

	e.Incarcerate(c.ID, 30)
	if !e.IsImprisoned(c.ID) {
		t.Fatal("citizen not imprisoned after Incarcerate")
	}

	// While serving, every tick pins them to the police station even if
	// something teleported them away.
	for tick := 1; tick < 30; tick++ {
		c.SetLocation(world.LocPark, r)
		clock := &world.Clock{Tick: tick, Hour: 12, Day: 1}
		e.Tick(clock, reg, r)
		if c.Location != world.LocPolice {
			t.Fatalf("tick %d: jailed citizen at %s, want police", tick, c.Location)
		}
	}

	clock := &world.Clock{Tick: 30, Hour: 12, Day: 1}
	events := e.Tick(clock, reg, r)
	if e.IsImprisoned(c.ID) {
		t.Error("citizen still imprisoned at release tick")
	}
	if c.Location != c.Home {
		t.Errorf("released citizen at %s, want home", c.Location)
	}
	if len(events) == 0 {
		t.Error("release produced no event")
	}
}

func TestImprisonedCitizensCommitNoCrimes(t *testing.T) {
	r := rng.New(2)
	reg := citizens.NewRegistry(r)
	e := New()

	// Make everyone maximally crime-prone, then jail them all.
	for _, c := range reg.All() {
		c.Money = 0
		c.Personality.Conscientiousness = 0.1
		e.Incarcerate(c.ID, 1000)
	}
	for tick := 5; tick <= 100; tick += 5 {
		clock := &world.Clock{Tick: tick, Hour: 12, Day: 1}
		e.Tick(clock, reg, r)
	}
	if len(e.Recent(10)) != 0 {
		t.Error("jailed citizens committed crimes")
	}
}

func TestCrimeLabels(t *testing.T) {
	if Theft.Label() != "theft" || Smuggling.Label() != "smuggling" {
		t.Error("crime labels broken")
	}
}

func TestBrokeCarelessCitizensEventuallySteal(t *testing.T) {
	r := rng.New(3)
	reg := citizens.NewRegistry(r)
	e := New()

	for _, c := range reg.All() {
		c.Money = 0
		c.Personality.Conscientiousness = 0.1
		c.SetLocation(world.LocMarket, r)
	}

	committed := false
	for tick := 5; tick <= 500 && !committed; tick += 5 {
		clock := &world.Clock{Tick: tick, Hour: 12, Day: 1}
		e.Tick(clock, reg, r)
		committed = len(e.Recent(1)) > 0
	}
	if !committed {
		t.Fatal("no crime in 100 evaluations of a maximally tempted population")
	}

	crime := e.Recent(1)[0]
	if crime.Status == StatusCommitted {
		t.Error("crime left unadjudicated")
	}
	if crime.PerpetratorID == "" || crime.TypeLabel == "" {
		t.Error("crime record incomplete")
	}
}

func TestConvictionLeavesRecordAndFine(t *testing.T) {
	r := rng.New(4)
	reg := citizens.NewRegistry(r)
	e := New()

	perp := reg.All()[0]
	perp.Money = 1000
	perp.Happiness = 80

	crime := e.newCrime(Theft, perp, nil, 300, &world.Clock{Tick: 10, Hour: 12, Day: 1}, r)
	crime.WitnessIDs = []string{"w1", "w2", "w3", "w4", "w5"}
	e.push(crime)

	// With five witnesses evidence is near the ceiling; retry until the
	// roll convicts.
	for i := 0; i < 50 && crime.Status != StatusGuilty; i++ {
		crime.Status = StatusDetected
		e.arrestAndTry(crime, &world.Clock{Tick: 10, Hour: 12, Day: 1}, reg, r)
	}
	if crime.Status != StatusGuilty {
		t.Fatal("no conviction in 50 near-certain trials")
	}
	if !e.HasRecord(perp.ID) {
		t.Error("conviction left no criminal record")
	}
	if !e.IsImprisoned(perp.ID) {
		t.Error("convicted citizen not jailed")
	}
	if crime.Fine != 500 {
		t.Errorf("fine = %d, want 500 for theft", crime.Fine)
	}
}

func TestRecentBounded(t *testing.T) {
	r := rng.New(5)
	reg := citizens.NewRegistry(r)
	e := New()
	perp := reg.All()[0]

	for i := 0; i < maxCrimes+50; i++ {
		e.push(e.newCrime(Theft, perp, nil, 10, &world.Clock{Tick: i, Day: 1}, r))
	}
	if len(e.crimes) != maxCrimes {
		t.Errorf("retained crimes = %d, want %d", len(e.crimes), maxCrimes)
	}
	if got := e.Recent(10); len(got) != 10 {
		t.Errorf("Recent(10) = %d entries", len(got))
	}
	// Newest first.
	if e.Recent(1)[0].Tick != maxCrimes+49 {
		t.Errorf("newest crime tick = %d, want %d", e.Recent(1)[0].Tick, maxCrimes+49)
	}
}

func TestDrainFactsClearsBuffer(t *testing.T) {
	r := rng.New(6)
	reg := citizens.NewRegistry(r)
	e := New()

	for _, c := range reg.All() {
		c.Money = 0
		c.Personality.Conscientiousness = 0.1
	}
	for tick := 5; tick <= 200; tick += 5 {
		clock := &world.Clock{Tick: tick, Hour: 12, Day: 1}
		e.Tick(clock, reg, r)
		if len(e.pendingFacts) > 0 {
			break
		}
	}
	if len(e.pendingFacts) == 0 {
		t.Skip("no crime generated; nothing to drain")
	}
	facts := e.DrainFacts()
	if len(facts) == 0 {
		t.Fatal("drain returned nothing despite pending facts")
	}
	if len(e.DrainFacts()) != 0 {
		t.Error("second drain returned stale facts")
	}
}
