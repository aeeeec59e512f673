package relationships

import (
	"testing"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
)

func TestScoreSymmetricAcrossKeyOrder(t *testing.T) {
	g := NewGraph()
	g.SetScore("b", "a", 42)
	if got := g.Score("a", "b"); got != 42 {
		t.Errorf("Score(a,b) = %d, want 42", got)
	}
	g.ChangeScore("a", "b", 8)
	if got := g.Score("b", "a"); got != 50 {
		t.Errorf("Score(b,a) = %d, want 50", got)
	}
}

func TestScoreClamped(t *testing.T) {
	g := NewGraph()
	g.ChangeScore("a", "b", 150)
	if got := g.Score("a", "b"); got != 100 {
		t.Errorf("score = %d, want clamp at 100", got)
	}
	g.ChangeScore("a", "b", -500)
	if got := g.Score("a", "b"); got != -100 {
		t.Errorf("score = %d, want clamp at -100", got)
	}
}

func TestTypeThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  RelType
	}{
		{85, TypeFriend},
		{70, TypeFriend},
		{55, TypeColleague},
		{40, TypeColleague},
		{0, TypeAcquaintance},
		{-10, TypeAcquaintance},
		{-20, TypeNeighbor},
		{-49, TypeNeighbor},
		{-50, TypeEnemy},
		{-100, TypeEnemy},
	}
	for _, tc := range cases {
		g := NewGraph()
		g.SetScore("a", "b", tc.score)
		if got := g.Type("a", "b"); got != tc.want {
			t.Errorf("score %d: type = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestExplicitTypeOverridesScore(t *testing.T) {
	g := NewGraph()
	g.SetScore("a", "b", -80)
	g.SetType("a", "b", TypeLover)
	if got := g.Type("b", "a"); got != TypeLover {
		t.Errorf("type = %s, want lover override", got)
	}
}

func TestForFiltersDeadCounterparts(t *testing.T) {
	r := rng.New(9)
	reg := citizens.NewRegistry(r)
	all := reg.All()
	alive, dead := all[0], all[1]

	g := NewGraph()
	g.SetScore(alive.ID, dead.ID, 60)
	g.SetScore(alive.ID, all[2].ID, 30)

	reg.Remove(dead.ID)

	for _, e := range g.For(alive.ID, reg) {
		if e.CitizenID == dead.ID {
			t.Fatal("dead counterpart leaked into relationship listing")
		}
	}
	if n := len(g.For(alive.ID, reg)); n != 1 {
		t.Errorf("listing size = %d, want 1", n)
	}
}

func TestForSortedBestFirst(t *testing.T) {
	r := rng.New(10)
	reg := citizens.NewRegistry(r)
	all := reg.All()

	g := NewGraph()
	g.SetScore(all[0].ID, all[1].ID, 10)
	g.SetScore(all[0].ID, all[2].ID, 90)
	g.SetScore(all[0].ID, all[3].ID, -40)

	entries := g.For(all[0].ID, reg)
	for i := 1; i < len(entries); i++ {
		if entries[i].Score > entries[i-1].Score {
			t.Fatalf("entries not sorted descending: %v", entries)
		}
	}
	if entries[0].Score != 90 {
		t.Errorf("best score = %d, want 90", entries[0].Score)
	}
}

func TestGrudgeRecordedFromCrimeFact(t *testing.T) {
	r := rng.New(11)
	reg := citizens.NewRegistry(r)
	all := reg.All()
	perp, victim := all[0], all[1]

	g := NewGraph()
	g.SetScore(perp.ID, victim.ID, 10)

	facts := []CrimeFact{{
		ID: "c1", TypeLabel: "theft",
		PerpetratorID: perp.ID, VictimID: victim.ID,
	}}
	g.Tick(4, reg, facts, r, func(string, string) {})

	if !g.HasGrudge(victim.ID, perp.ID) {
		t.Error("victim holds no grudge after crime")
	}
	if got := g.Score(perp.ID, victim.ID); got != -10 {
		t.Errorf("score after crime = %d, want -10", got)
	}
}

func TestTickSkipsOffBeatTicks(t *testing.T) {
	r := rng.New(12)
	reg := citizens.NewRegistry(r)
	all := reg.All()

	g := NewGraph()
	facts := []CrimeFact{{ID: "c1", TypeLabel: "theft", PerpetratorID: all[0].ID, VictimID: all[1].ID}}
	g.Tick(3, reg, facts, r, func(string, string) {})

	if g.HasGrudge(all[1].ID, all[0].ID) {
		t.Error("relationship pass ran on an off-beat tick")
	}
}

func TestLoverOfHonorsEligibilityAndMinScore(t *testing.T) {
	g := NewGraph()
	g.SetScore("me", "low", 40)
	g.SetType("me", "low", TypeLover)
	g.SetScore("me", "high", 80)
	g.SetType("me", "high", TypeLover)
	g.SetScore("me", "friend", 95) // untyped, must not count

	id, score := g.LoverOf("me", 50, nil)
	if id != "high" || score != 80 {
		t.Errorf("LoverOf = %s/%d, want high/80", id, score)
	}

	id, _ = g.LoverOf("me", 50, func(id string) bool { return id != "high" })
	if id != "" {
		t.Errorf("LoverOf with high excluded = %s, want none", id)
	}
}

func TestInitFamilyBondsSeedsSpouses(t *testing.T) {
	r := rng.New(13)
	reg := citizens.NewRegistry(r)
	g := NewGraph()
	g.InitFamilyBonds(reg)

	for _, c := range reg.All() {
		if c.SpouseID == "" {
			continue
		}
		if got := g.Score(c.ID, c.SpouseID); got != 80 {
			t.Errorf("%s spouse score = %d, want 80", c.Name, got)
		}
		if got := g.Type(c.ID, c.SpouseID); got != TypeLover {
			t.Errorf("%s spouse type = %s, want lover", c.Name, got)
		}
	}
}
