package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/soratane/aicity/internal/world"
)

func newTestSim(seed int64) *Simulation {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(seed, logger)
}

func TestTickAdvancesClock(t *testing.T) {
	s := newTestSim(1)
	s.Tick()
	if s.Clock.Tick != 1 || s.Clock.Minute != 10 {
		t.Errorf("after one tick: tick=%d minute=%d, want 1/10", s.Clock.Tick, s.Clock.Minute)
	}
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if s.Clock.Hour != 7 {
		t.Errorf("hour = %d, want 7 after one simulated hour", s.Clock.Hour)
	}
}

// fingerprint flattens a snapshot into sorted per-citizen state lines
// so two worlds can be compared regardless of listing order.
func fingerprint(s *Simulation) []string {
	snap := s.Snapshot()
	out := make([]string, 0, len(snap.Citizens))
	for _, c := range snap.Citizens {
		out = append(out, fmt.Sprintf("%s|%s|%d|%d|%d|%d",
			c.Name, c.Location, c.Money, c.Health, c.Happiness, c.Hunger))
	}
	sort.Strings(out)
	return out
}

func TestSameSeedSameWorld(t *testing.T) {
	a := newTestSim(99)
	b := newTestSim(99)
	for i := 0; i < 100; i++ {
		a.Tick()
		b.Tick()
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if sa.World.Weather != sb.World.Weather {
		t.Errorf("weather diverged: %s vs %s", sa.World.Weather, sb.World.Weather)
	}
	if sa.Ledger.TotalSupply != sb.Ledger.TotalSupply {
		t.Errorf("supply diverged: %v vs %v", sa.Ledger.TotalSupply, sb.Ledger.TotalSupply)
	}

	fa, fb := fingerprint(a), fingerprint(b)
	if len(fa) != len(fb) {
		t.Fatalf("populations diverged: %d vs %d", len(fa), len(fb))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Errorf("citizen state diverged between identical seeds:\n  %s\n  %s", fa[i], fb[i])
		}
	}
}

func TestDifferentSeedsDifferentWorlds(t *testing.T) {
	a := newTestSim(1)
	b := newTestSim(2)
	for i := 0; i < 100; i++ {
		a.Tick()
		b.Tick()
	}
	fa, fb := fingerprint(a), fingerprint(b)
	same := len(fa) == len(fb)
	if same {
		for i := range fa {
			if fa[i] != fb[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("seeds 1 and 2 produced identical worlds after 100 ticks")
	}
}

func TestRegisterExternalIssuesWorkingToken(t *testing.T) {
	s := newTestSim(2)
	view, token, err := s.RegisterExternal("Nomad Nia", "engineer")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("empty token issued")
	}
	if !view.External {
		t.Error("registered citizen not marked external")
	}

	ack, err := s.ApplyExternalAction(view.ID, token, ActionRequest{Type: "speak", Message: "hello"})
	if err != nil {
		t.Errorf("valid action refused: %v", err)
	}
	if ack.Status != "speaking" {
		t.Errorf("ack status = %q, want speaking", ack.Status)
	}
}

func TestRegisterExternalRejectsEmptyName(t *testing.T) {
	s := newTestSim(3)
	if _, _, err := s.RegisterExternal("   ", "chef"); err == nil {
		t.Error("blank name accepted")
	}
}

func TestActionUnknownCitizen(t *testing.T) {
	s := newTestSim(4)
	_, err := s.ApplyExternalAction("no-such-id", "any", ActionRequest{Type: "work"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestActionBadTokenLeavesStateUnchanged(t *testing.T) {
	s := newTestSim(5)
	view, _, err := s.RegisterExternal("Nomad Noa", "chef")
	if err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	_, err = s.ApplyExternalAction(view.ID, "forged-token", ActionRequest{Type: "work"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	after := s.Snapshot()
	var b, a CitizenView
	for _, c := range before.Citizens {
		if c.ID == view.ID {
			b = c
		}
	}
	for _, c := range after.Citizens {
		if c.ID == view.ID {
			a = c
		}
	}
	if b.Money != a.Money || b.Action != a.Action || b.Hunger != a.Hunger {
		t.Error("refused action mutated the citizen")
	}
}

func TestActionNativeCitizenUnauthorized(t *testing.T) {
	s := newTestSim(6)
	native := s.Snapshot().Citizens[0]
	_, err := s.ApplyExternalAction(native.ID, "anything", ActionRequest{Type: "work"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized for a native citizen", err)
	}
}

func TestMoveActionValidatesTarget(t *testing.T) {
	s := newTestSim(7)
	view, token, _ := s.RegisterExternal("Nomad Rei", "artist")

	_, err := s.ApplyExternalAction(view.ID, token, ActionRequest{Type: "move", Target: "atlantis"})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}

	ack, err := s.ApplyExternalAction(view.ID, token, ActionRequest{Type: "move", Target: string(world.LocPark)})
	if err != nil {
		t.Errorf("valid move refused: %v", err)
	}
	if ack.Status != "moving" || ack.Target != string(world.LocPark) {
		t.Errorf("ack = %+v, want moving toward park", ack)
	}
	if c := s.Citizens.Get(view.ID); c.TargetLocation != world.LocPark {
		t.Errorf("target = %s, want park", c.TargetLocation)
	}
}

func TestUnknownActionVerb(t *testing.T) {
	s := newTestSim(8)
	view, token, _ := s.RegisterExternal("Nomad Kit", "farmer")
	_, err := s.ApplyExternalAction(view.ID, token, ActionRequest{Type: "fly"})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestWorkActionPaysAndTires(t *testing.T) {
	s := newTestSim(9)
	view, token, _ := s.RegisterExternal("Nomad Joi", "merchant")
	c := s.Citizens.Get(view.ID)
	moneyBefore, hungerBefore := c.Money, c.Hunger

	ack, err := s.ApplyExternalAction(view.ID, token, ActionRequest{Type: "work"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Money != moneyBefore+100 {
		t.Errorf("money = %d, want %d", c.Money, moneyBefore+100)
	}
	if c.Hunger != hungerBefore+5 {
		t.Errorf("hunger = %d, want %d", c.Hunger, hungerBefore+5)
	}
	if ack.Status != "working" || ack.Money != c.Money {
		t.Errorf("ack = %+v, want working with money %d", ack, c.Money)
	}
}

func TestSnapshotInternallyConsistent(t *testing.T) {
	s := newTestSim(10)
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	snap := s.Snapshot()

	if snap.World.Tick != 30 {
		t.Errorf("snapshot tick = %d, want 30", snap.World.Tick)
	}
	if len(snap.Citizens) == 0 {
		t.Fatal("snapshot has no citizens")
	}
	for _, c := range snap.Citizens {
		if world.Lookup(c.Location) == nil && c.Location != c.Target {
			t.Errorf("%s at unknown location %s", c.Name, c.Location)
		}
		if c.Health < 0 || c.Health > 100 || c.Happiness < 0 || c.Happiness > 100 {
			t.Errorf("%s vitals out of range", c.Name)
		}
	}
	if len(snap.Locations) != len(world.Locations) {
		t.Error("snapshot location list incomplete")
	}
	if snap.Government.Treasury < 0 {
		t.Error("negative treasury")
	}
}

func TestSnapshotDetachedFromLiveState(t *testing.T) {
	s := newTestSim(12)
	for i := 0; i < 60; i++ {
		s.Tick()
	}
	snap := s.Snapshot()
	revenues := make([]int, len(snap.Economy.Businesses))
	for i, b := range snap.Economy.Businesses {
		revenues[i] = b.Revenue
	}
	lawCount := len(snap.Government.Laws)
	convCount := len(snap.Conversations)

	// Mutate the live world directly and through further ticks; the
	// snapshot must not move.
	s.Economy.Businesses[0].Revenue += 99999
	s.Polity.Laws[0].Status = "amended"
	for i := 0; i < 60; i++ {
		s.Tick()
	}

	for i, b := range snap.Economy.Businesses {
		if b.Revenue != revenues[i] {
			t.Errorf("snapshot business %s revenue changed: %d -> %d", b.Name, revenues[i], b.Revenue)
		}
	}
	if snap.Government.Laws[0].Status == "amended" {
		t.Error("snapshot law aliases the live law")
	}
	if len(snap.Government.Laws) != lawCount {
		t.Errorf("snapshot law count changed: %d -> %d", lawCount, len(snap.Government.Laws))
	}
	if len(snap.Conversations) != convCount {
		t.Errorf("snapshot conversations changed: %d -> %d", convCount, len(snap.Conversations))
	}
}

func TestNewsBounded(t *testing.T) {
	s := newTestSim(11)
	for i := 0; i < 200; i++ {
		s.addNewsLocked("item", "test")
	}
	if len(s.News()) > maxNews {
		t.Errorf("news = %d entries, cap is %d", len(s.News()), maxNews)
	}
}

// addNewsLocked wraps addNews with the lock for test use.
func (s *Simulation) addNewsLocked(text, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addNews(text, category)
}
