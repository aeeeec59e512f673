// Package engine coordinates the subsystem engines into the fixed tick
// pipeline and serializes every entry point behind one lock. A tick and
// a snapshot never interleave: readers see either the world before a
// tick or after it, never the middle.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/economy"
	"github.com/soratane/aicity/internal/justice"
	"github.com/soratane/aicity/internal/ledger"
	"github.com/soratane/aicity/internal/lifecycle"
	"github.com/soratane/aicity/internal/polity"
	"github.com/soratane/aicity/internal/relationships"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// minutesPerTick is how much simulated time one tick covers.
const minutesPerTick = 10

// maxNews bounds the retained news feed.
const maxNews = 50

// NewsItem is one feed entry.
type NewsItem struct {
	Tick     int    `json:"tick"`
	Time     string `json:"time"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Simulation owns every subsystem and the single mutex that serializes
// ticks, snapshots, and external actions.
type Simulation struct {
	mu sync.Mutex

	Clock       *world.Clock
	Thermometer *world.Thermometer
	Citizens    *citizens.Registry
	Graph       *relationships.Graph
	Economy     *economy.Engine
	Polity      *polity.Engine
	Justice     *justice.Engine
	Lifecycle   *lifecycle.Engine
	Ledger      *ledger.Engine

	rand *rng.Provider
	log  *slog.Logger
	news []NewsItem // newest first

	startedAt time.Time
}

// New builds and seeds a fully initialized simulation.
func New(seed int64, logger *slog.Logger) *Simulation {
	r := rng.New(seed)
	s := &Simulation{
		Clock:       world.NewClock(),
		Thermometer: world.NewThermometer(seed),
		Citizens:    citizens.NewRegistry(r),
		Graph:       relationships.NewGraph(),
		Economy:     economy.New(),
		Polity:      polity.New(),
		Justice:     justice.New(),
		Lifecycle:   lifecycle.New(),
		Ledger:      ledger.New(),
		rand:        r,
		log:         logger,
		startedAt:   time.Now(),
	}

	s.Polity.InitParliament(s.Citizens)
	s.Economy.InitBusinesses(s.Citizens, r)
	s.Graph.InitFamilyBonds(s.Citizens)
	s.Ledger.InitWallets(s.Citizens)

	logger.Info("simulation initialized",
		"seed", seed,
		"population", s.Citizens.Count(),
		"businesses", len(s.Economy.Businesses),
		"parliament", len(s.Polity.ParliamentIDs))
	return s
}

// detacher bridges the lifecycle engine's death cleanup to the economy
// and polity without a package dependency between them.
type detacher struct {
	econ   *economy.Engine
	polity *polity.Engine
}

func (d detacher) RemoveEmployee(id string) { d.econ.RemoveEmployee(id) }
func (d detacher) RemoveMember(id string)   { d.polity.RemoveMember(id) }

// Tick advances the world one step. Subsystems run in a fixed order;
// each sees the writes of everything before it in the same tick.
func (s *Simulation) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Clock.Advance(minutesPerTick)
	s.Clock.MaybeChangeWeather(s.rand)

	s.Citizens.UpdateMovement(s.Clock.Hour, s.Justice.IsImprisoned, s.rand)
	s.Citizens.UpdateNeeds(s.rand)

	if s.Clock.Tick%3 == 0 {
		s.Citizens.GenerateConversations(s.rand)
	}

	var events []string
	events = append(events, s.Polity.Tick(s.Clock, s.Citizens, s.rand)...)
	events = append(events, s.Economy.Tick(s.Clock, s.Citizens, s.rand)...)
	events = append(events, s.Justice.Tick(s.Clock, s.Citizens, s.rand)...)
	events = append(events, s.Lifecycle.Tick(s.Clock, s.Citizens, s.Graph,
		detacher{s.Economy, s.Polity}, s.rand)...)

	s.Graph.Tick(s.Clock.Tick, s.Citizens, s.Justice.DrainFacts(), s.rand,
		func(text, category string) { s.addNews(text, category) })

	s.Ledger.Tick(s.Clock, s.Citizens, s.Polity.ParliamentIDs, s.rand)

	if s.Clock.Tick%20 == 0 {
		if ev := s.randomLifeEvent(); ev != "" {
			events = append(events, ev)
		}
	}

	for _, ev := range events {
		s.addNews(ev, "event")
	}

	if s.Clock.Tick%100 == 0 {
		s.log.Info("tick",
			"tick", s.Clock.Tick,
			"time", s.Clock.Display(),
			"weather", s.Clock.Weather,
			"population", s.Citizens.Count())
	}
}

// addNews prepends to the bounded feed. Callers hold the lock.
func (s *Simulation) addNews(text, category string) {
	item := NewsItem{
		Tick:     s.Clock.Tick,
		Time:     s.Clock.Display(),
		Text:     text,
		Category: category,
	}
	s.news = append([]NewsItem{item}, s.news...)
	if len(s.news) > maxNews {
		s.news = s.news[:maxNews]
	}
}

// News returns a copy of the feed, newest first.
func (s *Simulation) News() []NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NewsItem, len(s.news))
	copy(out, s.news)
	return out
}
