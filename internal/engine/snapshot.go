package engine

import (
	"time"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/economy"
	"github.com/soratane/aicity/internal/justice"
	"github.com/soratane/aicity/internal/ledger"
	"github.com/soratane/aicity/internal/lifecycle"
	"github.com/soratane/aicity/internal/polity"
	"github.com/soratane/aicity/internal/relationships"
	"github.com/soratane/aicity/internal/world"
)

// CitizenView is the serialized face of a citizen. Values are copied
// under the lock so the view stays stable after it is returned.
type CitizenView struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Age         int                   `json:"age"`
	Gender      string                `json:"gender"`
	Role        string                `json:"role"`
	Home        world.LocationID      `json:"home"`
	Location    world.LocationID      `json:"location"`
	Target      world.LocationID      `json:"target_location"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Money       int                   `json:"money"`
	Health      int                   `json:"health"`
	Happiness   int                   `json:"happiness"`
	Hunger      int                   `json:"hunger"`
	Mood        string                `json:"mood"`
	Action      string                `json:"action"`
	Employer    string                `json:"employer,omitempty"`
	Speaking    string                `json:"speaking,omitempty"`
	SpouseID    string                `json:"spouse_id,omitempty"`
	External    bool                  `json:"is_external"`
	Imprisoned  bool                  `json:"imprisoned"`
	HasRecord   bool                  `json:"has_criminal_record"`
	Personality citizens.Personality  `json:"personality"`
	Relations   relationships.Summary `json:"relations"`
	Balance     float64               `json:"token_balance"`
}

// WorldView is the environment slice of a snapshot.
type WorldView struct {
	Tick        int     `json:"tick"`
	Time        string  `json:"time"`
	Day         int     `json:"day"`
	Hour        int     `json:"hour"`
	Minute      int     `json:"minute"`
	Season      string  `json:"season"`
	Weather     string  `json:"weather"`
	Temperature float64 `json:"temperature_c"`
}

// GovernmentView is the polity slice of a snapshot. Laws and the
// active bill are value copies, not the engine's live pointers.
type GovernmentView struct {
	Laws            []polity.Law `json:"laws"`
	ActiveBill      *polity.Law  `json:"active_bill,omitempty"`
	PrimeMinister   string       `json:"prime_minister,omitempty"`
	ParliamentNames []string     `json:"parliament"`
	Treasury        int          `json:"treasury"`
	NextElectionDay int          `json:"next_election_day"`
}

// EconomyView is the market slice of a snapshot. Businesses are value
// copies.
type EconomyView struct {
	Businesses   []economy.Business `json:"businesses"`
	Prices       map[string]int     `json:"prices"`
	GDP          int                `json:"gdp"`
	Unemployment float64            `json:"unemployment"`
	Inflation    float64            `json:"inflation"`
	TaxRate      int                `json:"tax_rate"`
}

// LedgerView is the token slice of a snapshot.
type LedgerView struct {
	Treasury     float64              `json:"treasury"`
	TotalSupply  float64              `json:"total_supply"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// Snapshot is one consistent world view, taken atomically between
// ticks. Every field is detached from the live engines: callers (the
// websocket hub, persistence, handlers) marshal it outside the lock
// while later ticks keep mutating the world.
type Snapshot struct {
	World         WorldView               `json:"world"`
	Citizens      []CitizenView           `json:"citizens"`
	Locations     []world.Location        `json:"locations"`
	Conversations []citizens.Conversation `json:"conversations"`
	Government    GovernmentView          `json:"government"`
	Economy       EconomyView             `json:"economy"`
	Crimes        []justice.Crime         `json:"crimes"`
	Ledger        LedgerView              `json:"ledger"`
	Memorials     []lifecycle.Memorial    `json:"memorials"`
	News          []NewsItem              `json:"news"`
}

// citizenView copies one citizen. Caller holds the lock.
func (s *Simulation) citizenView(c *citizens.Citizen) CitizenView {
	return CitizenView{
		ID:          c.ID,
		Name:        c.Name,
		Age:         c.Age,
		Gender:      citizens.GenderName(c.Gender),
		Role:        citizens.RoleName(c.Role),
		Home:        c.Home,
		Location:    c.Location,
		Target:      c.TargetLocation,
		X:           c.X,
		Y:           c.Y,
		Money:       c.Money,
		Health:      c.Health,
		Happiness:   c.Happiness,
		Hunger:      c.Hunger,
		Mood:        c.Mood(),
		Action:      c.Action,
		Employer:    c.Employer,
		Speaking:    c.Speaking,
		SpouseID:    c.SpouseID,
		External:    c.External,
		Imprisoned:  s.Justice.IsImprisoned(c.ID),
		HasRecord:   s.Justice.HasRecord(c.ID),
		Personality: c.Personality,
		Relations:   s.Graph.SummaryFor(c.ID, s.Citizens),
		Balance:     s.Ledger.Balance(c.ID),
	}
}

// Snapshot captures the whole world under the lock.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.Citizens.All()
	views := make([]CitizenView, 0, len(all))
	for _, c := range all {
		views = append(views, s.citizenView(c))
	}

	var parliamentNames []string
	for _, pid := range s.Polity.ParliamentIDs {
		if c := s.Citizens.Get(pid); c != nil {
			parliamentNames = append(parliamentNames, c.Name)
		}
	}
	pmName := ""
	if pm := s.Citizens.Get(s.Polity.PrimeMinisterID); pm != nil {
		pmName = pm.Name
	}

	laws := make([]polity.Law, len(s.Polity.Laws))
	for i, l := range s.Polity.Laws {
		laws[i] = *l
	}
	var activeBill *polity.Law
	if s.Polity.ActiveBill != nil {
		cp := *s.Polity.ActiveBill
		activeBill = &cp
	}

	businesses := make([]economy.Business, len(s.Economy.Businesses))
	for i, b := range s.Economy.Businesses {
		businesses[i] = *b
	}

	recent := s.Justice.Recent(20)
	crimes := make([]justice.Crime, len(recent))
	for i, c := range recent {
		crimes[i] = *c
	}

	convs := make([]citizens.Conversation, len(s.Citizens.Conversations))
	copy(convs, s.Citizens.Conversations)

	memorials := make([]lifecycle.Memorial, len(s.Lifecycle.Memorials))
	copy(memorials, s.Lifecycle.Memorials)

	news := make([]NewsItem, len(s.news))
	copy(news, s.news)

	return Snapshot{
		World: WorldView{
			Tick:        s.Clock.Tick,
			Time:        s.Clock.Display(),
			Day:         s.Clock.Day,
			Hour:        s.Clock.Hour,
			Minute:      s.Clock.Minute,
			Season:      world.SeasonName(s.Clock.Season()),
			Weather:     s.Clock.Weather,
			Temperature: s.Thermometer.Celsius(s.Clock),
		},
		Citizens:      views,
		Locations:     world.Locations,
		Conversations: convs,
		Government: GovernmentView{
			Laws:            laws,
			ActiveBill:      activeBill,
			PrimeMinister:   pmName,
			ParliamentNames: parliamentNames,
			Treasury:        s.Polity.Treasury,
			NextElectionDay: s.Polity.NextElectionDay(),
		},
		Economy: EconomyView{
			Businesses:   businesses,
			Prices:       s.Economy.PriceTable(),
			GDP:          s.Economy.GDP,
			Unemployment: s.Economy.Unemployment,
			Inflation:    s.Economy.Inflation,
			TaxRate:      s.Economy.TaxRate,
		},
		Crimes: crimes,
		Ledger: LedgerView{
			Treasury:     s.Ledger.Treasury,
			TotalSupply:  s.Ledger.TotalSupply,
			Transactions: s.Ledger.Recent(20),
		},
		Memorials: memorials,
		News:      news,
	}
}

// CitizenByID returns one citizen's view plus their relationship list.
func (s *Simulation) CitizenByID(id string) (CitizenView, []relationships.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.Citizens.Get(id)
	if c == nil {
		return CitizenView{}, nil, false
	}
	return s.citizenView(c), s.Graph.For(id, s.Citizens), true
}

// Status is the lightweight health view.
type Status struct {
	Tick       int     `json:"tick"`
	Time       string  `json:"time"`
	Population int     `json:"population"`
	UptimeSecs float64 `json:"uptime_seconds"`
}

// CurrentStatus reports tick, time, and population.
func (s *Simulation) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Tick:       s.Clock.Tick,
		Time:       s.Clock.Display(),
		Population: s.Citizens.Count(),
		UptimeSecs: time.Since(s.startedAt).Seconds(),
	}
}
