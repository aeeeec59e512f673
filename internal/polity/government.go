// Package polity runs the legislative body: bill proposal and voting,
// elections, and daily taxation into the treasury.
package polity

import (
	"fmt"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// BillStatus is the bill lifecycle state machine.
type BillStatus string

const (
	StatusProposed BillStatus = "proposed"
	StatusVoting   BillStatus = "voting"
	StatusEnacted  BillStatus = "enacted"
	StatusRejected BillStatus = "rejected"
)

// Law is a bill at any lifecycle stage; enacted laws stay on the books.
type Law struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Status       BillStatus `json:"status"`
	VotesFor     int        `json:"votes_for"`
	VotesAgainst int        `json:"votes_against"`
	ProposedBy   string     `json:"proposed_by,omitempty"`
}

type lawDef struct{ name, description string }

var lawPool = []lawDef{
	{"Minimum Wage Act", "Raise the minimum wage by 15%"},
	{"Digital Government Act", "Fully digitize administrative procedures"},
	{"Child Support Act", "Monthly allowance per child"},
	{"Renewable Energy Act", "50% renewable energy by 2030"},
	{"Tourism Promotion Act", "Expand subsidies for the tourism sector"},
	{"Healthcare Cost Act", "Cut patient co-payments to 20%"},
	{"Working Hours Act", "Introduce a 35-hour work week"},
	{"Farm Subsidy Act", "Direct payments to farming households"},
	{"Transit Infrastructure Act", "Build a new rail line"},
	{"Cultural Grants Act", "Double arts and culture funding"},
	{"Disaster Preparedness Act", "Major increase in disaster budgets"},
	{"Elder Care Act", "Make elder care free of charge"},
	{"IT Education Act", "Mandatory programming classes in schools"},
	{"Food Safety Act", "Stricter food inspection standards"},
	{"Housing Support Act", "Preferential mortgage rates for the young"},
	{"Startup Incentive Act", "Tax breaks for new businesses"},
}

// parliamentSize is the fixed number of seats.
const parliamentSize = 5

// electionInterval is how many days pass between elections.
const electionInterval = 120

// dailyTaxRate is levied proportionally on every citizen's money once
// per day.
const dailyTaxRate = 0.001

// Engine is the government: seats, laws, the single active bill, and
// the treasury.
type Engine struct {
	Laws            []*Law
	ActiveBill      *Law
	ParliamentIDs   []string
	PrimeMinisterID string
	Treasury        int

	electionDay      int
	nextProposalTick int
	voteTick         int
	usedLaws         map[string]bool
}

// New creates the engine with the pre-enacted seed laws.
func New() *Engine {
	return &Engine{
		Laws: []*Law{
			{Name: "Consumption Tax Act", Description: "8% consumption tax", Status: StatusEnacted},
			{Name: "Basic Education Act", Description: "Guaranteed schooling and equal access", Status: StatusEnacted},
			{Name: "Environmental Protection Act", Description: "Pollution control and nature conservation", Status: StatusEnacted},
		},
		Treasury:    50000,
		electionDay: electionInterval,
		usedLaws:    make(map[string]bool),
	}
}

// InitParliament seats up to parliamentSize legislators and makes the
// first of them prime minister.
func (e *Engine) InitParliament(reg *citizens.Registry) {
	members := reg.ByRole(citizens.RoleLegislator)
	if len(members) > parliamentSize {
		members = members[:parliamentSize]
	}
	e.ParliamentIDs = e.ParliamentIDs[:0]
	for _, m := range members {
		e.ParliamentIDs = append(e.ParliamentIDs, m.ID)
	}
	if len(e.ParliamentIDs) > 0 {
		e.PrimeMinisterID = e.ParliamentIDs[0]
	}
}

// Tick processes elections, proposals, votes, and daily taxes.
func (e *Engine) Tick(clock *world.Clock, reg *citizens.Registry, r *rng.Provider) []string {
	var events []string

	if clock.Day >= e.electionDay {
		events = append(events, e.holdElection(reg, r)...)
		e.electionDay = clock.Day + electionInterval
	}

	if e.ActiveBill == nil && clock.Tick >= e.nextProposalTick {
		if ev := e.proposeLaw(reg, r); ev != "" {
			events = append(events, ev)
		}
		e.nextProposalTick = clock.Tick + r.Between(150, 250)
	}

	if e.ActiveBill != nil && e.ActiveBill.Status == StatusVoting && clock.Tick >= e.voteTick {
		events = append(events, e.processVote(reg, r)...)
	}

	// Daily tax at midnight (first tick inside the hour).
	if clock.Hour == 0 && clock.Minute < 10 {
		e.collectTaxes(reg)
	}

	return events
}

func (e *Engine) proposeLaw(reg *citizens.Registry, r *rng.Provider) string {
	var available []lawDef
	for _, def := range lawPool {
		if !e.usedLaws[def.name] {
			available = append(available, def)
		}
	}
	if len(available) == 0 {
		// Pool exhausted; start the cycle over.
		e.usedLaws = make(map[string]bool)
		available = lawPool
	}
	if len(e.ParliamentIDs) == 0 {
		return ""
	}
	proposer := reg.Get(rng.Pick(r, e.ParliamentIDs))
	if proposer == nil {
		return ""
	}
	def := rng.Pick(r, available)
	e.usedLaws[def.name] = true
	e.ActiveBill = &Law{
		Name:        def.name,
		Description: def.description,
		Status:      StatusVoting,
		ProposedBy:  proposer.Name,
	}
	e.voteTick = 0 // vote resolves on the next pass
	return fmt.Sprintf("🏛️ %s has proposed the %s", proposer.Name, def.name)
}

func (e *Engine) processVote(reg *citizens.Registry, r *rng.Provider) []string {
	bill := e.ActiveBill
	if bill == nil {
		return nil
	}
	for _, pid := range e.ParliamentIDs {
		c := reg.Get(pid)
		if c == nil {
			continue
		}
		// Agreeable members lean yes; everyone has a baseline chance.
		if r.Chance(c.Personality.Agreeableness*0.5 + 0.3) {
			bill.VotesFor++
		} else {
			bill.VotesAgainst++
		}
	}
	events := []string{e.ResolveBill(bill)}
	e.ActiveBill = nil
	return events
}

// ResolveBill finalizes a bill from its tallies. A tie rejects: "for"
// must strictly exceed "against". Enacted bills join the law list.
func (e *Engine) ResolveBill(bill *Law) string {
	if bill.VotesFor > bill.VotesAgainst {
		bill.Status = StatusEnacted
		e.Laws = append(e.Laws, bill)
		return fmt.Sprintf("🏛️ The %s passed (%d for, %d against)", bill.Name, bill.VotesFor, bill.VotesAgainst)
	}
	bill.Status = StatusRejected
	return fmt.Sprintf("❌ The %s was voted down (%d for, %d against)", bill.Name, bill.VotesFor, bill.VotesAgainst)
}

func (e *Engine) holdElection(reg *citizens.Registry, r *rng.Provider) []string {
	if len(e.ParliamentIDs) == 0 {
		return []string{"🗳️ An election was held"}
	}
	e.PrimeMinisterID = rng.Pick(r, e.ParliamentIDs)
	if pm := reg.Get(e.PrimeMinisterID); pm != nil {
		return []string{fmt.Sprintf("🗳️ Election held! %s is the new prime minister", pm.Name)}
	}
	return []string{"🗳️ An election was held"}
}

func (e *Engine) collectTaxes(reg *citizens.Registry) {
	total := 0
	for _, c := range reg.All() {
		tax := int(float64(c.Money) * dailyTaxRate)
		c.Money -= tax
		total += tax
	}
	e.Treasury += total
}

// RemoveMember drops a dead citizen from parliament (and the PM seat).
func (e *Engine) RemoveMember(citizenID string) {
	for i, pid := range e.ParliamentIDs {
		if pid == citizenID {
			e.ParliamentIDs = append(e.ParliamentIDs[:i], e.ParliamentIDs[i+1:]...)
			break
		}
	}
	if e.PrimeMinisterID == citizenID {
		e.PrimeMinisterID = ""
		if len(e.ParliamentIDs) > 0 {
			e.PrimeMinisterID = e.ParliamentIDs[0]
		}
	}
}

// NextElectionDay reports when the next election falls due.
func (e *Engine) NextElectionDay() int {
	return e.electionDay
}
