// Package economy runs businesses, the price table, and macro
// aggregates (GDP, unemployment, inflation).
package economy

import (
	"fmt"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// PriceCategory enumerates the goods baskets tracked by the price
// index.
type PriceCategory uint8

const (
	PriceFood PriceCategory = iota
	PriceHousing
	PriceClothing
	PriceTools
	PriceServices
	PriceEntertainment
	numPriceCategories
)

var priceCategoryNames = [numPriceCategories]string{
	PriceFood:          "food",
	PriceHousing:       "housing",
	PriceClothing:      "clothing",
	PriceTools:         "tools",
	PriceServices:      "services",
	PriceEntertainment: "entertainment",
}

var basePrices = [numPriceCategories]int{
	PriceFood:          120,
	PriceHousing:       500,
	PriceClothing:      200,
	PriceTools:         150,
	PriceServices:      300,
	PriceEntertainment: 250,
}

// Business is a revenue-generating firm. Created once at init, never
// destroyed.
type Business struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	OwnerName   string   `json:"owner"`
	OwnerID     string   `json:"-"`
	EmployeeIDs []string `json:"-"`
	Revenue     int      `json:"revenue"`
	BaseSalary  int      `json:"base_salary"`
}

type businessDef struct {
	name, category, owner string
}

var businessDefs = []businessDef{
	{"Tanaka Farm", "agriculture", "Tanaka Kenichi"},
	{"Kato Trading", "retail", "Kato Takeshi"},
	{"Morita Workshop", "manufacturing", "Morita Kenta"},
	{"Sato Diner", "dining", "Sato Daisuke"},
	{"Kimura General Store", "retail", "Kimura Haruka"},
	{"Inoue Tech", "IT", "Inoue Takuya"},
	{"Yoshida Kitchen", "dining", "Yoshida Megumi"},
	{"Matsumoto Atelier", "arts", "Matsumoto Mai"},
}

// maxEmployees caps headcount per business during initial assignment.
const maxEmployees = 5

// Engine holds the business roster, the price index, and macro stats.
type Engine struct {
	Businesses   []*Business
	Prices       [numPriceCategories]int
	GDP          int
	Unemployment float64 // percent
	Inflation    float64 // percent
	TaxRate      int     // flat, percent
}

// New creates the engine with prices at base and default macro stats.
func New() *Engine {
	e := &Engine{
		GDP:          100000,
		Unemployment: 5.0,
		Inflation:    2.0,
		TaxRate:      8,
	}
	e.Prices = basePrices
	return e
}

// InitBusinesses instantiates the fixed firms and greedily assigns all
// unemployed, non-legislative, non-judicial citizens to whatever still
// has capacity.
func (e *Engine) InitBusinesses(reg *citizens.Registry, r *rng.Provider) {
	for _, def := range businessDefs {
		b := &Business{
			Name:       def.name,
			Category:   def.category,
			OwnerName:  def.owner,
			BaseSalary: r.Between(400, 700),
		}
		if owner := reg.ByName(def.owner); owner != nil {
			b.OwnerID = owner.ID
		}
		e.Businesses = append(e.Businesses, b)
	}

	var unassigned []*citizens.Citizen
	for _, c := range reg.All() {
		if c.Role != citizens.RoleLegislator && c.Role != citizens.RoleJudge && c.Employer == "" {
			unassigned = append(unassigned, c)
		}
	}
	rng.Shuffle(r, unassigned)
	for _, c := range unassigned {
		for _, b := range e.Businesses {
			if len(b.EmployeeIDs) < maxEmployees && b.OwnerID != c.ID {
				b.EmployeeIDs = append(b.EmployeeIDs, c.ID)
				c.Employer = b.Name
				c.Salary = b.BaseSalary
				break
			}
		}
	}
}

// Tick advances prices, revenue, payroll, and macro stats.
func (e *Engine) Tick(clock *world.Clock, reg *citizens.Registry, r *rng.Provider) []string {
	var events []string

	// Small random drift on one price category.
	if r.Chance(0.15) {
		cat := PriceCategory(r.IntN(int(numPriceCategories)))
		e.Prices[cat] += r.Between(-10, 10)
		if e.Prices[cat] < 50 {
			e.Prices[cat] = 50
		}
	}

	// Payroll runs once per day at 18:00 (first tick inside the hour).
	if clock.Hour == 18 && clock.Minute < 10 {
		e.paySalaries(reg)
	}

	// Revenue accrual.
	for _, b := range e.Businesses {
		if r.Chance(0.3) {
			b.Revenue += r.Between(100, 500)
		}
	}

	if clock.Tick%50 == 0 {
		e.updateMacro(reg)
	}

	// Rare price spike.
	if r.Chance(0.002) {
		cat := PriceCategory(r.IntN(int(numPriceCategories)))
		e.Prices[cat] = e.Prices[cat] * 13 / 10
		events = append(events, fmt.Sprintf("📈 %s prices are spiking!", priceCategoryNames[cat]))
	}

	return events
}

func (e *Engine) paySalaries(reg *citizens.Registry) {
	for _, b := range e.Businesses {
		for _, eid := range b.EmployeeIDs {
			c := reg.Get(eid)
			if c == nil {
				continue // employee died; skip, cleaned lazily
			}
			c.Money += b.BaseSalary
			b.Revenue -= b.BaseSalary
		}
	}
}

func (e *Engine) updateMacro(reg *citizens.Registry) {
	all := reg.All()
	totalMoney := 0
	employed := 0
	for _, c := range all {
		totalMoney += c.Money
		if c.Employer != "" {
			employed++
		}
	}
	bizRevenue := 0
	for _, b := range e.Businesses {
		bizRevenue += b.Revenue
	}
	e.GDP = totalMoney + bizRevenue

	total := len(all)
	if total == 0 {
		total = 1
	}
	e.Unemployment = round1((1 - float64(employed)/float64(total)) * 100)

	totalDrift := 0
	for cat := PriceCategory(0); cat < numPriceCategories; cat++ {
		totalDrift += e.Prices[cat] - basePrices[cat]
	}
	e.Inflation = round1(float64(totalDrift) / float64(numPriceCategories) / 10)
}

// RemoveEmployee detaches a citizen from whatever business employs
// them. Called by lifecycle on death.
func (e *Engine) RemoveEmployee(citizenID string) {
	for _, b := range e.Businesses {
		for i, eid := range b.EmployeeIDs {
			if eid == citizenID {
				b.EmployeeIDs = append(b.EmployeeIDs[:i], b.EmployeeIDs[i+1:]...)
				return
			}
		}
	}
}

// PriceTable returns the current index keyed by category label.
func (e *Engine) PriceTable() map[string]int {
	out := make(map[string]int, numPriceCategories)
	for cat := PriceCategory(0); cat < numPriceCategories; cat++ {
		out[priceCategoryNames[cat]] = e.Prices[cat]
	}
	return out
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
