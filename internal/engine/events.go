package engine

import (
	"fmt"

	"github.com/soratane/aicity/internal/rng"
)

// lifeEvent is a small random fortune applied to one citizen.
type lifeEvent struct {
	template  string
	money     int
	happiness int
	health    int
}

var lifeEvents = []lifeEvent{
	{"🍀 %s found some money on the street", 50, 3, 0},
	{"🎁 %s received a gift from an old friend", 0, 8, 0},
	{"🤧 %s caught a slight cold", 0, -3, -5},
	{"💸 %s lost their wallet", -80, -6, 0},
	{"🏆 %s was praised for their work", 0, 10, 0},
	{"😴 %s slept badly and feels drained", 0, -4, -3},
	{"🍱 %s enjoyed an exceptional meal", -30, 6, 2},
	{"📚 %s picked up a fascinating book", -20, 5, 0},
}

// randomLifeEvent perturbs one random citizen. Caller holds the lock.
func (s *Simulation) randomLifeEvent() string {
	all := s.Citizens.All()
	if len(all) == 0 {
		return ""
	}
	c := rng.Pick(s.rand, all)
	ev := rng.Pick(s.rand, lifeEvents)

	c.Money = max(0, c.Money+ev.money)
	c.Happiness = clampStat(c.Happiness + ev.happiness)
	c.Health = clampStat(c.Health + ev.health)

	return fmt.Sprintf(ev.template, c.Name)
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
