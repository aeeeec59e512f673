package world

import (
	"fmt"

	"github.com/soratane/aicity/internal/rng"
)

// Season quarters the 360-day year.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// SeasonName returns the display label for a season.
func SeasonName(s Season) string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	case Winter:
		return "winter"
	}
	return "spring"
}

// weatherBySeason maps each season to its possible conditions.
var weatherBySeason = [4][]string{
	Spring: {"sunny", "cloudy", "light rain", "hazy", "spring breeze"},
	Summer: {"sunny", "heat wave", "evening shower", "cloudy", "humid"},
	Autumn: {"sunny", "cloudy", "autumn rain", "cool breeze", "crisp"},
	Winter: {"sunny", "cloudy", "snow", "cold snap", "frost"},
}

// WeatherSet returns the conditions possible in a season.
func WeatherSet(s Season) []string {
	return weatherBySeason[s]
}

// Clock owns simulated time. One tick advances the world by a fixed
// number of minutes; minute overflow rolls into hours, hours into days.
type Clock struct {
	Tick   int `json:"tick"`
	Minute int `json:"minute"`
	Hour   int `json:"hour"`
	Day    int `json:"day"`
	Year   int `json:"year"`

	Weather string `json:"weather"`

	weatherChangedTick int
}

// NewClock starts the world at 06:00 on day 1.
func NewClock() *Clock {
	return &Clock{Hour: 6, Day: 1, Year: 2024, Weather: "sunny"}
}

// Advance increments the tick counter and adds minutes of simulated
// time, normalizing overflow. Pure arithmetic, no failure modes.
func (c *Clock) Advance(minutes int) {
	c.Tick++
	c.Minute += minutes
	for c.Minute >= 60 {
		c.Minute -= 60
		c.Hour++
	}
	for c.Hour >= 24 {
		c.Hour -= 24
		c.Day++
	}
}

// Season derives the current season from the day of year.
func (c *Clock) Season() Season {
	dayOfYear := c.Day % 360
	switch {
	case dayOfYear < 90:
		return Spring
	case dayOfYear < 180:
		return Summer
	case dayOfYear < 270:
		return Autumn
	default:
		return Winter
	}
}

// MaybeChangeWeather rolls new weather once enough ticks have elapsed
// since the last change. The interval is resampled on every call so
// weather shifts at irregular, unpredictable times.
func (c *Clock) MaybeChangeWeather(r *rng.Provider) {
	if c.Tick-c.weatherChangedTick > r.Between(30, 100) {
		c.Weather = rng.Pick(r, weatherBySeason[c.Season()])
		c.weatherChangedTick = c.Tick
	}
}

// Display renders the clock as a calendar string. Months are a plain
// 30-day grid over the 360-day year.
func (c *Clock) Display() string {
	year := c.Year + (c.Day-1)/360
	month := ((c.Day-1)/30)%12 + 1
	dayOfMonth := (c.Day-1)%30 + 1
	return fmt.Sprintf("%d-%02d-%02d %02d:%02d", year, month, dayOfMonth, c.Hour, c.Minute)
}
