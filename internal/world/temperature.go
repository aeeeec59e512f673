package world

import opensimplex "github.com/ojrac/opensimplex-go"

// Thermometer derives a smooth ambient temperature from the clock,
// purely for display in snapshots. Simplex noise over (day, hour) gives
// day-to-day variation without the jumpiness of independent draws.
type Thermometer struct {
	noise opensimplex.Noise
}

// NewThermometer creates a temperature field from a seed.
func NewThermometer(seed int64) *Thermometer {
	return &Thermometer{noise: opensimplex.NewNormalized(seed)}
}

// seasonBase is the mean temperature per season in celsius.
var seasonBase = [4]float64{Spring: 15, Summer: 28, Autumn: 17, Winter: 4}

// Celsius returns the ambient temperature for the clock's current time.
// Daily cycle swings ±4°C around the seasonal mean, with ±3°C of
// noise-driven drift across days.
func (t *Thermometer) Celsius(c *Clock) float64 {
	base := seasonBase[c.Season()]

	// Coolest around 04:00, warmest around 14:00.
	hourFrac := float64(c.Hour*60+c.Minute) / (24 * 60)
	daily := -4.0
	if hourFrac > 4.0/24 && hourFrac < 20.0/24 {
		daily = -4.0 + 8.0*(1.0-abs(hourFrac-14.0/24)*3)
		if daily > 4 {
			daily = 4
		}
	}

	drift := (t.noise.Eval2(float64(c.Day)*0.13, 0) - 0.5) * 6
	return base + daily + drift
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
