// Package world provides the city's static location registry and the
// simulated clock with seasons and weather.
package world

// LocationID identifies a named place in the city.
type LocationID string

// The city map is fixed at load; these ids are referenced throughout
// the simulation.
const (
	LocParliament       LocationID = "parliament"
	LocMarket           LocationID = "market"
	LocResidentialNorth LocationID = "residential_north"
	LocResidentialSouth LocationID = "residential_south"
	LocOffice           LocationID = "office"
	LocHospital         LocationID = "hospital"
	LocSchool           LocationID = "school"
	LocPark             LocationID = "park"
	LocPolice           LocationID = "police"
	LocCourt            LocationID = "court"
	LocShrine           LocationID = "shrine"
	LocRestaurant       LocationID = "restaurant"
)

// LocationCategory classifies locations for behavior dispatch.
type LocationCategory uint8

const (
	CatGovernment LocationCategory = iota
	CatCommerce
	CatResidential
	CatBusiness
	CatService
	CatEducation
	CatLeisure
	CatCulture
)

// CategoryName returns the wire label for a category.
func CategoryName(c LocationCategory) string {
	switch c {
	case CatGovernment:
		return "government"
	case CatCommerce:
		return "commerce"
	case CatResidential:
		return "residential"
	case CatBusiness:
		return "business"
	case CatService:
		return "service"
	case CatEducation:
		return "education"
	case CatLeisure:
		return "leisure"
	case CatCulture:
		return "culture"
	}
	return "unknown"
}

// Location is a static named place. Immutable after load; capacity is
// advisory and never enforced.
type Location struct {
	ID       LocationID       `json:"id"`
	Name     string           `json:"name"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Category LocationCategory `json:"category"`
	Capacity int              `json:"capacity"`
	Icon     string           `json:"icon"`
}

// Locations lists every place in the city in display order.
var Locations = []Location{
	{LocParliament, "Parliament House", 500, 80, CatGovernment, 20, "🏛️"},
	{LocMarket, "Central Market", 200, 300, CatCommerce, 30, "🏪"},
	{LocResidentialNorth, "North Residential", 150, 150, CatResidential, 40, "🏘️"},
	{LocResidentialSouth, "South Residential", 350, 450, CatResidential, 40, "🏘️"},
	{LocOffice, "Office District", 650, 250, CatBusiness, 25, "🏢"},
	{LocHospital, "General Hospital", 800, 150, CatService, 20, "🏥"},
	{LocSchool, "City School", 100, 450, CatEducation, 30, "🏫"},
	{LocPark, "Central Park", 450, 300, CatLeisure, 50, "🌳"},
	{LocPolice, "Police Station", 700, 400, CatGovernment, 15, "🚔"},
	{LocCourt, "Courthouse", 600, 400, CatGovernment, 15, "⚖️"},
	{LocShrine, "Hilltop Shrine", 300, 100, CatCulture, 20, "⛩️"},
	{LocRestaurant, "Restaurant Row", 350, 250, CatCommerce, 25, "🍽️"},
}

var locationIndex = func() map[LocationID]*Location {
	m := make(map[LocationID]*Location, len(Locations))
	for i := range Locations {
		m[Locations[i].ID] = &Locations[i]
	}
	return m
}()

// Lookup returns the location for an id, or nil if unknown.
func Lookup(id LocationID) *Location {
	return locationIndex[id]
}

// Known reports whether id names a real location.
func Known(id LocationID) bool {
	_, ok := locationIndex[id]
	return ok
}
