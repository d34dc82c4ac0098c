package trek

import "time"

type Summary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Difficulty  string  `json:"difficulty"`
	Price       float64 `json:"price"`
}

// ItineraryDay is one entry of the ordered itinerary. Day labels carry no
// ordering of their own; the slice position does.
type ItineraryDay struct {
	Day      string `json:"day"`
	Activity string `json:"activity"`
}

type Trek struct {
	Summary
	Overview          string         `json:"overview"`
	Highlights        []string       `json:"highlights"`
	WhoCanParticipate string         `json:"who_can_participate"`
	Itinerary         []ItineraryDay `json:"itinerary"`
	HowToReach        string         `json:"how_to_reach"`
	CostTerms         string         `json:"cost_terms"`
	TrekEssentials    []string       `json:"trek_essentials"`
	CreatedAt         time.Time      `json:"created_at"`
}
