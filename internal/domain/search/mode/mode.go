package mode

// Mode is the result ordering requested by the caller.
type Mode string

// Sort mode constants.
const (
	// Relevance is the default composite ordering.
	Relevance Mode = "relevance"
	// Distance orders by proximity to the query point.
	Distance  Mode = "distance"
	PriceAsc  Mode = "price_asc"
	PriceDesc Mode = "price_desc"
	Newest    Mode = "newest"
	Popular   Mode = "popular"
	Rating    Mode = "rating"
)

// All lists the supported sort modes.
var All = []Mode{Relevance, Distance, PriceAsc, PriceDesc, Newest, Popular, Rating}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	for _, v := range All {
		if m == v {
			return true
		}
	}
	return false
}
