package result

// Facets holds per-dimension counts over the filtered, unpaginated set.
type Facets struct {
	Categories  []CategoryCount    `json:"categories"`
	PriceRanges []PriceRangeCount  `json:"priceRanges"`
	Tags        []TagCount         `json:"tags"`
	Fulfillment []FulfillmentCount `json:"fulfillment"`
	Ratings     []RatingCount      `json:"ratings"`
	Cities      []CityCount        `json:"cities"`
	States      []StateCount       `json:"states"`
}

// CategoryCount is a product count per category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PriceRangeCount is a product count per price bucket.
type PriceRangeCount struct {
	Range string   `json:"range"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
	Count int      `json:"count"`
}

// TagCount is a product count per tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FulfillmentCount is a product count per fulfillment method.
type FulfillmentCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// RatingCount is a product count per whole-star rating.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// CityCount is a product count per vendor city.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// StateCount is a product count per vendor state.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}
