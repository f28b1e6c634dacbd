package models

import "time"

// RawListing holds one source record projected to the fixed column set,
// before any parsing. An empty field means the value is missing.
type RawListing struct {
	Row             int
	ID              string
	Name            string
	Neighbourhood   string
	RoomType        string
	Price           string
	Latitude        string
	Longitude       string
	NumberOfReviews string
	Availability365 string
	LastReview      string
	ReviewsPerMonth string
}

// Listing is the cleaned, typed record the dashboard works on.
type Listing struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Neighbourhood   string     `json:"neighbourhood"`
	RoomType        string     `json:"room_type"`
	Price           float64    `json:"price"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	NumberOfReviews int        `json:"number_of_reviews"`
	Availability365 int        `json:"availability_365"`
	LastReview      *time.Time `json:"last_review,omitempty"`
	ReviewsPerMonth float64    `json:"reviews_per_month"`
}

// View is the ordered subset of a Dataset that satisfies a FilterCriteria.
type View []Listing

// NeighbourhoodSummary holds grouped statistics for one neighbourhood.
type NeighbourhoodSummary struct {
	Neighbourhood          string  `json:"neighbourhood"`
	AveragePrice           float64 `json:"average_price"`
	NumListings            int     `json:"num_listings"`
	AverageAvailability    float64 `json:"average_availability"`
	AverageReviewsPerMonth float64 `json:"average_reviews_per_month"`
}

// RoomTypePrice is the mean price of one room type.
type RoomTypePrice struct {
	RoomType     string  `json:"room_type"`
	AveragePrice float64 `json:"average_price"`
	NumListings  int     `json:"num_listings"`
}

// HistogramBin is one equal-width price bucket. Upper is exclusive except for
// the last bin of a histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// InsightReport holds every aggregate the dashboard renders for one view.
type InsightReport struct {
	Empty                  bool                   `json:"empty"`
	TotalListings          int                    `json:"total_listings"`
	AveragePrice           float64                `json:"average_price"`
	MinPrice               float64                `json:"min_price"`
	MaxPrice               float64                `json:"max_price"`
	AverageReviews         float64                `json:"average_reviews"`
	AverageReviewsPerMonth float64                `json:"average_reviews_per_month"`
	CenterLatitude         float64                `json:"center_latitude"`
	CenterLongitude        float64                `json:"center_longitude"`
	PriceHistogram         []HistogramBin         `json:"price_histogram"`
	PriceByRoomType        []RoomTypePrice        `json:"price_by_room_type"`
	Cheapest               View                   `json:"cheapest"`
	Neighbourhoods         []NeighbourhoodSummary `json:"neighbourhoods"`
	LastReviewYears        map[int]int            `json:"last_review_years"`
}
