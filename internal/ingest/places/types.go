package places

// Place is one nearby-search result after flattening the response geometry.
type Place struct {
	Name       string
	Address    string
	PlaceID    string
	PriceLevel *int
	Lat        float64
	Lng        float64
}

type nearbyResponse struct {
	Results       []nearbyResult `json:"results"`
	Status        string         `json:"status"`
	NextPageToken string         `json:"next_page_token"`
}

type nearbyResult struct {
	Name       string         `json:"name"`
	Vicinity   string         `json:"vicinity"`
	PlaceID    string         `json:"place_id"`
	PriceLevel *int           `json:"price_level"`
	Geometry   nearbyGeometry `json:"geometry"`
}

type nearbyGeometry struct {
	Location nearbyLatLng `json:"location"`
}

type nearbyLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type detailsResponse struct {
	Result  detailsResult `json:"result"`
	Status  string        `json:"status"`
}

type detailsResult struct {
	Website string `json:"website"`
}
