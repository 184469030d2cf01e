package elevation

// LatLng is a coordinate pair as echoed back by the API
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Result is a single elevation sample
type Result struct {
	Elevation  float64 `json:"elevation"`
	Location   *LatLng `json:"location,omitempty"`
	Resolution float64 `json:"resolution,omitempty"`
}

// Response represents the root elevation response
type Response struct {
	Results      []Result `json:"results"`
	Status       string   `json:"status,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// StatusOK is the status string of a successful lookup
const StatusOK = "OK"
