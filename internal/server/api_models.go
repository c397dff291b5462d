package server

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	URL string `json:"url" example:"https://example.com/login"`
}

// ScanResponse is the verdict for one URL.
type ScanResponse struct {
	URL         string  `json:"url" example:"https://example.com/login"`
	Score       float64 `json:"score" example:"0.12"`
	Label       string  `json:"label" example:"legit"`
	Explanation string  `json:"explanation" example:"Phishing score: 0.12. Based on URL/HTML features (e.g., length, forms)."`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"Valid 'url' required"`
}
