package response_models

type ListingMatch struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Company    string  `json:"company"`
	Location   string  `json:"location"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
}
