package request_models

type SaveListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description" binding:"required"`
}

type MatchListingsRequest struct {
	ResumeText string `json:"resume_text" binding:"required"`
	Limit      int    `json:"limit"`
}
