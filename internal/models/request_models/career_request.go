package request_models

type AnalyzeResumeRequest struct {
	CurrentResume      string `json:"current_resume" binding:"required"`
	JobDescription     string `json:"job_description" binding:"required"`
	CompanyWebsite     string `json:"company_website"`
	AdditionalComments string `json:"additional_comments"`
}

type RoastResumeRequest struct {
	CurrentResume string `json:"current_resume" binding:"required"`
}

type CoverLetterRequest struct {
	Resume         string `json:"resume" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
	CompanyName    string `json:"company_name"`
	Tone           string `json:"tone"`
}

type LinkedinOptimizeRequest struct {
	ProfileText string `json:"profile_text" binding:"required"`
	TargetRole  string `json:"target_role"`
}
