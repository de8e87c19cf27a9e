package response_models

type CreateCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type PortalSessionResponse struct {
	PortalURL string `json:"portal_url"`
}

type InvoiceSummary struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	HostedURL   string `json:"hosted_url,omitempty"`
}
