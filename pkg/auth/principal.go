package auth

// Principal is the verified identity a request acts as. It is produced once
// by the Verifier and threaded explicitly through services; nothing mutates
// it after verification.
type Principal struct {
	ID       string
	Email    string
	Metadata map[string]interface{}
}

// DisplayName resolves a human-readable name via the fallback chain the
// product settled on: full_name, then name, then email, then the raw id.
func (p Principal) DisplayName() string {
	if v, ok := p.Metadata["full_name"].(string); ok && v != "" {
		return v
	}
	if v, ok := p.Metadata["name"].(string); ok && v != "" {
		return v
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID
}
