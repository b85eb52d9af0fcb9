package dto

// ChatRequest é o corpo de POST /chat
type ChatRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// MissingFields lista os campos obrigatórios ausentes, na ordem do contrato
func (r ChatRequest) MissingFields() []string {
	var missing []string
	if r.Query == "" {
		missing = append(missing, "query")
	}
	if r.UserID == "" {
		missing = append(missing, "user_id")
	}
	if r.SessionID == "" {
		missing = append(missing, "session_id")
	}
	return missing
}

// ChatResponse é a resposta do relay
type ChatResponse struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// HealthResponse é a resposta de GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}
