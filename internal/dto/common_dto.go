package dto

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type InboundResponse struct {
	Status string `json:"status"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
