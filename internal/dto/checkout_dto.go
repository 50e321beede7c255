package dto

type CheckoutRequest struct {
	Plan         string `json:"plan"`
	NomeCliente  string `json:"nome_cliente"`
	EmailCliente string `json:"email_cliente"`
	Telefone     string `json:"telefone"`
	CPF          string `json:"cpf"`

	// Sent by older landing pages instead of telefone.
	WhatsAppNumber string `json:"whatsapp_number"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}
