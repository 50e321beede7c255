package dto

import "github.com/palpitesia/palpites-backend/internal/models"

type CreateLeadRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Plano    string `json:"plano"`
}

type LeadResponse struct {
	Success bool        `json:"success"`
	Data    models.Lead `json:"data"`
}
