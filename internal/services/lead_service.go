package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"gorm.io/gorm"
)

const (
	defaultLeadName  = "Não informado"
	defaultLeadEmail = "nao_informado@palpitesia.com.br"
	defaultLeadPhone = "desconhecido"
	defaultLeadPlan  = "futebol"
)

type LeadService struct {
	db      *gorm.DB
	metrics *metrics.Manager
}

func NewLeadService(db *gorm.DB, m *metrics.Manager) *LeadService {
	return &LeadService{db: db, metrics: m}
}

// Create stores a form submission. Every submission is a new row.
func (s *LeadService) Create(ctx context.Context, req dto.CreateLeadRequest) (*models.Lead, error) {
	lead := models.Lead{
		Name:   orDefault(strings.TrimSpace(req.Nome), defaultLeadName),
		Email:  strings.ToLower(orDefault(strings.TrimSpace(req.Email), defaultLeadEmail)),
		Phone:  orDefault(strings.TrimSpace(req.Telefone), defaultLeadPhone),
		Plan:   strings.ToLower(orDefault(strings.TrimSpace(req.Plano), defaultLeadPlan)),
		Stage:  "novo",
		Status: "ativo",
	}

	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.metrics.LeadCaptured()
	return &lead, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
