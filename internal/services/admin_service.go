package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAdminNotConfigured = errors.New("admin password not configured")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidResult      = errors.New("result must be win, loss or pending")
	ErrPickNotFound       = errors.New("pick not found")
)

// AdminSubject is the subject claim of admin session tokens.
const AdminSubject = "admin"

// dashboardWindow is how many recent picks the dashboard aggregates.
const dashboardWindow = 50

// Status holds presence flags for collaborators the dashboard reports on.
type Status struct {
	Database   bool
	Stripe     bool
	WhatsApp   bool
	SportsData bool
	LLM        bool
	Redis      bool
}

type AdminService struct {
	db     *gorm.DB
	cfg    *config.Config
	status Status
}

func NewAdminService(db *gorm.DB, cfg *config.Config, status Status) *AdminService {
	return &AdminService{db: db, cfg: cfg, status: status}
}

// Login checks password and returns a signed session token with its expiry.
func (s *AdminService) Login(password string) (string, time.Time, error) {
	if !s.cfg.AdminConfigured() {
		return "", time.Time{}, ErrAdminNotConfigured
	}
	if !s.passwordMatches(password) {
		return "", time.Time{}, ErrInvalidPassword
	}

	now := time.Now()
	exp := now.Add(s.cfg.AdminSessionTTL)
	claims := jwt.MapClaims{
		"sub": AdminSubject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.AdminSigningKey())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin session: %w", err)
	}
	return token, exp, nil
}

func (s *AdminService) passwordMatches(password string) bool {
	if s.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
}

// Dashboard aggregates counts, the recent pick window and recent sends.
func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	db := s.db.WithContext(ctx)
	resp := &dto.DashboardResponse{}

	if err := db.Model(&models.Subscriber{}).Count(&resp.Subscribers).Error; err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	if err := db.Model(&models.Subscriber{}).Where("status = ?", models.SubscriberActive).Count(&resp.ActiveSubscribers).Error; err != nil {
		return nil, fmt.Errorf("count active subscribers: %w", err)
	}
	if err := db.Model(&models.Lead{}).Count(&resp.Leads).Error; err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	if err := db.Order("created_at DESC").Limit(dashboardWindow).Find(&resp.RecentPicks).Error; err != nil {
		return nil, fmt.Errorf("load picks: %w", err)
	}
	results := make([]string, 0, len(resp.RecentPicks))
	for _, p := range resp.RecentPicks {
		results = append(results, p.Result)
	}
	resp.Picks = PickStatsOf(results)

	if err := db.Order("sent_at DESC").Limit(dashboardWindow).Find(&resp.RecentSends).Error; err != nil {
		return nil, fmt.Errorf("load send logs: %w", err)
	}
	return resp, nil
}

// SetPickResult settles a pick. green and red are accepted as win and loss.
func (s *AdminService) SetPickResult(ctx context.Context, id uuid.UUID, result string) (*models.Pick, error) {
	result = normalizeResult(result)
	if result == "" {
		return nil, ErrInvalidResult
	}

	var pick models.Pick
	if err := s.db.WithContext(ctx).First(&pick, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPickNotFound
		}
		return nil, fmt.Errorf("find pick: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&pick).Update("result", result).Error; err != nil {
		return nil, fmt.Errorf("update pick: %w", err)
	}
	pick.Result = result
	return &pick, nil
}

func normalizeResult(r string) string {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case models.PickResultWin, "green":
		return models.PickResultWin
	case models.PickResultLoss, "red":
		return models.PickResultLoss
	case models.PickResultPending:
		return models.PickResultPending
	}
	return ""
}

// Diag reports which integrations are configured without exposing values.
func (s *AdminService) Diag() dto.DiagResponse {
	prices := make(map[string]bool, len(config.Plans))
	for plan, id := range s.cfg.PriceIDs() {
		prices[plan] = id != ""
	}
	return dto.DiagResponse{
		Database:      s.status.Database,
		Stripe:        s.status.Stripe,
		StripeWebhook: s.cfg.StripeWebhookSecret != "",
		WhatsApp:      s.status.WhatsApp,
		DryRun:        s.cfg.DryRun,
		SportsData:    s.status.SportsData,
		LLM:           s.status.LLM,
		Redis:         s.status.Redis,
		CronSecret:    s.cfg.CronSecret != "",
		Prices:        prices,
	}
}
