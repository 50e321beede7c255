package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/config"
)

const layout = "layouts/main"

type planOption struct {
	ID    string
	Label string
	Price string
}

type planGroup struct {
	Title   string
	Accent  string
	Options []planOption
}

var planGroups = []planGroup{
	{
		Title:  "⚽ Futebol",
		Accent: "green",
		Options: []planOption{
			{ID: config.PlanFootballMonthly, Label: "Mensal", Price: "R$49,90"},
			{ID: config.PlanFootballQuarterly, Label: "Trimestral", Price: "R$129,90"},
			{ID: config.PlanFootballYearly, Label: "Anual", Price: "R$419,90"},
		},
	},
	{
		Title:  "⚽🏀 Futebol + Basquete",
		Accent: "blue",
		Options: []planOption{
			{ID: config.PlanComboMonthly, Label: "Mensal", Price: "R$79,90"},
			{ID: config.PlanComboQuarterly, Label: "Trimestral", Price: "R$159,90"},
			{ID: config.PlanComboYearly, Label: "Anual", Price: "R$599,90"},
		},
	},
}

// SiteHandler serves the public pages.
type SiteHandler struct{}

func NewSiteHandler() *SiteHandler {
	return &SiteHandler{}
}

func (h *SiteHandler) Index(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{"Plans": planGroups}, layout)
}

func (h *SiteHandler) Success(c *fiber.Ctx) error {
	return c.Render("success", fiber.Map{"Title": "Assinatura confirmada"}, layout)
}

func (h *SiteHandler) Cancel(c *fiber.Ctx) error {
	return c.Render("cancel", fiber.Map{"Title": "Pagamento cancelado"}, layout)
}

func (h *SiteHandler) Privacy(c *fiber.Ctx) error {
	return c.Render("privacidade", fiber.Map{"Title": "Política de Privacidade"}, layout)
}

func (h *SiteHandler) Terms(c *fiber.Ctx) error {
	return c.Render("termos", fiber.Map{"Title": "Termos de Uso"}, layout)
}
