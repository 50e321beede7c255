// Package metrics exposes Prometheus counters for the lead funnel, payments
// and the WhatsApp delivery jobs.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "palpites"

type Manager struct {
	gatherer prometheus.Gatherer

	leads         prometheus.Counter
	checkouts     *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	messages      *prometheus.CounterVec
	picks         *prometheus.CounterVec
	inbound       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	activeSubs    prometheus.Gauge
}

// New registers every metric on reg. Passing nil creates a private registry.
func New(reg *prometheus.Registry) *Manager {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Manager{
		gatherer: reg,
		leads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_total",
			Help:      "Leads captured from the landing page.",
		}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions created per plan.",
		}, []string{"plan"}),
		webhookEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripe_webhook_events_total",
			Help:      "Stripe webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_messages_total",
			Help:      "WhatsApp messages by kind and delivery status.",
		}, []string{"kind", "status"}),
		picks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picks_generated_total",
			Help:      "Picks produced by the engine per kind.",
		}, []string{"kind"}),
		inbound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_inbound_total",
			Help:      "Inbound WhatsApp webhooks by handling status.",
		}, []string{"status"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled jobs.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		activeSubs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscribers",
			Help:      "Subscribers targeted by the last broadcast.",
		}),
	}
}

func (m *Manager) LeadCaptured() {
	m.leads.Inc()
}

func (m *Manager) CheckoutCreated(plan string) {
	m.checkouts.WithLabelValues(plan).Inc()
}

func (m *Manager) WebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Manager) MessageSent(kind, status string) {
	m.messages.WithLabelValues(kind, status).Inc()
}

func (m *Manager) PicksGenerated(kind string, n int) {
	m.picks.WithLabelValues(kind).Add(float64(n))
}

func (m *Manager) InboundHandled(status string) {
	m.inbound.WithLabelValues(status).Inc()
}

func (m *Manager) ActiveSubscribers(n int) {
	m.activeSubs.Set(float64(n))
}

// ObserveJob records how long job took since start.
func (m *Manager) ObserveJob(job string, start time.Time) {
	m.jobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// Middleware counts requests by matched route.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.httpRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
