package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/app"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/testutil"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(_ context.Context, to, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

type noPacer struct{}

func (noPacer) Wait(ctx context.Context) error { return ctx.Err() }

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	sender *recordingSender
	stripe *fakeStripe
}

// fakeStripe records the last checkout session form it received.
type fakeStripe struct {
	srv  *httptest.Server
	mu   sync.Mutex
	form url.Values
}

func (f *fakeStripe) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func newTestServer(t *testing.T, configure func(*config.Config)) *testServer {
	t.Helper()

	fs := &fakeStripe{}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fs.mu.Lock()
		fs.form = r.PostForm
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	t.Cleanup(fs.srv.Close)

	cfg := config.New()
	cfg.StripeSecretKey = "sk_test_123"
	cfg.StripeWebhookSecret = "whsec_test"
	cfg.StripePriceFootballMonthly = "price_fm"
	cfg.AdminPassword = "hunter2"
	cfg.AdminToken = "ops-token"
	cfg.SettlementReport = false
	if configure != nil {
		configure(cfg)
	}

	db := testutil.NewDB(t)
	sender := &recordingSender{}
	c := app.New(context.Background(), cfg, db, app.Options{
		Sender:        sender,
		Pacer:         noPacer{},
		StripeBackend: fs.srv.URL,
		DisableRedis:  true,
	})

	return &testServer{app: c.Server(), db: db, cfg: cfg, sender: sender, stripe: fs}
}

func (s *testServer) do(req *http.Request) (*http.Response, string) {
	resp, err := s.app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, string(b)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
