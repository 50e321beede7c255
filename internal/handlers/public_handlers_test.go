package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/models"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHealthAndSite(t *testing.T) {
	Convey("Given the server", t, func() {
		s := newTestServer(t, nil)

		Convey("Health reports the database", func() {
			resp, body := s.do(httptest.NewRequest("GET", "/api/health", nil))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `"status":"ok"`)
			So(body, ShouldContainSubstring, `"db":"ok"`)
		})

		Convey("The landing page lists every plan", func() {
			resp, body := s.do(httptest.NewRequest("GET", "/", nil))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `data-plan="football_monthly"`)
			So(body, ShouldContainSubstring, `data-plan="combo_yearly"`)
			So(resp.Header.Get("X-Frame-Options"), ShouldEqual, "DENY")
		})

		Convey("Legal and checkout return pages render", func() {
			for _, path := range []string{"/success", "/cancel", "/privacidade", "/termos"} {
				resp, _ := s.do(httptest.NewRequest("GET", path, nil))
				So(resp.StatusCode, ShouldEqual, 200)
			}
		})

		Convey("Metrics are exposed", func() {
			s.do(httptest.NewRequest("GET", "/api/health", nil))
			resp, body := s.do(httptest.NewRequest("GET", "/metrics", nil))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, "palpites_http_requests_total")
		})
	})
}

func TestLeadAndCheckout(t *testing.T) {
	Convey("Given the server", t, func() {
		s := newTestServer(t, nil)

		Convey("A lead is stored with defaults", func() {
			resp, body := s.do(jsonRequest("POST", "/api/leads", `{"nome":" Ana ","email":"ANA@X.COM","telefone":"61998877665"}`))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `"success":true`)
			So(body, ShouldContainSubstring, `"email":"ana@x.com"`)
			So(body, ShouldContainSubstring, `"plano":"futebol"`)

			var count int64
			s.db.Model(&models.Lead{}).Count(&count)
			So(count, ShouldEqual, int64(1))
		})

		Convey("A malformed lead body is rejected", func() {
			resp, _ := s.do(jsonRequest("POST", "/api/leads", `{`))
			So(resp.StatusCode, ShouldEqual, 400)
		})

		Convey("Checkout returns the hosted URL and uses the Origin header", func() {
			req := jsonRequest("POST", "/api/checkout", `{"plan":"football_monthly","telefone":"(61) 99887-7665"}`)
			req.Header.Set("Origin", "https://palpites.example")
			resp, body := s.do(req)
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `"url":"https://checkout.stripe.com/c/pay/cs_test_1"`)

			form := s.stripe.lastForm()
			So(form.Get("success_url"), ShouldEqual, "https://palpites.example/success?session_id={CHECKOUT_SESSION_ID}")
			So(form.Get("cancel_url"), ShouldEqual, "https://palpites.example/cancel")
			So(form.Get("metadata[whatsapp_number]"), ShouldEqual, "61998877665")
		})

		Convey("The configured public URL is used without an Origin header", func() {
			s := newTestServer(t, func(c *config.Config) { c.PublicBaseURL = "https://palpites.ia" })
			resp, _ := s.do(jsonRequest("POST", "/api/checkout", `{"plan":"football_monthly"}`))
			So(resp.StatusCode, ShouldEqual, 200)
			So(s.stripe.lastForm().Get("cancel_url"), ShouldEqual, "https://palpites.ia/cancel")
		})

		Convey("An unconfigured plan is a client error", func() {
			resp, _ := s.do(jsonRequest("POST", "/api/checkout", `{"plan":"combo_yearly"}`))
			So(resp.StatusCode, ShouldEqual, 400)
		})

		Convey("Missing Stripe key is a server error", func() {
			s := newTestServer(t, func(c *config.Config) { c.StripeSecretKey = "" })
			resp, _ := s.do(jsonRequest("POST", "/api/checkout", `{"plan":"football_monthly"}`))
			So(resp.StatusCode, ShouldEqual, 500)
		})
	})
}
