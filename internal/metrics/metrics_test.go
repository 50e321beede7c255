package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		Convey("Counters are registered and incremented", func() {
			m.LeadCaptured()
			m.LeadCaptured()
			m.MessageSent("picks", "sent")
			m.PicksGenerated("single", 4)

			families, err := reg.Gather()
			So(err, ShouldBeNil)
			values := map[string]float64{}
			for _, mf := range families {
				for _, metric := range mf.GetMetric() {
					if metric.GetCounter() != nil {
						values[mf.GetName()] += metric.GetCounter().GetValue()
					}
				}
			}
			So(values["palpites_leads_total"], ShouldEqual, 2)
			So(values["palpites_picks_generated_total"], ShouldEqual, 4)
			So(values["palpites_whatsapp_messages_total"], ShouldEqual, 1)
		})

		Convey("The handler serves the text exposition", func() {
			m.CheckoutCreated("football_monthly")

			app := fiber.New()
			app.Use(m.Middleware())
			app.Get("/metrics", m.Handler())

			resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, 200)

			body, _ := io.ReadAll(resp.Body)
			So(string(body), ShouldContainSubstring, `palpites_checkout_sessions_total{plan="football_monthly"} 1`)
		})
	})
}
