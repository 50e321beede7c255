package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/models"
	. "github.com/smartystreets/goconvey/convey"
)

func adminCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == config.AdminCookieName {
			return c
		}
	}
	return nil
}

func TestAdmin(t *testing.T) {
	Convey("Given the server with an admin password", t, func() {
		s := newTestServer(t, nil)

		Convey("The dashboard page redirects to login without a session", func() {
			resp, _ := s.do(httptest.NewRequest("GET", "/admin", nil))
			So(resp.StatusCode, ShouldEqual, http.StatusFound)
			So(resp.Header.Get("Location"), ShouldEqual, "/admin/login?next=%2Fadmin")
		})

		Convey("The login page renders", func() {
			resp, body := s.do(httptest.NewRequest("GET", "/admin/login?next=/admin", nil))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, "login-form")
		})

		Convey("The dashboard API answers 401 without a session", func() {
			resp, _ := s.do(httptest.NewRequest("GET", "/api/admin/dashboard", nil))
			So(resp.StatusCode, ShouldEqual, 401)
		})

		Convey("A wrong password is rejected", func() {
			resp, _ := s.do(jsonRequest("POST", "/api/admin/login", `{"password":"nope"}`))
			So(resp.StatusCode, ShouldEqual, 401)
			So(adminCookie(resp), ShouldBeNil)
		})

		Convey("A malformed login body is rejected", func() {
			resp, _ := s.do(jsonRequest("POST", "/api/admin/login", `nope`))
			So(resp.StatusCode, ShouldEqual, 400)
		})

		Convey("Logging in sets a secure session cookie", func() {
			resp, body := s.do(jsonRequest("POST", "/api/admin/login", `{"password":"hunter2"}`))
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldEqual, `{"ok":true}`)

			cookie := adminCookie(resp)
			So(cookie, ShouldNotBeNil)
			So(cookie.HttpOnly, ShouldBeTrue)
			So(cookie.Secure, ShouldBeTrue)
			So(cookie.SameSite, ShouldEqual, http.SameSiteLaxMode)

			Convey("The session opens the dashboard page and API", func() {
				req := httptest.NewRequest("GET", "/admin", nil)
				req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
				resp, body := s.do(req)
				So(resp.StatusCode, ShouldEqual, 200)
				So(body, ShouldContainSubstring, "Painel Palpites.IA")

				req = httptest.NewRequest("GET", "/api/admin/dashboard", nil)
				req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
				resp, body = s.do(req)
				So(resp.StatusCode, ShouldEqual, 200)
				So(body, ShouldContainSubstring, `"subscribers":0`)
			})

			Convey("A forged cookie is not accepted", func() {
				req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
				req.AddCookie(&http.Cookie{Name: config.AdminCookieName, Value: "1"})
				resp, _ := s.do(req)
				So(resp.StatusCode, ShouldEqual, 401)
			})
		})

		Convey("Logout expires the cookie", func() {
			resp, _ := s.do(jsonRequest("POST", "/api/admin/logout", ""))
			So(resp.StatusCode, ShouldEqual, 200)
			cookie := adminCookie(resp)
			So(cookie, ShouldNotBeNil)
			So(cookie.Value, ShouldBeEmpty)
		})

		Convey("The ops token opens diag without a session", func() {
			req := httptest.NewRequest("GET", "/api/admin/diag", nil)
			req.Header.Set("X-Admin-Token", "ops-token")
			resp, body := s.do(req)
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `"football_monthly":true`)
			So(body, ShouldContainSubstring, `"stripe_webhook":true`)
			So(body, ShouldNotContainSubstring, "sk_test_123")
		})

		Convey("Picks can be settled", func() {
			pick := models.Pick{Kind: "single", Category: "gols", Description: "+1.5 gols", Odd: 1.5, Confidence: 80}
			So(s.db.Create(&pick).Error, ShouldBeNil)

			req := jsonRequest("PUT", "/api/admin/picks/"+pick.ID.String()+"/result", `{"result":"green"}`)
			req.Header.Set("X-Admin-Token", "ops-token")
			resp, body := s.do(req)
			So(resp.StatusCode, ShouldEqual, 200)
			So(body, ShouldContainSubstring, `"result":"win"`)

			req = jsonRequest("PUT", "/api/admin/picks/not-a-uuid/result", `{"result":"win"}`)
			req.Header.Set("X-Admin-Token", "ops-token")
			resp, _ = s.do(req)
			So(resp.StatusCode, ShouldEqual, 400)
		})
	})

	Convey("Without an admin password login is a server error", t, func() {
		s := newTestServer(t, func(c *config.Config) {
			c.AdminPassword = ""
			c.AdminToken = ""
		})
		resp, _ := s.do(jsonRequest("POST", "/api/admin/login", `{"password":"x"}`))
		So(resp.StatusCode, ShouldEqual, 500)

		resp, _ = s.do(httptest.NewRequest("GET", "/api/admin/dashboard", nil))
		So(resp.StatusCode, ShouldEqual, 401)
	})
}
