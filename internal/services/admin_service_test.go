package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/services"
	"github.com/palpitesia/palpites-backend/internal/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminLogin(t *testing.T) {
	Convey("Given admin credentials", t, func() {
		db := testutil.NewDB(t)
		cfg := config.New()

		Convey("Login fails when no password is configured", func() {
			_, _, err := services.NewAdminService(db, cfg, services.Status{}).Login("x")
			So(errors.Is(err, services.ErrAdminNotConfigured), ShouldBeTrue)
		})

		Convey("With a plain password", func() {
			cfg.AdminPassword = "hunter2"
			svc := services.NewAdminService(db, cfg, services.Status{})

			Convey("The right password yields a verifiable session token", func() {
				token, exp, err := svc.Login("hunter2")
				So(err, ShouldBeNil)
				So(exp, ShouldHappenAfter, time.Now().Add(6*24*time.Hour))

				parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
					return cfg.AdminSigningKey(), nil
				})
				So(err, ShouldBeNil)
				sub, _ := parsed.Claims.GetSubject()
				So(sub, ShouldEqual, services.AdminSubject)
			})

			Convey("A wrong password is rejected", func() {
				_, _, err := svc.Login("hunter3")
				So(errors.Is(err, services.ErrInvalidPassword), ShouldBeTrue)
			})
		})

		Convey("With a bcrypt hash", func() {
			hash, _ := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
			cfg.AdminPasswordHash = string(hash)
			svc := services.NewAdminService(db, cfg, services.Status{})

			_, _, err := svc.Login("s3nha")
			So(err, ShouldBeNil)
			_, _, err = svc.Login("senha")
			So(errors.Is(err, services.ErrInvalidPassword), ShouldBeTrue)
		})
	})
}

func TestAdminDashboard(t *testing.T) {
	Convey("Given leads, subscribers, picks and sends", t, func() {
		db := testutil.NewDB(t)
		cfg := config.New()
		cfg.StripePriceComboYearly = "price_cy"
		svc := services.NewAdminService(db, cfg, services.Status{Database: true, Stripe: true})
		ctx := context.Background()

		seedSubscriber(db, "5561998877665", "", models.SubscriberActive)
		seedSubscriber(db, "5511987654321", "", models.SubscriberCanceled)
		So(db.Create(&models.Lead{Name: "Ana", Email: "a@b.com", Phone: "1", Plan: "futebol", Stage: "novo", Status: "ativo"}).Error, ShouldBeNil)

		win := models.Pick{Kind: "single", Category: "gols", Description: "+1.5 gols", Odd: 1.55, Confidence: 82, Result: models.PickResultWin}
		loss := models.Pick{Kind: "single", Category: "cartoes", Description: "+3 cartões no jogo", Odd: 1.85, Confidence: 75, Result: models.PickResultPending}
		So(db.Create(&win).Error, ShouldBeNil)
		So(db.Create(&loss).Error, ShouldBeNil)
		So(db.Create(&models.SendLog{Phone: "5561998877665", Kind: models.SendKindPicks, Status: models.SendStatusSent, SentAt: time.Now()}).Error, ShouldBeNil)

		Convey("The dashboard aggregates everything", func() {
			d, err := svc.Dashboard(ctx)
			So(err, ShouldBeNil)
			So(d.Subscribers, ShouldEqual, int64(2))
			So(d.ActiveSubscribers, ShouldEqual, int64(1))
			So(d.Leads, ShouldEqual, int64(1))
			So(d.Picks.Total, ShouldEqual, 2)
			So(d.Picks.Wins, ShouldEqual, 1)
			So(d.Picks.Pending, ShouldEqual, 1)
			So(d.Picks.HitRate, ShouldEqual, 50.0)
			So(len(d.RecentSends), ShouldEqual, 1)
		})

		Convey("Settling a pick with the red alias stores a loss", func() {
			p, err := svc.SetPickResult(ctx, loss.ID, "RED")
			So(err, ShouldBeNil)
			So(p.Result, ShouldEqual, models.PickResultLoss)

			var again models.Pick
			db.First(&again, "id = ?", loss.ID)
			So(again.Result, ShouldEqual, models.PickResultLoss)
		})

		Convey("Unknown results and picks are rejected", func() {
			_, err := svc.SetPickResult(ctx, loss.ID, "void")
			So(errors.Is(err, services.ErrInvalidResult), ShouldBeTrue)
			_, err = svc.SetPickResult(ctx, uuid.New(), "win")
			So(errors.Is(err, services.ErrPickNotFound), ShouldBeTrue)
		})

		Convey("Diag reports presence only", func() {
			d := svc.Diag()
			So(d.Database, ShouldBeTrue)
			So(d.Stripe, ShouldBeTrue)
			So(d.StripeWebhook, ShouldBeFalse)
			So(d.Prices[config.PlanComboYearly], ShouldBeTrue)
			So(d.Prices[config.PlanFootballMonthly], ShouldBeFalse)
		})
	})
}
