package models_test

import (
	"testing"

	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSubscriberColumns(t *testing.T) {
	Convey("Given a migrated database", t, func() {
		db := testutil.NewDB(t)
		m := db.Migrator()

		Convey("The subscriber columns match the names raw queries use", func() {
			for _, col := range []string{"phone", "whatsapp_number", "waiting_optin", "pending_message", "stripe_customer_id"} {
				So(m.HasColumn(&models.Subscriber{}, col), ShouldBeTrue)
			}
			So(m.HasColumn(&models.Subscriber{}, "whats_app_number"), ShouldBeFalse)
			So(m.HasColumn(&models.Subscriber{}, "waiting_opt_in"), ShouldBeFalse)
		})

		Convey("Raw lookups and updates by those columns round-trip", func() {
			sub := models.Subscriber{Phone: "5561998877665", WhatsAppNumber: "61998877665"}
			So(db.Create(&sub).Error, ShouldBeNil)

			So(db.Model(&sub).Updates(map[string]interface{}{
				"waiting_optin":   true,
				"pending_message": "oi",
			}).Error, ShouldBeNil)

			var got models.Subscriber
			So(db.Where("whatsapp_number LIKE ?", "%98877665").First(&got).Error, ShouldBeNil)
			So(got.WaitingOptIn, ShouldBeTrue)
			So(*got.PendingMessage, ShouldEqual, "oi")
		})
	})
}

func TestSportForPlan(t *testing.T) {
	Convey("Combo plans deliver combo, the rest football", t, func() {
		So(models.SportForPlan("combo_monthly"), ShouldEqual, models.SportCombo)
		So(models.SportForPlan("football_yearly"), ShouldEqual, models.SportFootball)
	})
}
