package logging_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/palpitesia/palpites-backend/internal/logging"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPGHandler(t *testing.T) {
	Convey("Given a logger writing to stdout JSON and the database", t, func() {
		db := testutil.NewDB(t)
		pg := logging.NewPGHandler(db)
		var out bytes.Buffer
		logger := slog.New(logging.NewHandler(&out, "production", pg))

		Convey("Errors are stored with their known fields and the rest as extra", func() {
			logger.With("job", "broadcast").Error("whatsapp send failed",
				"phone", "55619988****", "error", "gateway 500", "attempt", 1)
			logger.Info("delivery finished", "job", "broadcast")
			pg.Stop()

			var rows []models.SystemLog
			So(db.Find(&rows).Error, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Level, ShouldEqual, "ERROR")
			So(rows[0].Job, ShouldEqual, "broadcast")
			So(rows[0].Phone, ShouldEqual, "55619988****")
			So(rows[0].Error, ShouldEqual, "gateway 500")
			So(string(rows[0].Extra), ShouldContainSubstring, `"attempt"`)

			So(out.String(), ShouldContainSubstring, `"msg":"delivery finished"`)
			So(out.String(), ShouldContainSubstring, `"msg":"whatsapp send failed"`)
		})

		Convey("Debug lines are dropped outside development", func() {
			logger.Debug("noisy")
			pg.Stop()
			So(out.String(), ShouldBeEmpty)
		})
	})
}

func TestCleanup(t *testing.T) {
	Convey("Given old and recent system logs", t, func() {
		db := testutil.NewDB(t)
		now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		So(db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"}).Error, ShouldBeNil)
		So(db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -2), Level: "ERROR", Message: "recent"}).Error, ShouldBeNil)

		Convey("Only logs past retention are deleted", func() {
			So(logging.Cleanup(db, 30, now), ShouldEqual, int64(1))

			var left []models.SystemLog
			db.Find(&left)
			So(len(left), ShouldEqual, 1)
			So(left[0].Message, ShouldEqual, "recent")
		})
	})
}
