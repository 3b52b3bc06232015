package services

import (
	"log"

	"github.com/namkjs/p2plending/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartPaymentCron runs the payment sweep and dispute review once at boot
// and then daily at 08:00 local time, when reminders are most likely read.
func StartPaymentCron(db *gorm.DB) {
	runSweep(db)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(utils.VietnamLocation()))
	c.AddFunc("0 0 8 * * *", func() {
		runSweep(db)
	})
	c.Start()
	log.Printf("[PAYMENT CRON] Scheduler started, daily sweep at 08:00")
}

func runSweep(db *gorm.DB) {
	report, err := MonitorAllPayments(db)
	if err != nil {
		utils.LogError(err, "payment monitor sweep")
	} else {
		log.Printf("[PAYMENT CRON] contracts=%d overdue=%d reminders=%d",
			report.CheckedContracts, report.MarkedOverdue, report.RemindersSent)
	}

	review, err := ReviewOpenDisputes(db)
	if err != nil {
		utils.LogError(err, "dispute review sweep")
	} else if review.TotalOpen > 0 {
		log.Printf("[PAYMENT CRON] disputes open=%d auto_resolved=%d high_priority=%d",
			review.TotalOpen, review.AutoResolved, len(review.HighPriority))
	}
}
