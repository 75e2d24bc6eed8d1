package boot

import (
	"log"

	"fcshop/src/common"
	"fcshop/src/config"
	"fcshop/src/db"
	"fcshop/src/lib"
	"fcshop/src/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Member{},
		&models.MembershipTier{},
		&models.MembershipStanding{},
		&models.GearItem{},
		&models.Event{},
		&models.TicketHold{},
		&models.Order{},
		&models.OrderLine{},
		&models.PaymentRecord{},
		&models.CheckoutIntent{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	// Backstop for the one-active-hold rule; the reserve transaction
	// enforces it under a row lock, this catches anything that slips past.
	// Skipped when the cap is raised above one.
	if config.MaxActiveHoldsPerEvent() == 1 {
		if err := db.Exec(`
	CREATE UNIQUE INDEX IF NOT EXISTS idx_one_reserved_hold_per_member_event
	ON ticket_holds (member_id, event_id)
	WHERE status = 'reserved' AND deleted_at IS NULL;
	`).Error; err != nil {
			log.Printf("Error creating partial unique index on ticket_holds: %s\n", err.Error())
		}
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	j, err := sched.NewJob(
		gocron.DurationJob(config.SweepInterval()),
		gocron.NewTask(func() {
			common.ExpireStaleHolds()
			common.ExpireLapsedStandings()
		}),
	)
	if err != nil {
		log.Printf("Error scheduling expiry sweep: %s\n", err.Error())
		return
	}
	log.Printf("Expiry sweep job: %s\n", j.ID().String())
	sched.Start()
}
