package service

import (
	"time"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles every material-tracking service.
type Services struct {
	Resolver    *EquivalenceResolver
	Activity    *ActivityService
	TakeOff     *TakeOffService
	Ledger      *LedgerService
	Reservation *ReservationService
	Spool       *SpoolService
	Consumption *ConsumptionService
	Matching    *MatchingService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, logger *zap.Logger) (*Services, error) {
	resolver, err := NewEquivalenceResolver()
	if err != nil {
		return nil, err
	}

	activity := NewActivityService(repos.Activity, logger)
	spool := NewSpoolService(db, repos.Spool, resolver, activity)

	return &Services{
		Resolver:    resolver,
		Activity:    activity,
		TakeOff:     NewTakeOffService(db, repos.TakeOff, activity),
		Ledger:      NewLedgerService(db, repos.Inventory, activity),
		Reservation: NewReservationService(db, repos.Reservation, repos.Inventory, activity),
		Spool:       spool,
		Consumption: NewConsumptionService(db, repos.TakeOff, repos.MIV, repos.Progress, repos.Spool, repos.Inventory, spool, resolver, activity),
		Matching:    NewMatchingService(repos.Mapping, repos.Inventory, activity, time.Now, DefaultRuleTTL),
	}, nil
}
