package repository

import "gorm.io/gorm"

// Repositories bundles every material-tracking repository.
type Repositories struct {
	TakeOff     *TakeOffRepository
	MIV         *MIVRepository
	Progress    *ProgressRepository
	Spool       *SpoolRepository
	Inventory   *InventoryRepository
	Reservation *ReservationRepository
	Mapping     *MappingRepository
	Activity    *ActivityRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		TakeOff:     NewTakeOffRepository(db),
		MIV:         NewMIVRepository(db),
		Progress:    NewProgressRepository(db),
		Spool:       NewSpoolRepository(db),
		Inventory:   NewInventoryRepository(db),
		Reservation: NewReservationRepository(db),
		Mapping:     NewMappingRepository(db),
		Activity:    NewActivityRepository(db),
	}
}
