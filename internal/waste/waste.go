package waste

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

// Type is the category of delivered waste.
type Type string

const (
	TypeFoodScraps   Type = "food_scraps"
	TypeAgricultural Type = "agricultural"
	TypeMarketWaste  Type = "market_waste"
	TypeAnimalManure Type = "animal_manure"
	TypeOtherOrganic Type = "other_organic"
)

// Unit is the measurement unit a supplier logged the quantity in.
type Unit string

const (
	UnitKg          Unit = "kg"
	UnitTons        Unit = "tons"
	UnitBags        Unit = "bags"
	UnitCubicMeters Unit = "cubic_meters"
)

// kgFactors normalizes each unit to kilograms.
var kgFactors = map[Unit]float64{
	UnitKg:          1,
	UnitTons:        1000,
	UnitBags:        20,
	UnitCubicMeters: 500,
}

// EstimatedWeightKg converts a logged quantity to kilograms. Returns false
// for unknown units.
func EstimatedWeightKg(quantity float64, unit Unit) (float64, bool) {
	factor, ok := kgFactors[unit]
	if !ok {
		return 0, false
	}

	return quantity * factor, true
}

// Status is the lifecycle state of a waste entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusProcessed Status = "processed"
)

// allowedTransitions is the entry state machine. Processed entries are
// terminal and immutable.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusProcessed},
}

// CanTransition reports whether an entry may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

var (
	ErrNotFound          = errors.New("waste entry not found")
	ErrValidation        = errors.New("invalid waste entry")
	ErrInvalidProducer   = errors.New("producer does not exist")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("caller may not act on this entry")
)

// Actor identifies the authenticated caller for ownership checks. Admins
// bypass them.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// Entry is a single waste delivery logged by a supplier.
type Entry struct {
	ID                uuid.UUID
	SupplierID        uuid.UUID
	ProducerID        uuid.UUID
	WasteType         Type
	Quantity          float64
	Unit              Unit
	EstimatedWeightKg float64
	QualityGrade      reward.Grade
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
