package model

import (
	"fmt"
	"slices"
	"time"
)

// ItemType distinguishes skates from companion accessories.
type ItemType string

// Item types.
const (
	ItemTypeSkate     ItemType = "skate"
	ItemTypeSkatemate ItemType = "skatemate"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeSkate || t == ItemTypeSkatemate
}

// Status is the rental lifecycle state of an item.
type Status string

// Item statuses.
const (
	StatusAvailable   Status = "available"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
)

// Statuses lists every lifecycle state in display order.
var Statuses = []Status{StatusAvailable, StatusRented, StatusMaintenance}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// OrDefault returns s, or StatusAvailable when s is empty or unknown.
func (s Status) OrDefault() Status {
	if s.Valid() {
		return s
	}
	return StatusAvailable
}

// Item is one physical rentable asset.
type Item struct {
	ID        int64      `json:"id"`
	Type      ItemType   `json:"type"`
	Title     string     `json:"title"`
	QRCode    string     `json:"qr_code"`
	Status    Status     `json:"status"`
	Notes     string     `json:"notes"`
	ImageMime string     `json:"image_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Exactly one of these is set, matching Type.
	Skate     *SkateAttributes     `json:"skate,omitempty"`
	Skatemate *SkatemateAttributes `json:"skatemate,omitempty"`
}

// NewItem holds the catalog fields needed to create an item.
// An empty QRCode asks the store to assign one.
type NewItem struct {
	Type      ItemType
	Title     string
	QRCode    string
	Skate     *SkateAttributes
	Skatemate *SkatemateAttributes
}

// Truck types accepted for skates.
const (
	TruckMetal   = "metal"
	TruckPlastic = "plastic"
	TruckOther   = "other"
)

// Skatemate conditions.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// SkateAttributes is the descriptive metadata of a skate.
type SkateAttributes struct {
	Brand         string `json:"brand,omitempty" yaml:"brand"`
	Year          int    `json:"year,omitempty" yaml:"year"`
	ServiceDate   string `json:"service_date,omitempty" yaml:"service_date"`
	Size          string `json:"size,omitempty" yaml:"size"`
	WheelHardness string `json:"wheel_hardness,omitempty" yaml:"wheel_hardness"`
	TruckType     string `json:"truck_type,omitempty" yaml:"truck_type"`
	BearingsType  string `json:"bearings_type,omitempty" yaml:"bearings_type"`
	Laces         string `json:"laces,omitempty" yaml:"laces"`
	Stopper       string `json:"stopper,omitempty" yaml:"stopper"`
}

// Validate checks the enumerated and formatted fields.
func (a *SkateAttributes) Validate() error {
	if err := validateCommon(a.Year, a.ServiceDate); err != nil {
		return err
	}
	switch a.TruckType {
	case "", TruckMetal, TruckPlastic, TruckOther:
	default:
		return fmt.Errorf("truck_type must be one of metal, plastic, other")
	}
	return nil
}

// SkatemateAttributes is the descriptive metadata of a skatemate.
type SkatemateAttributes struct {
	Brand       string `json:"brand,omitempty" yaml:"brand"`
	Year        int    `json:"year,omitempty" yaml:"year"`
	ServiceDate string `json:"service_date,omitempty" yaml:"service_date"`
	Condition   string `json:"condition,omitempty" yaml:"condition"`
	Size        string `json:"size,omitempty" yaml:"size"`
}

// Validate checks the enumerated and formatted fields.
func (a *SkatemateAttributes) Validate() error {
	if err := validateCommon(a.Year, a.ServiceDate); err != nil {
		return err
	}
	switch a.Condition {
	case "", ConditionNew, ConditionUsed:
	default:
		return fmt.Errorf("condition must be new or used")
	}
	return nil
}

func validateCommon(year int, serviceDate string) error {
	if year != 0 && (year < 1900 || year > 2100) {
		return fmt.Errorf("year must be between 1900 and 2100")
	}
	if serviceDate != "" {
		if _, err := time.Parse(time.DateOnly, serviceDate); err != nil {
			return fmt.Errorf("service_date must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

// ValidateAttributes checks that the attribute record matches the item type
// and that its fields are well formed. A missing record is allowed.
func ValidateAttributes(t ItemType, skate *SkateAttributes, skatemate *SkatemateAttributes) error {
	switch t {
	case ItemTypeSkate:
		if skatemate != nil {
			return fmt.Errorf("skatemate attributes given for a skate")
		}
		if skate != nil {
			return skate.Validate()
		}
	case ItemTypeSkatemate:
		if skate != nil {
			return fmt.Errorf("skate attributes given for a skatemate")
		}
		if skatemate != nil {
			return skatemate.Validate()
		}
	default:
		return fmt.Errorf("unknown item type %q", t)
	}
	return nil
}
