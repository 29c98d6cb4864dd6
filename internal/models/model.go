package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Role is the marketplace role a user registered with
type Role string

const (
	RoleSender   Role = "sender"
	RoleTraveler Role = "traveler"

	// legacy spelling still sent by older backends
	roleTravellerLegacy Role = "traveller"
)

// UnmarshalJSON accepts the legacy "traveller" spelling
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = NormalizeRole(s)
	return nil
}

// NormalizeRole maps legacy role spellings onto the canonical ones
func NormalizeRole(s string) Role {
	if Role(s) == roleTravellerLegacy {
		return RoleTraveler
	}
	return Role(s)
}

// User represents a registered sender or traveler
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	VehicleType     string    `json:"vehicle_type,omitempty"`
	LicenseNumber   string    `json:"license_number,omitempty"`
	ExperienceYears int       `json:"experience_years,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// IsSender reports whether the user posts jobs
func (u User) IsSender() bool { return u.Role == RoleSender }

// IsTraveler reports whether the user bids on jobs
func (u User) IsTraveler() bool { return u.Role == RoleTraveler }

// Job represents a delivery request posted by a sender
type Job struct {
	ID             int64     `json:"id"`
	GoodsName      string    `json:"goods_name"`
	PickupLocation string    `json:"pickup_location"`
	DropLocation   string    `json:"drop_location"`
	DeliveryTime   time.Time `json:"delivery_time"`
	Sender         int64     `json:"sender"`
	CreatedAt      time.Time `json:"created_at"`
}

// Bid represents a traveler's offer on a job
type Bid struct {
	ID               int64     `json:"id"`
	Job              int64     `json:"job"`
	Traveler         int64     `json:"traveler"`
	TravelerID       int64     `json:"traveler_id,omitempty"`
	TravelerUsername string    `json:"traveler_username"`
	Amount           Amount    `json:"amount"`
	Message          string    `json:"message"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Amount is a bid amount. Decimal fields may arrive as JSON strings ("25.00"),
// so both forms are accepted; it is always written as a number.
type Amount float64

// UnmarshalJSON accepts a number, a numeric string or null
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("amount: %s is neither a number nor a string", b)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount: %q: %w", s, err)
	}
	*a = Amount(f)
	return nil
}

// BidStatusPending is the status every new bid starts with
const BidStatusPending = "pending"

// Message is a chat line between the participants of a job
type Message struct {
	ID             int64     `json:"id"`
	Job            int64     `json:"job"`
	Sender         int64     `json:"sender"`
	SenderUsername string    `json:"sender_username"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// Session is the authenticated context derived from a stored bearer token
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginResult is returned by the token endpoints
type LoginResult struct {
	Access string `json:"access"`
	Token  string `json:"token"`
	User   User   `json:"user"`
}

// RegisterInput carries the fields a new account is created from
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password,omitempty"`
	Role            Role   `json:"role"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	Bio             string `json:"bio,omitempty"`
	VehicleType     string `json:"vehicle_type,omitempty"`
	LicenseNumber   string `json:"license_number,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty"`
}

// JobInput is the payload for posting a job
type JobInput struct {
	GoodsName      string    `json:"goods_name"`
	PickupLocation string    `json:"pickup_location"`
	DropLocation   string    `json:"drop_location"`
	DeliveryTime   time.Time `json:"delivery_time"`
}

// BidInput is the payload for placing a bid
type BidInput struct {
	Job     int64   `json:"job"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// MessageInput is the payload for sending a chat message
type MessageInput struct {
	Job  int64  `json:"job"`
	Text string `json:"text"`
}

// ProfilePatch holds the profile fields to change; nil fields are left untouched
type ProfilePatch struct {
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	VehicleType     *string `json:"vehicle_type,omitempty"`
	LicenseNumber   *string `json:"license_number,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
}

// Apply merges the set fields of the patch into u
func (p ProfilePatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.VehicleType != nil {
		u.VehicleType = *p.VehicleType
	}
	if p.LicenseNumber != nil {
		u.LicenseNumber = *p.LicenseNumber
	}
	if p.ExperienceYears != nil {
		u.ExperienceYears = *p.ExperienceYears
	}
}
