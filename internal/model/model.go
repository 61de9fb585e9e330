// Package model holds the domain entities and the JSON projections the API
// returns for them.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Defaults applied to profiles created on first login.
const (
	DefaultNationality  = "Indian"
	DefaultTravelerType = "domestic"

	// DisplayTravelerType is shown on the digital ID card when a profile has
	// no traveler type recorded.
	DisplayTravelerType = "Domestic"
)

// User is a username/password account. PasswordHash is a bcrypt hash and
// is never serialized.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// PublicUser is the only view of a User that leaves the API.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Public strips credentials.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// TouristProfile is the visitor record keyed by the client supplied TouristID.
//
// ProfileCompleted is a one-way latch: once true it is never cleared, and it
// may only become true while Accommodation is non-blank.
type TouristProfile struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TouristID        string    `json:"touristId" db:"tourist_id"`
	FullName         string    `json:"fullName" db:"full_name"`
	Nationality      string    `json:"nationality" db:"nationality"`
	TravelerType     string    `json:"travelerType" db:"traveler_type"`
	Accommodation    string    `json:"accommodation" db:"accommodation"`
	Email            *string   `json:"email,omitempty" db:"email"`
	ProfileCompleted bool      `json:"profileCompleted" db:"profile_completed"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// Trigger is one audit entry recorded when a digital ID is issued.
type Trigger struct {
	Type   string `json:"type" validate:"required,max=128"`
	Source string `json:"source" validate:"required,max=128"`
	Date   Date   `json:"date"`
}

// Trigger types and sources recorded on every issuance.
const (
	TriggerProfileCompletion    = "Profile Completion"
	TriggerIdentityVerification = "Identity Verification"

	SourcePlatform     = "Safe Trail Platform"
	SourceTourismBoard = "North East Tourism Board"
)

// DigitalID is issued at most once per tourist and never modified.
type DigitalID struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TouristProfileID uuid.UUID `json:"touristProfileId" db:"tourist_profile_id"`
	TouristID        string    `json:"touristId" db:"tourist_id"`
	IssueDate        Date      `json:"issueDate" db:"issue_date"`
	ValidUntil       Date      `json:"validUntil" db:"valid_until"`
	BlockchainHash   string    `json:"blockchainHash" db:"blockchain_hash"`
	Triggers         []Trigger `json:"triggers" db:"triggers"`
}

// DigitalIDProfile is the profile projection shown on the digital ID card.
type DigitalIDProfile struct {
	FullName     string `json:"fullName"`
	Nationality  string `json:"nationality"`
	TravelerType string `json:"travelerType"`
}

// DigitalIDView is a DigitalID merged with its owner's card projection.
type DigitalIDView struct {
	DigitalID
	Profile DigitalIDProfile `json:"profile"`
}

// NewDigitalIDView builds the card view, substituting display defaults for
// blank nationality and traveler type.
func NewDigitalIDView(id *DigitalID, profile *TouristProfile) *DigitalIDView {
	nationality := profile.Nationality
	if nationality == "" {
		nationality = DefaultNationality
	}

	travelerType := profile.TravelerType
	if travelerType == "" {
		travelerType = DisplayTravelerType
	}

	return &DigitalIDView{
		DigitalID: *id,
		Profile: DigitalIDProfile{
			FullName:     profile.FullName,
			Nationality:  nationality,
			TravelerType: travelerType,
		},
	}
}
