package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParticipantType distinguishes registrations by college affiliation.
type ParticipantType string

const (
	// ParticipantTypeInternal — captain belongs to the host institute and has a roll number.
	ParticipantTypeInternal ParticipantType = "INTERNAL"
	// ParticipantTypeExternal — captain is from outside; roll number is not meaningful.
	ParticipantTypeExternal ParticipantType = "EXTERNAL"
)

// ValidateParticipantType returns the typed ParticipantType value or an error for unknown types.
func ValidateParticipantType(s string) (ParticipantType, error) {
	switch ParticipantType(s) {
	case ParticipantTypeInternal:
		return ParticipantTypeInternal, nil
	case ParticipantTypeExternal:
		return ParticipantTypeExternal, nil
	default:
		return "", fmt.Errorf("unknown participant type %q: must be 'INTERNAL' or 'EXTERNAL'", s)
	}
}

// TeamMember is one non-captain member of a registered team.
// Any of the fields may be blank; the registration form does not require them.
type TeamMember struct {
	Name  string `json:"name"`
	Roll  string `json:"roll"`
	Phone string `json:"phone"`
}

// Registration is one team's registration for an event.
// CapRoll is meaningful only when ParticipantType is INTERNAL.
type Registration struct {
	ID              string          `json:"id"`
	EventName       string          `json:"eventName"`
	TeamName        string          `json:"teamName"`
	CapName         string          `json:"capName"`
	CapPhone        string          `json:"capPhone"`
	CapRoll         string          `json:"capRoll,omitempty"`
	ParticipantType ParticipantType `json:"participantType"`
	Members         []TeamMember    `json:"members"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewRegistrationID returns a fresh registration identifier.
func NewRegistrationID() string {
	return uuid.NewString()
}

// DownloadLock is the per-event first-download record. One row per event,
// created lazily on first reference and claimed at most once.
type DownloadLock struct {
	EventName           string     `json:"eventName"`
	VCardsDownloaded    bool       `json:"vCardsDownloaded"`
	FirstDownloaderName *string    `json:"firstDownloaderName"`
	DownloadTime        *time.Time `json:"downloadTime"`
}
