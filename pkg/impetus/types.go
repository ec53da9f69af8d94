package impetus

import "time"

// DownloadRequest describes one download attempt.
type DownloadRequest struct {
	// EventName identifies the event whose registrations are exported.
	EventName string `json:"eventName"`
	// CoordsValue selects the per-event passkey to verify against. It is
	// usually the event name; admins may leave it equal to EventName.
	CoordsValue string `json:"coordsValue"`
	// CoordinatorName is recorded as the claimant identity when this request
	// wins the first download.
	CoordinatorName string `json:"coordinatorName"`
	// Passkey is the master passkey or the event's coordinator passkey.
	Passkey string `json:"passkey"`
}

// downloadResponse is the raw JSON shape returned by the server.
type downloadResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	ExcelBase64 string  `json:"excelBase64"`
	VCF         *string `json:"vcf"`
}

// DownloadResult is the decoded outcome of a download request.
type DownloadResult struct {
	// Message is the server's outcome text ("you are first", "already
	// downloaded by ...", admin status summary, or "no registrations yet").
	Message string
	// HasRegistrations is false when the event has no registrations; Excel
	// and VCF are empty in that case.
	HasRegistrations bool
	// Excel is the decoded xlsx document.
	Excel []byte
	// FullAccess reports whether contact cards were granted.
	FullAccess bool
	// VCF is the contact-card text block; empty unless FullAccess.
	VCF string
}

// TeamMember is one non-captain member in a registration.
type TeamMember struct {
	Name  string `json:"name"`
	Roll  string `json:"roll"`
	Phone string `json:"phone"`
}

// Registration describes a team registration to create.
type Registration struct {
	EventName       string       `json:"eventName"`
	TeamName        string       `json:"teamName"`
	CapName         string       `json:"capName"`
	CapPhone        string       `json:"capPhone"`
	CapRoll         string       `json:"capRoll,omitempty"`
	ParticipantType string       `json:"participantType"`
	Members         []TeamMember `json:"members,omitempty"`
}

// CreatedRegistration is the server's record of a stored registration.
type CreatedRegistration struct {
	ID              string       `json:"id"`
	EventName       string       `json:"eventName"`
	TeamName        string       `json:"teamName"`
	CapName         string       `json:"capName"`
	CapPhone        string       `json:"capPhone"`
	CapRoll         string       `json:"capRoll"`
	ParticipantType string       `json:"participantType"`
	Members         []TeamMember `json:"members"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// LockMessage is one notification from the claim WebSocket: either the initial
// "lock_state" snapshot or a "claimed" broadcast.
type LockMessage struct {
	Type           string     `json:"type"`
	EventName      string     `json:"eventName"`
	Claimed        bool       `json:"claimed"`
	DownloaderName string     `json:"downloaderName,omitempty"`
	DownloadTime   *time.Time `json:"downloadTime,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}
