package models

// Party roles as resolved by the user directory.
const (
	RoleRequester = "requester"
	RoleProvider  = "provider"
	RoleAdmin     = "admin"
)

// ProviderApproved is the directory status a provider must hold before it
// can accept bookings.
const ProviderApproved = "approved"

// Party identifies an authenticated caller.
type Party struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ProviderProfile is the slice of the directory record the booking engine
// needs: eligibility and the rate used to price sessions.
type ProviderProfile struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	HourlyRate float64 `json:"hourlyRate"`
}
