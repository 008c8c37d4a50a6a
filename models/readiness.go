package models

import "time"

// ReadinessState is the ephemeral per-session rendezvous record. It lives
// only while the session is pending/confirmed and is discarded once the
// session starts or closes.
type ReadinessState struct {
	SessionID        string     `json:"sessionId"`
	RequesterReady   bool       `json:"requesterReady"`
	ProviderReady    bool       `json:"providerReady"`
	RequesterReadyAt *time.Time `json:"requesterReadyAt,omitempty"`
	ProviderReadyAt  *time.Time `json:"providerReadyAt,omitempty"`
}

// ReadinessStatus is the polling view returned to one party. BothReady is
// server-authoritative: clients must re-confirm here before entering the
// session surface.
type ReadinessStatus struct {
	CallerReady     bool `json:"callerReady"`
	OtherPartyReady bool `json:"otherPartyReady"`
	BothReady       bool `json:"bothReady"`
	SessionExpired  bool `json:"sessionExpired"`
}
