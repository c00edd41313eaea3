package contracts

import "time"

// Envelope carries the cross-cutting headers every published message may
// include: who produced it, when, and the correlation id tying it back to
// the originating HTTP request.
type Envelope struct {
	CorrelationID string    `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer,omitempty"`
	SentAt        time.Time `json:"sent_at,omitempty"` // UTC
}

// GeoPoint is a coordinate pair with an optional human-readable address.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}
