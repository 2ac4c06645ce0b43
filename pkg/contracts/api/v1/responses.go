package api

import (
	"time"

	"olistdash/pkg/contracts/domain"
)

// QuestionsResponse lists the questions of the selector
type QuestionsResponse struct {
	Variant   string                `json:"variant"`
	Questions []domain.QuestionInfo `json:"questions"`
}

// BoundsResponse carries the default date range of the date pickers
type BoundsResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewBoundsResponse formats dataset bounds as calendar days
func NewBoundsResponse(b domain.DateBounds) BoundsResponse {
	return BoundsResponse{
		Start: b.Min.Format(DateLayout),
		End:   b.Max.Format(DateLayout),
	}
}

// WSMessageType tags a WebSocket message
type WSMessageType string

const (
	WSMessageResult WSMessageType = "result"
	WSMessageError  WSMessageType = "error"
)

// WSResponse answers one WebSocket request. Exactly one of Result and Error
// is set.
type WSResponse struct {
	Type      WSMessageType       `json:"type"`
	ID        string              `json:"id,omitempty"`
	Result    *domain.QueryResult `json:"result,omitempty"`
	Error     interface{}         `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}
