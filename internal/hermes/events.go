package hermes

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SubjectTranscriptStored carries a finished call transcript for a live session.
	SubjectTranscriptStored = "qualifier.transcript.stored"
	// SubjectExtractionApplied is emitted after a transcript has been merged into a session.
	SubjectExtractionApplied = "qualifier.extraction.applied"
	// SubjectCallQualified is emitted for every saved call record.
	SubjectCallQualified = "qualifier.call.qualified"
	// SubjectLeadHot is emitted in addition to SubjectCallQualified for hot deals.
	SubjectLeadHot = "qualifier.lead.hot"
	// SubjectRegistered announces the service on startup.
	SubjectRegistered = "qualifier.service.registered"
)

// TranscriptStoredEvent is the inbound payload on SubjectTranscriptStored.
type TranscriptStoredEvent struct {
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
}

// ExtractionAppliedEvent reports which answers a transcript changed.
type ExtractionAppliedEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	Changed   []string  `json:"changed"`
	Timestamp time.Time `json:"timestamp"`
}

func (e ExtractionAppliedEvent) EventKey() string { return e.SessionID.String() }

// CallQualifiedEvent summarises a saved call record.
type CallQualifiedEvent struct {
	RecordID         uuid.UUID `json:"record_id"`
	SessionID        uuid.UUID `json:"session_id"`
	ClientID         string    `json:"client_id"`
	RepID            string    `json:"rep_id"`
	Score            int       `json:"score"`
	Status           string    `json:"qualification_status"`
	NextAction       string    `json:"next_action"`
	IsHotDeal        bool      `json:"is_hot_deal"`
	FollowUpRequired bool      `json:"follow_up_required"`
	Timestamp        time.Time `json:"timestamp"`
}

func (e CallQualifiedEvent) EventKey() string { return e.ClientID }
