package models

import "encoding/json"

// Memo is a personal note on "my page".
type Memo struct {
	ID           RefID     `json:"id"`
	UserID       RefID     `json:"user_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	EventDate    *Date     `json:"event_date"`
	Notification bool      `json:"notification"`
	IsDeleted    bool      `json:"is_deleted,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
}

// MemoInput is the body of create and update calls. ID is empty on create.
type MemoInput struct {
	ID           RefID  `json:"-"`
	UserID       RefID  `json:"user_id,omitempty"`
	Title        string `json:"title" validate:"required"`
	Content      string `json:"content"`
	EventDate    *Date  `json:"event_date"`
	Notification bool   `json:"notification"`
}

// ViewedLog records that a user opened a consultation or a precedent.
// Exactly one of ConsultationID and PrecedentID is expected to be set.
type ViewedLog struct {
	ID             RefID     `json:"id"`
	UserID         RefID     `json:"user_id"`
	ConsultationID *RefID    `json:"consultation_id"`
	PrecedentID    *RefID    `json:"precedent_number"`
	CreatedAt      Timestamp `json:"created_at"`
}

// UnmarshalJSON reads the precedent under "precedent_number" and falls back
// to "precedent_id", which some backend versions emit instead.
func (v *ViewedLog) UnmarshalJSON(b []byte) error {
	type plain ViewedLog
	var wire struct {
		plain
		LegacyPrecedentID *RefID `json:"precedent_id"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*v = ViewedLog(wire.plain)
	if v.PrecedentID == nil {
		v.PrecedentID = wire.LegacyPrecedentID
	}
	return nil
}

// ViewedLogInput is the body of the create call.
type ViewedLogInput struct {
	UserID         RefID  `json:"user_id"`
	ConsultationID *RefID `json:"consultation_id"`
	PrecedentID    *RefID `json:"precedent_number"`
}

// PrecedentMeta is the display metadata shown next to a viewed precedent.
type PrecedentMeta struct {
	Title      string `json:"title"`
	CaseNumber string `json:"caseNumber"`
	Court      string `json:"court"`
	Date       string `json:"date"`
}
