package models

import "encoding/json"

// Precedent is one row of a precedent search or category listing.
type Precedent struct {
	ID         RefID  `json:"pre_number"`
	CaseName   string `json:"c_name"`
	CaseNumber string `json:"c_number"`
	Court      string `json:"court"`
	Date       string `json:"j_date"`
	Category   string `json:"c_type,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// Consultation is one consultation case summary.
type Consultation struct {
	ID       RefID  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Date     string `json:"date,omitempty"`
}

// DocumentKind tells how a detail response must be rendered.
type DocumentKind string

const (
	DocumentJSON DocumentKind = "json"
	DocumentHTML DocumentKind = "html"
)

// Document is a detail response whose shape is only known after the fact:
// either a JSON object or an HTML fragment that embeds a viewer URL.
type Document struct {
	Kind      DocumentKind
	JSON      json.RawMessage
	HTML      string
	ViewerURL string
}

// Video is one entry of the external video listing shown on the home page.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	PublishedAt  string `json:"published_at"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// ChatReply is the chatbot answer.
type ChatReply struct {
	Response string `json:"response"`
}
