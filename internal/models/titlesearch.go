package models

// Normalized view of an external title-search order. Only the fields
// the workflow core consumes are modeled; everything else on the wire
// is ignored.

type Stakeholder struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type OrderDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type TitleSearchOrder struct {
	ID           string          `json:"id"`
	Address      string          `json:"address,omitempty"`
	Owners       string          `json:"owners,omitempty"`
	APN          string          `json:"apn,omitempty"`
	Stakeholders []Stakeholder   `json:"stakeholders,omitempty"`
	Documents    []OrderDocument `json:"documents,omitempty"`
}
