package models

// LegalResearchForm is the structured input of the legal review generator.
// Every field is required.
type LegalResearchForm struct {
	CaseType      string `json:"case_type" validate:"required"`
	IncidentDate  string `json:"incident_date" validate:"required,datetime=2006-01-02"`
	RelatedParty  string `json:"related_party" validate:"required"`
	FactDetails   string `json:"fact_details" validate:"required"`
	Evidence      string `json:"evidence" validate:"required"`
	PriorAction   string `json:"prior_action" validate:"required"`
	DesiredResult string `json:"desired_result" validate:"required"`
}

// TaxResearchForm is the structured input of the tax review generator.
type TaxResearchForm struct {
	ReportType     string `json:"report_type" validate:"required"`
	ReportPeriod   string `json:"report_period" validate:"required"`
	IncomeType     string `json:"income_type" validate:"required"`
	Concern        string `json:"concern" validate:"required"`
	DesiredResult  string `json:"desired_result" validate:"required"`
	AdditionalInfo string `json:"additional_info" validate:"required"`
}

// ResearchReport is the generator's answer. Kind is "legal" or "tax".
type ResearchReport struct {
	Kind        string `json:"kind,omitempty"`
	Timestamp   string `json:"timestamp"`
	FinalReport string `json:"final_report"`
}
