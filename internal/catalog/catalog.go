// Package catalog serves the static reference data shown next to the
// vulnerability dashboard: the intelligence sources and the support desk.
package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DataSource describes an intelligence feed the catalogue is built from.
type DataSource struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	CredibilityScore float64  `json:"credibilityScore"`
	LastUpdated      string   `json:"lastUpdated"`
	UpdateFrequency  string   `json:"updateFrequency"`
	AccessMethod     string   `json:"accessMethod"`
	ValidationStatus string   `json:"validationStatus"`
	WhyChosen        string   `json:"whyChosen"`
	Limitations      string   `json:"limitations"`
	Coverage         []string `json:"coverage"`
	DataQuality      string   `json:"dataQuality"`
}

// SourceValidation is the quality assessment of a data source.
type SourceValidation struct {
	SourceID          int      `json:"sourceId"`
	LastValidated     string   `json:"lastValidated"`
	ValidationMethod  string   `json:"validationMethod"`
	AccuracyScore     float64  `json:"accuracyScore"`
	CompletenessScore float64  `json:"completenessScore"`
	TimelinessScore   float64  `json:"timelinessScore"`
	OverallRating     string   `json:"overallRating"`
	Issues            []string `json:"issues"`
	Recommendations   []string `json:"recommendations"`
}

// Ticket priorities
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
)

const timestampLayout = "2006-01-02T15:04:05"

// SupportTicket is a help desk request raised by a lab or analyst.
type SupportTicket struct {
	ID            int     `json:"id"`
	TicketNumber  string  `json:"ticketNumber"`
	IssueType     string  `json:"issueType"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	SubmittedBy   string  `json:"submittedBy"`
	SubmittedDate string  `json:"submittedDate"`
	AssignedTo    string  `json:"assignedTo"`
	ResponseTime  string  `json:"responseTime"`
	LastUpdated   string  `json:"lastUpdated,omitempty"`
	Resolution    *string `json:"resolution"`
}

// TicketRequest is the payload for opening a ticket.
type TicketRequest struct {
	IssueType   string `json:"issueType"`
	Description string `json:"description"`
	SubmittedBy string `json:"submittedBy"`
}

var dataSources = []DataSource{
	{
		ID:               1,
		Name:             "EU-CERT",
		Type:             "Government Advisory",
		CredibilityScore: 0.95,
		LastUpdated:      "2024-01-15T08:00:00",
		UpdateFrequency:  "Daily",
		AccessMethod:     "API + Email Alerts",
		ValidationStatus: "Verified",
		WhyChosen:        "Primary source for European biotech sector threats. High credibility due to government backing and direct relevance to Bio-ISAC community.",
		Limitations:      "May have delay in reporting non-EU threats",
		Coverage:         []string{"European Union", "Biotech Sector", "Critical Infrastructure"},
		DataQuality:      "Excellent",
	},
	{
		ID:               2,
		Name:             "CVE Database (NIST NVD)",
		Type:             "Public Database",
		CredibilityScore: 0.90,
		LastUpdated:      "2024-01-15T06:00:00",
		UpdateFrequency:  "Real-time",
		AccessMethod:     "API",
		ValidationStatus: "Verified",
		WhyChosen:        "Comprehensive, standardized vulnerability database. Essential for cross-referencing and validation.",
		Limitations:      "Generic IT focus, requires bio-relevance filtering",
		Coverage:         []string{"Global", "All Sectors", "Software Vulnerabilities"},
		DataQuality:      "Excellent",
	},
	{
		ID:               3,
		Name:             "CISA Advisories",
		Type:             "Government Advisory",
		CredibilityScore: 0.92,
		LastUpdated:      "2024-01-14T16:00:00",
		UpdateFrequency:  "As needed",
		AccessMethod:     "RSS Feed + Email",
		ValidationStatus: "Verified",
		WhyChosen:        "Authoritative source for US-based threats. Critical for Bio-ISAC members with US operations.",
		Limitations:      "US-focused, may miss international threats",
		Coverage:         []string{"United States", "Critical Infrastructure", "Healthcare"},
		DataQuality:      "Excellent",
	},
	{
		ID:               4,
		Name:             "MITRE ATT&CK",
		Type:             "Threat Intelligence Framework",
		CredibilityScore: 0.88,
		LastUpdated:      "2024-01-10T12:00:00",
		UpdateFrequency:  "Weekly",
		AccessMethod:     "API",
		ValidationStatus: "Verified",
		WhyChosen:        "Provides attack pattern context, helps understand how vulnerabilities are exploited in real attacks.",
		Limitations:      "Tactical focus, less operational",
		Coverage:         []string{"Attack Patterns", "Tactics", "Techniques"},
		DataQuality:      "Very Good",
	},
	{
		ID:               5,
		Name:             "Proprietary Email Feed",
		Type:             "Proprietary",
		CredibilityScore: 0.85,
		LastUpdated:      "2024-01-15T09:30:00",
		UpdateFrequency:  "As received",
		AccessMethod:     "Email Parsing",
		ValidationStatus: "Under Review",
		WhyChosen:        "Three-letter agency provides proprietary threat list. Contains non-public intelligence.",
		Limitations:      "Requires manual processing, classification concerns",
		Coverage:         []string{"Classified Threats", "Advanced Persistent Threats"},
		DataQuality:      "Good (requires validation)",
	},
}

func strPtr(s string) *string { return &s }

var tickets = []SupportTicket{
	{
		ID:            1,
		TicketNumber:  "BIO-2024-001",
		IssueType:     "Vulnerability Question",
		Description:   "Need clarification on biological impact of CVE-2024-1235",
		Status:        "Open",
		Priority:      PriorityHigh,
		SubmittedBy:   "Dr. Sarah Chen",
		SubmittedDate: "2024-01-15T10:30:00",
		AssignedTo:    "Security Team",
		ResponseTime:  "2 hours",
		LastUpdated:   "2024-01-15T12:30:00",
	},
	{
		ID:            2,
		TicketNumber:  "BIO-2024-002",
		IssueType:     "Remediation Guidance",
		Description:   "Requesting step-by-step remediation for lab equipment vulnerability",
		Status:        "In Progress",
		Priority:      PriorityCritical,
		SubmittedBy:   "Lab Manager John Smith",
		SubmittedDate: "2024-01-15T09:15:00",
		AssignedTo:    "Remediation Team",
		ResponseTime:  "1 hour",
		LastUpdated:   "2024-01-15T10:15:00",
	},
	{
		ID:            3,
		TicketNumber:  "BIO-2024-003",
		IssueType:     "Data Source Question",
		Description:   "Why was EU-CERT chosen as primary source for this threat?",
		Status:        "Resolved",
		Priority:      PriorityMedium,
		SubmittedBy:   "Security Analyst Mike Johnson",
		SubmittedDate: "2024-01-14T14:20:00",
		AssignedTo:    "Data Team",
		ResponseTime:  "4 hours",
		LastUpdated:   "2024-01-14T18:20:00",
		Resolution:    strPtr("EU-CERT selected due to high credibility score (0.95) and direct relevance to European biotech sector. Cross-validated with CVE database."),
	},
}

// DataSources returns a copy of the configured intelligence sources.
func DataSources() []DataSource {
	out := make([]DataSource, len(dataSources))
	copy(out, dataSources)
	return out
}

// Validation returns the validation report for a source.
func Validation(sourceID int) SourceValidation {
	return SourceValidation{
		SourceID:          sourceID,
		LastValidated:     "2024-01-15T10:00:00",
		ValidationMethod:  "Cross-reference with CVE database and expert review",
		AccuracyScore:     0.94,
		CompletenessScore: 0.87,
		TimelinessScore:   0.91,
		OverallRating:     "Excellent",
		Issues:            []string{},
		Recommendations:   []string{"Continue using as primary source", "Monitor for any changes in data quality"},
	}
}

// Tickets returns a copy of the open and recent support tickets.
func Tickets() []SupportTicket {
	out := make([]SupportTicket, len(tickets))
	copy(out, tickets)
	return out
}

// Desk opens new support tickets. Tickets are not persisted.
type Desk struct {
	now  func() time.Time
	rand *rand.Rand
}

// NewDesk creates a support desk.
func NewDesk() *Desk {
	return &Desk{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Open builds the ticket for req.
func (d *Desk) Open(req TicketRequest) SupportTicket {
	now := d.now()
	return SupportTicket{
		ID:            999,
		TicketNumber:  fmt.Sprintf("BIO-%d-%s-%d", now.Year(), now.Format("0102"), 100+d.rand.Intn(900)),
		IssueType:     req.IssueType,
		Description:   req.Description,
		Status:        "Open",
		Priority:      DeterminePriority(req.IssueType, req.Description),
		SubmittedBy:   req.SubmittedBy,
		SubmittedDate: now.Format(timestampLayout),
		AssignedTo:    "Unassigned",
		ResponseTime:  "Pending",
	}
}

// DeterminePriority triages a ticket from its wording.
func DeterminePriority(issueType, description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "critical"), strings.Contains(desc, "urgent"), strings.Contains(issueType, "Critical"):
		return PriorityCritical
	case strings.Contains(desc, "high"), strings.Contains(issueType, "High"):
		return PriorityHigh
	default:
		return PriorityMedium
	}
}
