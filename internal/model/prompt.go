package model

import "time"

// Severity is the risk level assigned to a prompt.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid checks whether the severity is a known value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rank orders severities from none (0) to high (3); unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityNone:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return -1
}

// PromptMetadata is request context captured with a prompt.
type PromptMetadata struct {
	UserAgent string `json:"userAgent"`
	IPAddress string `json:"ipAddress"`
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId"`
}

// Prompt is one captured prompt sent by an employee to an AI tool.
type Prompt struct {
	ID           string         `json:"id"`
	PromptText   string         `json:"promptText"`
	Timestamp    time.Time      `json:"timestamp"`
	AITool       string         `json:"aiTool"`
	EmployeeID   string         `json:"employeeId"`
	EmployeeName string         `json:"employeeName"`
	DeviceID     string         `json:"deviceId"`
	ClientID     string         `json:"clientId"`
	ClientName   string         `json:"clientName"`
	FlagSeverity Severity       `json:"flagSeverity"`
	IsFlagged    bool           `json:"isFlagged"`
	Metadata     PromptMetadata `json:"metadata"`
	Response     string         `json:"response,omitempty"`
	ResponseTime float64        `json:"responseTime,omitempty"`
}

// PromptUpdate holds optional prompt changes. Nil fields mean "don't change".
type PromptUpdate struct {
	IsFlagged    *bool     `json:"isFlagged,omitempty"`
	FlagSeverity *Severity `json:"flagSeverity,omitempty"`
}

// PromptPage is one server-paginated page of prompts.
type PromptPage struct {
	Prompts []*Prompt `json:"prompts"`
	Total   int       `json:"total"`
}

// ToolCount is a usage count for one AI tool or platform.
type ToolCount struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// EmployeeCount summarizes one employee's prompt activity.
type EmployeeCount struct {
	Name    string `json:"name"`
	Prompts int    `json:"prompts"`
	Flagged int    `json:"flagged"`
}

// Activity is an entry in the recent activity feed.
type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Severity    string    `json:"severity"`
}

// PromptStats is the pre-aggregated summary shown above the prompts list.
type PromptStats struct {
	TotalPrompts      int             `json:"totalPrompts"`
	FlaggedPrompts    int             `json:"flaggedPrompts"`
	HighRiskPrompts   int             `json:"highRiskPrompts"`
	MediumRiskPrompts int             `json:"mediumRiskPrompts"`
	LowRiskPrompts    int             `json:"lowRiskPrompts"`
	TopAITools        []ToolCount     `json:"topAiTools"`
	TopEmployees      []EmployeeCount `json:"topEmployees"`
	RecentActivity    []Activity      `json:"recentActivity"`
}
