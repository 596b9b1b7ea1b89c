package model

import (
	"encoding/json"
	"time"
)

// RecentPrompt is an entry of the analytics activity feed.
type RecentPrompt struct {
	ID         int       `json:"id"`
	Prompt     string    `json:"prompt"`
	Source     string    `json:"source"`
	AIPlatform string    `json:"aiPlatform"`
	RiskLevel  string    `json:"riskLevel"`
	Timestamp  time.Time `json:"timestamp"`
}

// AnalyticsStats is the summary served at /prompts/stats for the analytics screen.
type AnalyticsStats struct {
	TotalPrompts    int            `json:"totalPrompts"`
	FlaggedPrompts  int            `json:"flaggedPrompts"`
	HighRiskPrompts int            `json:"highRiskPrompts"`
	TopPlatforms    []ToolCount    `json:"topPlatforms"`
	RecentActivity  []RecentPrompt `json:"recentActivity"`
}

// Dataset is one series of a chart.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     []string  `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
}

// ChartData is a labelled set of series.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Trends is passed through untyped; the backend has not fixed its shape.
type Trends = json.RawMessage
