// Package types contains the request and view types shared by the
// application service and the HTTP API.
package types

import (
	"time"

	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/stage"
)

// FormContext carries the defaults of a multi-step submission form between
// requests. It lives with the client, never on the server.
type FormContext struct {
	LastSubmitter string `json:"last_submitter,omitempty"`
	LastDay       int    `json:"last_day,omitempty"`
}

// SubmitRequest is one status report. Empty Submitter and zero Day fall back
// to Context; an empty Participant falls back to the submitter.
type SubmitRequest struct {
	ID          string      `json:"id,omitempty"`
	Submitter   string      `json:"submitter,omitempty"`
	Participant string      `json:"participant,omitempty"`
	Day         int         `json:"day,omitempty"`
	Status      string      `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	Context     FormContext `json:"context"`
}

// NotificationSummary reports what a submission triggered.
type NotificationSummary struct {
	Alert       string   `json:"alert,omitempty"`
	OfficialDay int      `json:"official_day"`
	Broadcast   bool     `json:"broadcast"`
	Queued      int      `json:"queued"`
	Skipped     []string `json:"skipped,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// SubmitResult is returned for an accepted or duplicate submission.
type SubmitResult struct {
	Submission    model.Submission    `json:"submission"`
	Duplicate     bool                `json:"duplicate"`
	Context       FormContext         `json:"context"`
	Notifications NotificationSummary `json:"notifications"`
	Diagnostics   []string            `json:"diagnostics,omitempty"`
}

// EditionView describes a configured edition.
type EditionView struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date,omitempty"`
	Roster    []string  `json:"roster"`
}

// RankingView is a ranking plus whatever went wrong computing it.
type RankingView struct {
	Edition     string        `json:"edition"`
	Ranking     model.Ranking `json:"ranking"`
	MaxDay      int           `json:"max_day"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

// StageView is the completion search result with the official standings.
type StageView struct {
	Edition     string      `json:"edition"`
	Stage       stage.Stage `json:"stage"`
	MaxDay      int         `json:"max_day"`
	Standings   []model.Row `json:"standings"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
}

// SurvivalView is a survival curve for one edition.
type SurvivalView struct {
	Edition     string                `json:"edition"`
	Points      []model.SurvivalPoint `json:"points"`
	Diagnostics []string              `json:"diagnostics,omitempty"`
}
