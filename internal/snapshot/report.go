package snapshot

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRunInProgress is returned when a trigger arrives while a run is active.
	ErrRunInProgress = errors.New("snapshot: generation run already in progress")
	// ErrNoStore is returned when the generator has nowhere to publish pages.
	ErrNoStore = errors.New("snapshot: page store is required")
	// ErrNoFetcher is returned when the generator has no entity source.
	ErrNoFetcher = errors.New("snapshot: entity fetcher is required")
	// ErrPageExists is returned by a store when Upsert is off and the object exists.
	ErrPageExists = errors.New("snapshot: page already exists")
)

// RunState is the lifecycle of a generation run.
type RunState string

// Run states. A run moves Idle -> Running -> Completed and never pauses.
const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
)

// Stage names the pipeline step that failed for a page.
type Stage string

// Pipeline stages that can fail per page.
const (
	StageRender Stage = "render"
	StageUpload Stage = "upload"
)

// PageError wraps a per-page failure with the page identity and stage.
type PageError struct {
	Page  string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Failure is one entry of the report's error sample.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Report summarizes a completed run.
type Report struct {
	Success            bool      `json:"success"`
	Generated          int       `json:"generated"`
	Errors             int       `json:"errors"`
	ErrorDetails       []Failure `json:"errorDetails"`
	Message            string    `json:"message"`
	Timestamp          time.Time `json:"timestamp"`
	RunID              string    `json:"runId,omitempty"`
	DurationMs         int64     `json:"durationMs"`
	SkippedCollections []string  `json:"skippedCollections,omitempty"`
}
