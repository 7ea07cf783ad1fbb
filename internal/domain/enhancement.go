package domain

import (
	"fmt"
	"strings"
	"time"
)

// EnhancementType enumerates supported enhancement categories.
type EnhancementType string

const (
	EnhancementLighting   EnhancementType = "lighting"
	EnhancementStyle      EnhancementType = "style"
	EnhancementBackground EnhancementType = "background"
	EnhancementMood       EnhancementType = "mood"
	EnhancementCustom     EnhancementType = "custom"
)

// ParseEnhancementType normalizes free-form input into a supported type.
func ParseEnhancementType(raw string) (EnhancementType, error) {
	switch t := EnhancementType(strings.ToLower(strings.TrimSpace(raw))); t {
	case EnhancementLighting, EnhancementStyle, EnhancementBackground, EnhancementMood, EnhancementCustom:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown enhancement type %q", ErrInvalidRequest, raw)
	}
}

// ProviderID identifies an enhancement backend.
type ProviderID string

const (
	ProviderNanoBanana ProviderID = "nanobanana"
	ProviderSeedream   ProviderID = "seedream"
)

// CompletionMode tells whether a provider answers inline or hands out a task id.
type CompletionMode string

const (
	CompletionSynchronous  CompletionMode = "synchronous"
	CompletionAsynchronous CompletionMode = "asynchronous"
)

// DefaultStrength is applied when a request leaves strength unset.
const DefaultStrength = 0.8

// EnhancementRequest is immutable once handed to the orchestrator.
type EnhancementRequest struct {
	UserID      string
	MoodboardID string
	ItemID      string
	Type        EnhancementType
	Prompt      string
	Provider    ProviderID
	// Strength in [0,1]; nil means DefaultStrength.
	Strength *float64
}

// Normalize trims text fields and applies defaults.
func (r EnhancementRequest) Normalize(defaultProvider ProviderID) EnhancementRequest {
	r.UserID = strings.TrimSpace(r.UserID)
	r.MoodboardID = strings.TrimSpace(r.MoodboardID)
	r.ItemID = strings.TrimSpace(r.ItemID)
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Provider == "" {
		r.Provider = defaultProvider
	}
	if r.Strength == nil {
		s := DefaultStrength
		r.Strength = &s
	}
	return r
}

// StrengthValue returns the requested strength or DefaultStrength.
func (r EnhancementRequest) StrengthValue() float64 {
	if r.Strength == nil {
		return DefaultStrength
	}
	return *r.Strength
}

// Validate rejects requests that must never reach a provider.
func (r EnhancementRequest) Validate() error {
	if r.ItemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidRequest)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	if _, err := ParseEnhancementType(string(r.Type)); err != nil {
		return err
	}
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	if s := r.StrengthValue(); s < 0 || s > 1 {
		return fmt.Errorf("%w: strength %.2f out of range [0,1]", ErrInvalidRequest, s)
	}
	return nil
}

// TaskStatus enumerates the per-item enhancement lifecycle.
type TaskStatus string

const (
	TaskIdle       TaskStatus = "idle"
	TaskProcessing TaskStatus = "processing"
	TaskPolling    TaskStatus = "polling"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Active reports whether the task currently owns its item.
func (s TaskStatus) Active() bool {
	return s == TaskProcessing || s == TaskPolling
}

// EnhancementTask is the observable state of one enhancement attempt.
type EnhancementTask struct {
	TaskID      string
	ItemID      string
	Provider    ProviderID
	Status      TaskStatus
	Progress    int
	ResultURL   string
	ErrorKind   ErrorKind
	ErrorDetail string
	UpdatedAt   time.Time
}

// TaskRecord is the persisted form of a task, used to resume abandoned polls.
type TaskRecord struct {
	ID          string
	TaskID      string
	UserID      string
	MoodboardID string
	ItemID      string
	Provider    ProviderID
	Type        EnhancementType
	Prompt      string
	Strength    float64
	InputURL    string
	Status      TaskStatus
	ResultURL   string
	ErrorKind   ErrorKind
	ErrorDetail string
	Cost        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
