package domain

import "context"

// ProviderJob is the normalized payload handed to a provider transport.
type ProviderJob struct {
	RequestID string
	ImageURL  string
	Prompt    string
	Type      EnhancementType
	Strength  float64
}

// SubmissionKind tags the shape of a submit response.
type SubmissionKind int

const (
	SubmissionRejected SubmissionKind = iota
	SubmissionSync
	SubmissionAccepted
)

func (k SubmissionKind) String() string {
	switch k {
	case SubmissionSync:
		return "sync"
	case SubmissionAccepted:
		return "accepted"
	default:
		return "rejected"
	}
}

// ProviderFailure is a provider error payload after normalization.
type ProviderFailure struct {
	StatusCode int
	Code       string
	Message    string
}

// Submission is the tagged union returned by Submit:
// Sync carries ResultURL, Accepted carries TaskID, Rejected carries Failure.
type Submission struct {
	Kind      SubmissionKind
	TaskID    string
	ResultURL string
	Failure   *ProviderFailure
}

// RemoteStatus is the provider-reported job status.
type RemoteStatus string

const (
	RemoteProcessing RemoteStatus = "processing"
	RemoteCompleted  RemoteStatus = "completed"
	RemoteFailed     RemoteStatus = "failed"
)

// PollResult is a normalized status check.
type PollResult struct {
	Status    RemoteStatus
	ResultURL string
	Failure   *ProviderFailure
}

// ProviderTransport talks to one enhancement backend. A non-nil error always
// means the transport itself failed; provider-side refusals come back as data.
type ProviderTransport interface {
	Submit(ctx context.Context, job ProviderJob) (Submission, error)
	PollStatus(ctx context.Context, taskID string) (PollResult, error)
}
