package image

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"moodboard/internal/domain"
)

const (
	defaultWaveSpeedBaseURL = "https://api.wavespeed.ai"
	defaultSeedreamSize     = "2048*2048"
)

// Seedream edits through WaveSpeed in sync mode. A response that is not yet
// complete but carries a prediction id is treated as accepted and polled.
type Seedream struct {
	client
	size string
}

type seedreamRequest struct {
	Prompt         string   `json:"prompt"`
	Images         []string `json:"images"`
	Size           string   `json:"size"`
	EnableSyncMode bool     `json:"enable_sync_mode"`
}

type waveSpeedPrediction struct {
	ID      string            `json:"id"`
	Status  string            `json:"status"`
	Outputs []json.RawMessage `json:"outputs"`
	Error   string            `json:"error"`
}

type waveSpeedEnvelope struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    waveSpeedPrediction `json:"data"`
}

// NewSeedream constructs the transport with sane defaults.
func NewSeedream(opts Options) *Seedream {
	size := strings.TrimSpace(opts.Size)
	if size == "" {
		size = defaultSeedreamSize
	}
	return &Seedream{
		client: newClient("seedream", defaultWaveSpeedBaseURL, opts),
		size:   size,
	}
}

// Submit runs the edit and usually returns the finished image inline.
func (s *Seedream) Submit(ctx context.Context, job domain.ProviderJob) (domain.Submission, error) {
	if !s.HasCredentials() {
		return s.missingCredentials(), nil
	}
	payload := seedreamRequest{
		Prompt:         enhancementPrompt(job),
		Images:         []string{job.ImageURL},
		Size:           s.size,
		EnableSyncMode: true,
	}
	status, raw, err := s.do(ctx, http.MethodPost, "/api/v3/bytedance/seedream-v4/edit", payload)
	if err != nil {
		return domain.Submission{}, err
	}

	var env waveSpeedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return rejected(status, 0, snippet(raw)), nil
	}
	if !isSuccess(status) || (env.Code != 0 && env.Code != http.StatusOK) {
		msg := env.Message
		if msg == "" {
			msg = env.Data.Error
		}
		s.logger.Warn().
			Int("status", status).
			Int("code", env.Code).
			Str("msg", msg).
			Str("request_id", job.RequestID).
			Msg("seedream: submit rejected")
		return rejected(status, env.Code, msg), nil
	}

	pred := env.Data
	switch predictionStatus(pred.Status) {
	case domain.RemoteCompleted:
		if out := firstOutput(pred.Outputs); out != "" {
			return domain.Submission{Kind: domain.SubmissionSync, ResultURL: out}, nil
		}
	case domain.RemoteFailed:
		return rejected(status, 0, pred.Error), nil
	}
	if id := strings.TrimSpace(pred.ID); id != "" {
		s.logger.Debug().Str("task_id", id).Str("status", pred.Status).Msg("seedream: prediction pending")
		return domain.Submission{Kind: domain.SubmissionAccepted, TaskID: id}, nil
	}
	return rejected(status, 0, "seedream: response without outputs or prediction id"), nil
}

// PollStatus fetches the prediction result.
func (s *Seedream) PollStatus(ctx context.Context, taskID string) (domain.PollResult, error) {
	status, raw, err := s.do(ctx, http.MethodGet, "/api/v3/predictions/"+url.PathEscape(taskID)+"/result", nil)
	if err != nil {
		return domain.PollResult{}, err
	}
	if status >= http.StatusInternalServerError {
		return domain.PollResult{}, fmt.Errorf("seedream: result status %d: %s", status, snippet(raw))
	}
	var env waveSpeedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.PollResult{}, fmt.Errorf("seedream: decode result: %w", err)
	}
	if !isSuccess(status) || (env.Code != 0 && env.Code != http.StatusOK) {
		return domain.PollResult{Status: domain.RemoteFailed, Failure: failure(status, env.Code, env.Message)}, nil
	}

	pred := env.Data
	switch predictionStatus(pred.Status) {
	case domain.RemoteCompleted:
		return domain.PollResult{Status: domain.RemoteCompleted, ResultURL: firstOutput(pred.Outputs)}, nil
	case domain.RemoteFailed:
		return domain.PollResult{Status: domain.RemoteFailed, Failure: &domain.ProviderFailure{StatusCode: status, Message: pred.Error}}, nil
	default:
		return domain.PollResult{Status: domain.RemoteProcessing}, nil
	}
}

func predictionStatus(raw string) domain.RemoteStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "succeeded":
		return domain.RemoteCompleted
	case "failed", "error":
		return domain.RemoteFailed
	default:
		return domain.RemoteProcessing
	}
}

// firstOutput accepts both plain URL strings and {"url": ...} objects.
func firstOutput(outputs []json.RawMessage) string {
	for _, raw := range outputs {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			if u := strings.TrimSpace(obj.URL); u != "" {
				return u
			}
		}
	}
	return ""
}

var _ domain.ProviderTransport = (*Seedream)(nil)
