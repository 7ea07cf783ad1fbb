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
	defaultNanoBananaBaseURL = "https://api.nanobananaapi.ai"
	// The provider spells it this way.
	nanoBananaImageToImage = "IMAGETOIAMGE"
)

// NanoBanana hands out a task id on submit and is polled for the result.
type NanoBanana struct {
	client
	callbackURL string
}

type nanoBananaRequest struct {
	Prompt      string   `json:"prompt"`
	Type        string   `json:"type"`
	ImageURLs   []string `json:"imageUrls"`
	CallbackURL string   `json:"callBackUrl,omitempty"`
	NumImages   int      `json:"numImages"`
}

type nanoBananaEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type nanoBananaTask struct {
	TaskID string `json:"taskId"`
}

type nanoBananaRecord struct {
	TaskID      string `json:"taskId"`
	SuccessFlag int    `json:"successFlag"`
	Response    struct {
		ResultImageURL string `json:"resultImageUrl"`
	} `json:"response"`
	ErrorMessage string `json:"errorMessage"`
}

// NewNanoBanana constructs the transport with sane defaults.
func NewNanoBanana(opts Options) *NanoBanana {
	return &NanoBanana{
		client:      newClient("nanobanana", defaultNanoBananaBaseURL, opts),
		callbackURL: strings.TrimSpace(opts.CallbackURL),
	}
}

// Submit creates an image-to-image task.
func (n *NanoBanana) Submit(ctx context.Context, job domain.ProviderJob) (domain.Submission, error) {
	if !n.HasCredentials() {
		return n.missingCredentials(), nil
	}
	payload := nanoBananaRequest{
		Prompt:      enhancementPrompt(job),
		Type:        nanoBananaImageToImage,
		ImageURLs:   []string{job.ImageURL},
		CallbackURL: n.callbackURL,
		NumImages:   1,
	}
	status, raw, err := n.do(ctx, http.MethodPost, "/api/v1/nanobanana/generate", payload)
	if err != nil {
		return domain.Submission{}, err
	}

	var env nanoBananaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return rejected(status, 0, snippet(raw)), nil
	}
	if !isSuccess(status) || env.Code != http.StatusOK {
		n.logger.Warn().
			Int("status", status).
			Int("code", env.Code).
			Str("msg", env.Msg).
			Str("request_id", job.RequestID).
			Msg("nanobanana: submit rejected")
		return rejected(status, env.Code, env.Msg), nil
	}
	var task nanoBananaTask
	if err := json.Unmarshal(env.Data, &task); err != nil || strings.TrimSpace(task.TaskID) == "" {
		return rejected(status, 0, "nanobanana: response without task id"), nil
	}
	n.logger.Debug().
		Str("task_id", task.TaskID).
		Str("request_id", job.RequestID).
		Msg("nanobanana: task created")
	return domain.Submission{Kind: domain.SubmissionAccepted, TaskID: strings.TrimSpace(task.TaskID)}, nil
}

// PollStatus reads the task record. successFlag 0 is running, 1 succeeded,
// anything else failed.
func (n *NanoBanana) PollStatus(ctx context.Context, taskID string) (domain.PollResult, error) {
	status, raw, err := n.do(ctx, http.MethodGet, "/api/v1/nanobanana/record-info?taskId="+url.QueryEscape(taskID), nil)
	if err != nil {
		return domain.PollResult{}, err
	}
	if status >= http.StatusInternalServerError {
		return domain.PollResult{}, fmt.Errorf("nanobanana: record-info status %d: %s", status, snippet(raw))
	}

	var env nanoBananaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.PollResult{}, fmt.Errorf("nanobanana: decode record-info: %w", err)
	}
	if !isSuccess(status) || env.Code != http.StatusOK {
		return domain.PollResult{Status: domain.RemoteFailed, Failure: failure(status, env.Code, env.Msg)}, nil
	}
	var rec nanoBananaRecord
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return domain.PollResult{}, fmt.Errorf("nanobanana: decode record: %w", err)
	}

	switch rec.SuccessFlag {
	case 0:
		return domain.PollResult{Status: domain.RemoteProcessing}, nil
	case 1:
		return domain.PollResult{Status: domain.RemoteCompleted, ResultURL: strings.TrimSpace(rec.Response.ResultImageURL)}, nil
	default:
		msg := rec.ErrorMessage
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("task failed (successFlag=%d)", rec.SuccessFlag)
		}
		return domain.PollResult{Status: domain.RemoteFailed, Failure: &domain.ProviderFailure{StatusCode: status, Message: msg}}, nil
	}
}

var _ domain.ProviderTransport = (*NanoBanana)(nil)
