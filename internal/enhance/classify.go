package enhance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moodboard/internal/domain"
)

// EnhancementError is a classified failure. Message is safe to show to users,
// Detail keeps the raw signal for diagnostics.
type EnhancementError struct {
	Kind    domain.ErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *EnhancementError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("enhance: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("enhance: %s", e.Kind)
}

func (e *EnhancementError) Unwrap() error { return e.Err }

// Is matches any EnhancementError of the same kind, so callers can write
// errors.Is(err, enhance.ErrTimeout).
func (e *EnhancementError) Is(target error) bool {
	t, ok := target.(*EnhancementError)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether the subsystem would retry this failure on its own.
func (e *EnhancementError) Retryable() bool {
	return kindTable[e.Kind].retryable
}

var (
	ErrUnsupportedInputFormat = &EnhancementError{Kind: domain.KindUnsupportedInputFormat}
	ErrSourceUnreachable      = &EnhancementError{Kind: domain.KindSourceUnreachable}
	ErrInsufficientCredits    = &EnhancementError{Kind: domain.KindInsufficientCredits}
	ErrInvalidImageFormat     = &EnhancementError{Kind: domain.KindInvalidImageFormat}
	ErrNetwork                = &EnhancementError{Kind: domain.KindNetwork}
	ErrProviderOutOfCredits   = &EnhancementError{Kind: domain.KindProviderOutOfCredits}
	ErrTimeout                = &EnhancementError{Kind: domain.KindTimeout}
	ErrUnknown                = &EnhancementError{Kind: domain.KindUnknown}
	ErrInvalidRequest         = &EnhancementError{Kind: domain.KindInvalidRequest}
	ErrItemBusy               = &EnhancementError{Kind: domain.KindItemBusy}
)

type kindInfo struct {
	message   string
	retryable bool
}

var kindTable = map[domain.ErrorKind]kindInfo{
	domain.KindUnsupportedInputFormat: {message: "Please use a direct image URL instead of pasted/uploaded images for enhancement"},
	domain.KindSourceUnreachable:      {message: "The image URL is not accessible. Please ensure it's publicly available"},
	domain.KindInsufficientCredits:    {message: "Insufficient credits for enhancement"},
	domain.KindInvalidImageFormat:     {message: "Invalid image format. Please use JPEG, PNG, or WebP images"},
	domain.KindNetwork:                {message: "Network error. Please check your connection and try again"},
	domain.KindProviderOutOfCredits:   {message: "Enhancement service has insufficient credits. Please contact support to add credits to your enhancement service account."},
	domain.KindTimeout:                {message: "Enhancement timed out. Please try again."},
	domain.KindUnknown:                {message: "Enhancement failed"},
	domain.KindInvalidRequest:         {message: "The enhancement request is incomplete or invalid"},
	domain.KindItemBusy:               {message: "This image is already being enhanced"},
}

const platformCreditsLowMessage = "Enhancement service is temporarily unavailable due to low platform credits. Please try again later or contact support."

// UserMessage returns the user-facing text for a kind.
func UserMessage(kind domain.ErrorKind) string {
	if info, ok := kindTable[kind]; ok {
		return info.message
	}
	return kindTable[domain.KindUnknown].message
}

func newError(kind domain.ErrorKind, detail string, cause error) *EnhancementError {
	return &EnhancementError{Kind: kind, Message: UserMessage(kind), Detail: detail, Err: cause}
}

// ClassifyTransport maps a failed submit/poll call. Transport failures are
// never retried here.
func ClassifyTransport(err error) *EnhancementError {
	if err == nil {
		return nil
	}
	var classified *EnhancementError
	if errors.As(err, &classified) {
		return classified
	}
	detail := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		detail = "request deadline exceeded: " + detail
	}
	return newError(domain.KindNetwork, detail, err)
}

// ClassifyValidation wraps a request rejected before submission.
func ClassifyValidation(err error) *EnhancementError {
	if err == nil {
		return nil
	}
	return newError(domain.KindInvalidRequest, err.Error(), err)
}

// ClassifyProvider maps a provider error payload. Unrecognised payloads are
// reported as unknown with the raw detail kept.
func ClassifyProvider(f domain.ProviderFailure) *EnhancementError {
	detail := failureDetail(f)
	code := strings.ToUpper(strings.TrimSpace(f.Code))
	switch code {
	case "DATA_URL_NOT_SUPPORTED":
		return newError(domain.KindUnsupportedInputFormat, detail, domain.ErrProviderFailure)
	case "IMAGE_URL_INACCESSIBLE":
		return newError(domain.KindSourceUnreachable, detail, domain.ErrProviderFailure)
	case "INSUFFICIENT_CREDITS":
		return newError(domain.KindInsufficientCredits, detail, domain.ErrProviderFailure)
	case "INVALID_IMAGE_FORMAT":
		return newError(domain.KindInvalidImageFormat, detail, domain.ErrProviderFailure)
	case "NETWORK_ERROR":
		return newError(domain.KindNetwork, detail, domain.ErrProviderFailure)
	case "ENHANCEMENT_SERVICE_CREDITS":
		return newError(domain.KindProviderOutOfCredits, detail, domain.ErrProviderFailure)
	case "PLATFORM_CREDITS_LOW":
		e := newError(domain.KindProviderOutOfCredits, detail, domain.ErrProviderFailure)
		e.Message = platformCreditsLowMessage
		return e
	}
	if f.StatusCode == 402 || code == "402" {
		return newError(domain.KindProviderOutOfCredits, detail, domain.ErrProviderFailure)
	}

	msg := strings.ToLower(f.Message)
	switch {
	case strings.Contains(msg, "format"):
		return newError(domain.KindInvalidImageFormat, detail, domain.ErrProviderFailure)
	case strings.Contains(msg, "url"), strings.Contains(msg, "fetch"), strings.Contains(msg, "accessible"):
		return newError(domain.KindSourceUnreachable, detail, domain.ErrProviderFailure)
	}
	return newError(domain.KindUnknown, detail, domain.ErrProviderFailure)
}

func failureDetail(f domain.ProviderFailure) string {
	parts := make([]string, 0, 3)
	if f.StatusCode != 0 {
		parts = append(parts, "status="+strconv.Itoa(f.StatusCode))
	}
	if c := strings.TrimSpace(f.Code); c != "" {
		parts = append(parts, "code="+c)
	}
	if m := strings.TrimSpace(f.Message); m != "" {
		parts = append(parts, m)
	}
	if len(parts) == 0 {
		return "provider returned no detail"
	}
	return strings.Join(parts, " ")
}
