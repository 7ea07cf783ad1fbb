package enhance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
)

const (
	DefaultCompletedGrace = 2 * time.Second
	DefaultFailedGrace    = 3 * time.Second
)

// ErrClosed is returned once the orchestrator has been shut down.
var ErrClosed = errors.New("enhance: orchestrator closed")

// Options configures an Orchestrator.
type Options struct {
	Registry   *Registry
	Gate       *CreditGate
	Transports map[domain.ProviderID]domain.ProviderTransport
	Items      domain.ItemStore
	Log        domain.EnhancementLog
	// Tasks persists lifecycle rows so abandoned polls can be resumed. Optional.
	Tasks domain.TaskRecorder

	Poll           PollConfig
	CompletedGrace time.Duration
	FailedGrace    time.Duration
	// AllowPrivateSources lets loopback and private hosts through (local dev).
	AllowPrivateSources bool

	Logger *infra.Logger
	Now    func() time.Time
}

// Orchestrator is the entry point for image enhancement. It owns the set of
// items currently enhancing; everything else is reached through capabilities.
type Orchestrator struct {
	registry   *Registry
	gate       *CreditGate
	transports map[domain.ProviderID]domain.ProviderTransport
	items      domain.ItemStore
	reconciler *Reconciler
	tasks      domain.TaskRecorder
	inflight   *inflight

	poll           PollConfig
	completedGrace time.Duration
	failedGrace    time.Duration
	allowPrivate   bool

	logger *infra.Logger
	now    func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New validates the wiring and returns a ready orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, errors.New("enhance: registry is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("enhance: credit gate is required")
	}
	if opts.Items == nil || opts.Log == nil {
		return nil, errors.New("enhance: item store and enhancement log are required")
	}
	transports := make(map[domain.ProviderID]domain.ProviderTransport, len(opts.Transports))
	for id, t := range opts.Transports {
		if _, err := opts.Registry.Lookup(id); err != nil {
			return nil, fmt.Errorf("enhance: transport for %w", err)
		}
		if t == nil {
			return nil, fmt.Errorf("enhance: transport for %q is nil", id)
		}
		transports[id] = t
	}
	def := opts.Registry.Default().ID
	if _, ok := transports[def]; !ok {
		return nil, fmt.Errorf("enhance: default provider %q has no transport", def)
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	completedGrace := opts.CompletedGrace
	if completedGrace <= 0 {
		completedGrace = DefaultCompletedGrace
	}
	failedGrace := opts.FailedGrace
	if failedGrace <= 0 {
		failedGrace = DefaultFailedGrace
	}

	reconciler := NewReconciler(opts.Items, opts.Log)
	reconciler.now = now

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		registry:       opts.Registry,
		gate:           opts.Gate,
		transports:     transports,
		items:          opts.Items,
		reconciler:     reconciler,
		tasks:          opts.Tasks,
		inflight:       newInflight(),
		poll:           opts.Poll.withDefaults(),
		completedGrace: completedGrace,
		failedGrace:    failedGrace,
		allowPrivate:   opts.AllowPrivateSources,
		logger:         logger,
		now:            now,
		baseCtx:        ctx,
		cancel:         cancel,
	}, nil
}

// run carries one task from acceptance to its terminal state.
type run struct {
	id        string
	req       domain.EnhancementRequest
	provider  ProviderInfo
	transport domain.ProviderTransport
	inputURL  string
	gen       uint64
	m         *taskMachine
	createdAt time.Time
}

type outcome struct {
	url string
	err error
}

// Enhance submits req and blocks until the task is terminal or ctx ends. A
// departed caller does not stop an accepted task; it keeps polling and is
// reconciled in the background. Failures are *EnhancementError values.
func (o *Orchestrator) Enhance(ctx context.Context, req domain.EnhancementRequest) (string, error) {
	if o.baseCtx.Err() != nil {
		return "", ErrClosed
	}
	req = req.Normalize(o.registry.Default().ID)
	if err := req.Validate(); err != nil {
		return "", ClassifyValidation(err)
	}
	provider, err := o.registry.Lookup(req.Provider)
	if err != nil {
		return "", ClassifyValidation(err)
	}
	transport, ok := o.transports[provider.ID]
	if !ok {
		return "", ClassifyValidation(fmt.Errorf("%w: provider %q is not configured", domain.ErrInvalidRequest, provider.ID))
	}

	gen, ok := o.inflight.reserve(req.ItemID, provider.ID)
	if !ok {
		return "", newError(domain.KindItemBusy, "item "+req.ItemID+" already has an active task", nil)
	}
	accepted := false
	defer func() {
		if !accepted {
			o.inflight.release(req.ItemID, gen)
		}
	}()

	item, err := o.items.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ClassifyValidation(fmt.Errorf("%w: item %s not found", domain.ErrInvalidRequest, req.ItemID))
		}
		return "", newError(domain.KindUnknown, "load item: "+err.Error(), err)
	}
	if e := o.checkSource(item.URL); e != nil {
		return "", e
	}
	if req.MoodboardID == "" {
		req.MoodboardID = item.MoodboardID
	}

	balance, err := o.gate.Refresh(ctx, req.UserID)
	if err != nil {
		return "", newError(domain.KindUnknown, err.Error(), err)
	}
	if !o.gate.CanAfford(balance, provider) {
		return "", newError(domain.KindInsufficientCredits,
			fmt.Sprintf("balance %d below %s cost %d", balance.Current, provider.ID, provider.Cost), nil)
	}

	accepted = true
	r := &run{
		id:        uuid.NewString(),
		req:       req,
		provider:  provider,
		transport: transport,
		inputURL:  item.URL,
		gen:       gen,
		m:         newTaskMachine(req.ItemID, provider.ID, o.now),
		createdAt: o.now(),
	}
	_ = r.m.Submit()
	o.publish(r)
	o.save(r)

	log := o.runLogger(r)
	sub, err := transport.Submit(ctx, domain.ProviderJob{
		RequestID: r.id,
		ImageURL:  item.URL,
		Prompt:    req.Prompt,
		Type:      req.Type,
		Strength:  req.StrengthValue(),
	})
	if err != nil {
		return "", o.fail(r, ClassifyTransport(err))
	}

	switch sub.Kind {
	case domain.SubmissionSync:
		if sub.ResultURL == "" {
			return "", o.fail(r, newError(domain.KindUnknown, "synchronous result without url", domain.ErrProviderFailure))
		}
		if provider.Mode != domain.CompletionSynchronous {
			log.Debug().Msg("enhance: asynchronous provider answered inline")
		}
		return o.complete(r, sub.ResultURL)
	case domain.SubmissionAccepted:
		if sub.TaskID == "" {
			return "", o.fail(r, newError(domain.KindUnknown, "accepted submission without task id", domain.ErrProviderFailure))
		}
		if err := r.m.Accept(sub.TaskID); err != nil {
			return "", o.fail(r, newError(domain.KindUnknown, err.Error(), err))
		}
		o.publish(r)
		o.save(r)
		log.Info().Str("task_id", sub.TaskID).Msg("enhance: task accepted, polling")
		return o.await(ctx, r, o.startPolling(r))
	default:
		failure := domain.ProviderFailure{}
		if sub.Failure != nil {
			failure = *sub.Failure
		}
		return "", o.fail(r, ClassifyProvider(failure))
	}
}

// Resume re-enters polling for a persisted task whose loop went away.
func (o *Orchestrator) Resume(ctx context.Context, rec domain.TaskRecord) (string, error) {
	if o.baseCtx.Err() != nil {
		return "", ErrClosed
	}
	if rec.TaskID == "" || rec.ItemID == "" {
		return "", ClassifyValidation(fmt.Errorf("%w: task record %s has no provider task id", domain.ErrInvalidRequest, rec.ID))
	}
	provider, err := o.registry.Lookup(rec.Provider)
	if err != nil {
		return "", ClassifyValidation(err)
	}
	transport, ok := o.transports[provider.ID]
	if !ok {
		return "", ClassifyValidation(fmt.Errorf("%w: provider %q is not configured", domain.ErrInvalidRequest, provider.ID))
	}
	gen, ok := o.inflight.reserve(rec.ItemID, provider.ID)
	if !ok {
		return "", newError(domain.KindItemBusy, "item "+rec.ItemID+" already has an active task", nil)
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = o.now()
	}
	r := &run{
		id: id,
		req: domain.EnhancementRequest{
			UserID:      rec.UserID,
			MoodboardID: rec.MoodboardID,
			ItemID:      rec.ItemID,
			Type:        rec.Type,
			Prompt:      rec.Prompt,
			Provider:    provider.ID,
			Strength:    &rec.Strength,
		},
		provider:  provider,
		transport: transport,
		inputURL:  rec.InputURL,
		gen:       gen,
		m:         newTaskMachine(rec.ItemID, provider.ID, o.now),
		createdAt: created,
	}
	_ = r.m.Submit()
	_ = r.m.Accept(rec.TaskID)
	o.publish(r)
	o.runLogger(r).Info().Msg("enhance: resuming abandoned task")
	return o.await(ctx, r, o.startPolling(r))
}

// Status returns the observable state of the item's current task.
func (o *Orchestrator) Status(itemID string) (domain.EnhancementTask, bool) {
	return o.inflight.get(itemID)
}

// Active lists every tracked task, including terminal ones awaiting cleanup.
func (o *Orchestrator) Active() []domain.EnhancementTask {
	return o.inflight.snapshot()
}

// Registry exposes the provider table.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Closed reports whether Close has been called.
func (o *Orchestrator) Closed() bool {
	return o.baseCtx.Err() != nil
}

// Close abandons every poll loop and waits for them to exit. Persisted rows
// stay in the polling state for the worker to resume.
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) await(ctx context.Context, r *run, done <-chan outcome) (string, error) {
	select {
	case out := <-done:
		return out.url, out.err
	case <-ctx.Done():
		o.runLogger(r).Info().Msg("enhance: caller left, polling continues in background")
		return "", fmt.Errorf("enhance: %w", ctx.Err())
	}
}

func (o *Orchestrator) startPolling(r *run) <-chan outcome {
	done := make(chan outcome, 1)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// Every tick rewrites the task row so its updated_at stays fresh and
		// the worker never claims a task that is still being polled here.
		res := poll(o.baseCtx, o.poll, r.transport, r.m, func(task domain.EnhancementTask) {
			o.inflight.update(r.gen, task)
			o.save(r)
		})
		switch {
		case res.abandoned:
			o.inflight.release(r.req.ItemID, r.gen)
			o.runLogger(r).Warn().Msg("enhance: poll loop abandoned")
			done <- outcome{err: ErrClosed}
		case res.err != nil:
			done <- outcome{err: o.fail(r, res.err)}
		default:
			url, err := o.complete(r, res.resultURL)
			done <- outcome{url: url, err: err}
		}
	}()
	return done
}

func (o *Orchestrator) complete(r *run, resultURL string) (string, error) {
	ctx := context.WithoutCancel(o.baseCtx)
	_, err := o.reconciler.Complete(ctx, Completion{
		ItemID:      r.req.ItemID,
		MoodboardID: r.req.MoodboardID,
		TaskID:      r.m.Snapshot().TaskID,
		ResultURL:   resultURL,
		Type:        r.req.Type,
		Provider:    r.provider,
	})
	if err != nil {
		return "", o.fail(r, newError(domain.KindUnknown, err.Error(), err))
	}
	_ = r.m.Complete(resultURL)
	o.finish(r)
	return resultURL, nil
}

func (o *Orchestrator) fail(r *run, e *EnhancementError) error {
	if err := r.m.Fail(e); err != nil {
		o.runLogger(r).Error().Err(err).Msg("enhance: cannot record failure")
	}
	ctx := context.WithoutCancel(o.baseCtx)
	if err := o.reconciler.Fail(ctx, r.req.ItemID); err != nil {
		o.runLogger(r).Warn().Err(err).Msg("enhance: mark item failed")
	}
	o.finish(r)
	return e
}

// finish publishes the terminal state, refreshes credits and schedules the
// in-flight entry for removal after the grace period.
func (o *Orchestrator) finish(r *run) {
	task := r.m.Snapshot()
	o.publish(r)
	o.save(r)

	ctx := context.WithoutCancel(o.baseCtx)
	if _, err := o.gate.Refresh(ctx, r.req.UserID); err != nil {
		o.runLogger(r).Warn().Err(err).Msg("enhance: refresh credits after terminal state")
	}

	grace := o.completedGrace
	ev := o.runLogger(r).Info()
	if task.Status == domain.TaskFailed {
		grace = o.failedGrace
		ev = o.runLogger(r).Warn().Str("error_kind", string(task.ErrorKind)).Str("detail", task.ErrorDetail)
	}
	ev.Str("status", string(task.Status)).Int("progress", task.Progress).Msg("enhance: task finished")

	itemID, gen := r.req.ItemID, r.gen
	time.AfterFunc(grace, func() {
		o.inflight.release(itemID, gen)
	})
}

func (o *Orchestrator) publish(r *run) {
	o.inflight.update(r.gen, r.m.Snapshot())
}

func (o *Orchestrator) save(r *run) {
	if o.tasks == nil {
		return
	}
	task := r.m.Snapshot()
	rec := domain.TaskRecord{
		ID:          r.id,
		TaskID:      task.TaskID,
		UserID:      r.req.UserID,
		MoodboardID: r.req.MoodboardID,
		ItemID:      r.req.ItemID,
		Provider:    r.provider.ID,
		Type:        r.req.Type,
		Prompt:      r.req.Prompt,
		Strength:    r.req.StrengthValue(),
		InputURL:    r.inputURL,
		Status:      task.Status,
		ResultURL:   task.ResultURL,
		ErrorKind:   task.ErrorKind,
		ErrorDetail: task.ErrorDetail,
		Cost:        r.provider.Cost,
		CreatedAt:   r.createdAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if err := o.tasks.SaveTask(context.WithoutCancel(o.baseCtx), rec); err != nil {
		o.runLogger(r).Warn().Err(err).Msg("enhance: persist task")
	}
}

func (o *Orchestrator) runLogger(r *run) *zerolog.Logger {
	l := o.logger.With().
		Str("item_id", r.req.ItemID).
		Str("provider", string(r.provider.ID)).
		Str("run_id", r.id).
		Logger()
	return &l
}

// checkSource rejects image references a provider cannot fetch.
func (o *Orchestrator) checkSource(raw string) *EnhancementError {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClassifyValidation(fmt.Errorf("%w: item has no image url", domain.ErrInvalidRequest))
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:") {
		return newError(domain.KindUnsupportedInputFormat, "embedded image reference", nil)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return ClassifyValidation(fmt.Errorf("%w: invalid image url %q", domain.ErrInvalidRequest, raw))
	}
	if o.allowPrivate {
		return nil
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return newError(domain.KindSourceUnreachable, "local url "+raw, nil)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
			return newError(domain.KindSourceUnreachable, "non-public address "+host, nil)
		}
	}
	return nil
}
