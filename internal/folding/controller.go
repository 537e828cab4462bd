package folding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/event"
)

// ErrRangeProvider wraps failures returned by a RangeProvider.
var ErrRangeProvider = errors.New("range provider failed")

// RegionInfo is a read-only view of one region.
type RegionInfo struct {
	Range     Range
	Collapsed bool
	// LastKnown is the range the region was last anchored on.
	LastKnown Range
}

// Controller is the folding feature instance for one editor.
type Controller struct {
	editor   Editor
	provider RangeProvider
	logger   *zap.Logger
	metrics  *Metrics
	onError  func(error)
	sched    *Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	// model is the buffer the current regions are anchored in.
	model   Model
	regions []*Region

	editorSubs []*event.Subscription
	modelSubs  []*event.Subscription

	disposed bool
}

// New attaches a folding controller to editor and schedules the first
// computation. It must be called on the editor loop.
func New(editor Editor, provider RangeProvider, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.debouncer == nil {
		o.debouncer = NewDebouncer(o.delay)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		editor:   editor,
		provider: provider,
		logger:   o.logger.Named("folding"),
		metrics:  o.metrics,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.onError = o.onError
	if c.onError == nil {
		c.onError = func(err error) {
			c.logger.Error("folding range computation failed", zap.Error(err))
		}
	}
	c.sched = NewScheduler(o.debouncer, editor.Post, c.compute)

	c.editorSubs = append(c.editorSubs,
		c.subscribe(event.TopicModelChanged, func(context.Context, event.Event) { c.onModelChanged() }),
		c.subscribe(event.TopicModeChanged, func(context.Context, event.Event) { c.onModelChanged() }),
		c.subscribe(event.TopicMouseDown, c.onMouseDown),
	)

	c.onModelChanged()
	return c
}

func (c *Controller) subscribe(t event.Topic, h event.Handler) *event.Subscription {
	sub, err := c.editor.Bus().Subscribe(t, h)
	if err != nil {
		c.logger.Error("subscribe failed", zap.String("topic", t.String()), zap.Error(err))
		return nil
	}
	return sub
}

func cancelAll(subs []*event.Subscription) {
	for _, s := range subs {
		s.Cancel()
	}
}

// onModelChanged tears down the region set and restarts against whatever
// buffer the editor now shows.
func (c *Controller) onModelChanged() {
	if c.disposed {
		return
	}
	if c.model != nil {
		c.teardown()
	}

	c.model = c.editor.Model()
	c.editor.SetHiddenAreas(nil)
	if c.model == nil {
		c.logger.Debug("no model attached")
		return
	}

	c.modelSubs = append(c.modelSubs,
		c.subscribe(event.TopicContentChanged, func(context.Context, event.Event) { c.sched.Trigger() }),
	)
	c.sched.Trigger()
}

// teardown drops listeners on the current model, invalidates in-flight work
// and disposes every region in one transaction.
func (c *Controller) teardown() {
	cancelAll(c.modelSubs)
	c.modelSubs = nil
	c.sched.Cancel()
	c.disposeRegions()
}

func (c *Controller) disposeRegions() {
	if len(c.regions) == 0 {
		c.regions = nil
		return
	}
	n := len(c.regions)
	if c.model != nil {
		c.model.ChangeDecorations(func(ed DecorationEditor) {
			for _, r := range c.regions {
				r.dispose(ed)
			}
		})
	}
	c.regions = nil
	c.metrics.recordRegions(c.ctx, 0, n)
	c.logger.Debug("regions disposed", zap.Int("count", n))
}

// compute starts the provider for token. It runs on the editor loop; the
// provider itself runs on its own goroutine.
func (c *Controller) compute(token uint64) {
	m := c.model
	if m == nil {
		c.sched.Complete(token)
		return
	}
	snap := m.Snapshot()
	tabSize := m.TabSize()
	ctx := c.ctx
	started := time.Now()

	c.logger.Debug("computing folding ranges", zap.Uint64("token", token), zap.Int("lines", snap.LineCount()))

	go func() {
		ranges, err := c.provider.ComputeRanges(ctx, snap, tabSize)
		c.editor.Post(func() {
			c.apply(token, ranges, err, time.Since(started))
		})
	}()
}

// apply merges a finished computation if its token is still current.
func (c *Controller) apply(token uint64, ranges []Range, err error, took time.Duration) {
	if !c.sched.Complete(token) {
		c.metrics.recordRecompute(c.ctx, OutcomeStale, took)
		c.logger.Debug("discarding stale folding ranges",
			zap.Uint64("token", token),
			zap.Uint64("current", c.sched.Token()),
		)
		return
	}
	if err != nil {
		c.metrics.recordRecompute(c.ctx, OutcomeFailed, took)
		c.onError(fmt.Errorf("%w: token %d: %w", ErrRangeProvider, token, err))
		return
	}

	m := c.model
	if m == nil {
		return
	}
	ranges = normalizeRanges(ranges, m.LineCount())

	var res reconcileResult
	m.ChangeDecorations(func(ed DecorationEditor) {
		c.regions, res = reconcile(ed, c.regions, ranges)
	})

	c.metrics.recordRecompute(c.ctx, OutcomeApplied, took)
	c.metrics.recordRegions(c.ctx, res.created, res.disposed)
	c.logger.Debug("folding regions reconciled",
		zap.Uint64("token", token),
		zap.Int("regions", len(c.regions)),
		zap.Int("kept", res.kept),
		zap.Int("created", res.created),
		zap.Int("disposed", res.disposed),
		zap.Duration("took", took),
	)

	c.publishHidden()
}

func (c *Controller) publishHidden() {
	c.editor.SetHiddenAreas(c.HiddenAreas())
}

func (c *Controller) onMouseDown(_ context.Context, ev event.Event) {
	md, ok := ev.Payload.(event.MouseDown)
	if !ok || md.Target != event.TargetGutterFoldMarkers {
		return
	}
	c.Toggle(md.Line)
}

// regionAt returns the first region whose anchor starts on line.
func (c *Controller) regionAt(line int) *Region {
	for _, r := range c.regions {
		rng, ok := r.ResolvedRange(c.model)
		if ok && rng.StartLine == line {
			return r
		}
	}
	return nil
}

// setCollapsed applies next to the region starting on line and republishes
// the hidden areas. It reports whether a region matched.
func (c *Controller) setCollapsed(line int, next func(collapsed bool) bool) bool {
	if c.disposed || c.model == nil {
		return false
	}
	region := c.regionAt(line)
	if region == nil {
		return false
	}

	collapsed := next(region.Collapsed())
	if collapsed != region.Collapsed() {
		c.model.ChangeDecorations(func(ed DecorationEditor) {
			region.SetCollapsed(ed, collapsed)
		})
		c.metrics.recordToggle(c.ctx, collapsed)
		c.logger.Debug("region toggled", zap.Int("line", line), zap.Bool("collapsed", collapsed))
	}
	c.publishHidden()
	return true
}

// Toggle flips the region starting on line.
func (c *Controller) Toggle(line int) bool {
	return c.setCollapsed(line, func(collapsed bool) bool { return !collapsed })
}

// Fold collapses the region starting on line.
func (c *Controller) Fold(line int) bool {
	return c.setCollapsed(line, func(bool) bool { return true })
}

// Unfold expands the region starting on line.
func (c *Controller) Unfold(line int) bool {
	return c.setCollapsed(line, func(bool) bool { return false })
}

// Regions returns the current regions ordered by start line. Regions whose
// anchor no longer resolves are omitted.
func (c *Controller) Regions() []RegionInfo {
	if c.model == nil {
		return nil
	}
	out := make([]RegionInfo, 0, len(c.regions))
	for _, r := range c.regions {
		rng, ok := r.ResolvedRange(c.model)
		if !ok {
			continue
		}
		out = append(out, RegionInfo{Range: rng, Collapsed: r.Collapsed(), LastKnown: r.LastKnownRange()})
	}
	return out
}

// HiddenAreas returns the hidden spans derived from the current regions.
func (c *Controller) HiddenAreas() []Range {
	if c.model == nil {
		return nil
	}
	return Project(c.model, c.regions)
}

// State returns the recompute scheduler state.
func (c *Controller) State() State {
	return c.sched.State()
}

// Token returns the current generation token.
func (c *Controller) Token() uint64 {
	return c.sched.Token()
}

// Dispose detaches the controller. It is safe to call more than once.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.sched.Dispose()
	c.cancel()
	cancelAll(c.editorSubs)
	c.editorSubs = nil
	cancelAll(c.modelSubs)
	c.modelSubs = nil
	c.disposeRegions()
	c.model = nil
	c.disposed = true
	c.editor.SetHiddenAreas(nil)
	c.logger.Debug("folding controller disposed")
}
