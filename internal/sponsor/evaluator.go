package sponsor

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"axees/internal/model"
)

// Display durations per priority.
var dismissAfter = map[model.Priority]time.Duration{
	model.PriorityHigh:   8 * time.Second,
	model.PriorityMedium: 6 * time.Second,
	model.PriorityLow:    4 * time.Second,
}

// DismissAfter returns how long a product triggered with priority p stays on screen.
func DismissAfter(p model.Priority) time.Duration {
	if d, ok := dismissAfter[p]; ok {
		return d
	}
	return dismissAfter[model.PriorityLow]
}

// Timer is the subset of *time.Timer the evaluator needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EventKind tells listeners what happened to the overlay.
type EventKind string

// Event kinds.
const (
	EventActivated EventKind = "activated"
	EventDismissed EventKind = "dismissed"
)

// Event is emitted whenever the active product changes.
type Event struct {
	Kind    EventKind
	Rule    model.SponsorshipRule
	Product model.Product
}

// Display is the product currently shown and the rule that surfaced it.
type Display struct {
	Rule     model.SponsorshipRule
	Product  model.Product
	ShownFor time.Duration
}

// Options tunes an Evaluator.
type Options struct {
	AfterFunc AfterFunc
	Listener  func(Event)
}

// Evaluator watches signals and fires each rule at most once per session.
// Timers fire on their own goroutine, so every method takes the lock.
type Evaluator struct {
	mu        sync.Mutex
	rules     []model.SponsorshipRule
	catalog   Catalog
	log       *slog.Logger
	afterFunc AfterFunc
	listener  func(Event)

	sig       Signals
	mentions  int
	triggered map[string]bool
	active    *Display
	timer     Timer
	// gen identifies the current activation so stale timers are ignored.
	gen uint64
}

// NewEvaluator creates an Evaluator over rules, which must already be validated.
func NewEvaluator(rules []model.SponsorshipRule, catalog Catalog, opts Options, log *slog.Logger) *Evaluator {
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	return &Evaluator{
		rules:     append([]model.SponsorshipRule(nil), rules...),
		catalog:   catalog,
		log:       log,
		afterFunc: opts.AfterFunc,
		listener:  opts.Listener,
		triggered: make(map[string]bool),
	}
}

// SetContent updates the visible text and re-evaluates pending rules.
func (e *Evaluator) SetContent(text string) {
	e.update(func(s *Signals) { s.Content = text })
}

// SetElapsed updates the view duration and re-evaluates pending rules.
func (e *Evaluator) SetElapsed(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.update(func(s *Signals) { s.Elapsed = d })
}

// SetScroll updates the scroll position, clamped to [0, 100], and
// re-evaluates pending rules.
func (e *Evaluator) SetScroll(pct float64) {
	pct = clampPercent(pct)
	e.update(func(s *Signals) { s.Scroll = pct })
}

// RecordMention counts one more brand mention in the current session.
func (e *Evaluator) RecordMention() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mentions++
	return e.mentions
}

// MentionBadge returns the mention count to show next to the active
// product once a mention rule for that product has reached its threshold.
func (e *Evaluator) MentionBadge() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.decorationsLocked(model.TriggerMention) {
		if e.mentions >= r.MentionCount {
			return e.mentions, true
		}
	}
	return 0, false
}

// EngagementPrompt returns the first engagement rule whose products
// include the active product. It only exists while something is shown.
func (e *Evaluator) EngagementPrompt() (model.SponsorshipRule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rules := e.decorationsLocked(model.TriggerEngagement); len(rules) > 0 {
		return rules[0], true
	}
	return model.SponsorshipRule{}, false
}

// decorationsLocked returns the rules of type tt that list the active product.
func (e *Evaluator) decorationsLocked(tt model.TriggerType) []model.SponsorshipRule {
	if e.active == nil {
		return nil
	}
	var out []model.SponsorshipRule
	for _, r := range e.rules {
		if r.TriggerType == tt && slices.Contains(r.ProductIDs, e.active.Product.ID) {
			out = append(out, r)
		}
	}
	return out
}

// Active returns the product currently displayed.
func (e *Evaluator) Active() (Display, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return Display{}, false
	}
	return *e.active, true
}

// Triggered reports whether the rule with the given id already fired.
func (e *Evaluator) Triggered(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.triggered[id]
}

// Signals returns the last observed signals.
func (e *Evaluator) Signals() Signals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sig
}

// Dismiss hides the active product and cancels its timer.
func (e *Evaluator) Dismiss() {
	e.mu.Lock()
	ev, ok := e.dismissLocked()
	e.mu.Unlock()
	if ok {
		e.emit(ev)
	}
}

// Reset starts a new content session: every rule becomes pending again.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.active = nil
	e.gen++
	e.sig = Signals{}
	e.mentions = 0
	e.triggered = make(map[string]bool)
}

func (e *Evaluator) update(apply func(*Signals)) {
	e.mu.Lock()
	apply(&e.sig)
	events := e.evaluateLocked()
	e.mu.Unlock()

	for _, ev := range events {
		e.emit(ev)
	}
}

func (e *Evaluator) evaluateLocked() []Event {
	var events []Event
	for _, rule := range e.rules {
		if e.triggered[rule.ID] || !Match(rule, e.sig) {
			continue
		}
		e.triggered[rule.ID] = true

		if len(rule.ProductIDs) == 0 {
			e.log.Warn("sponsorship rule without products", "rule_id", rule.ID)
			continue
		}
		product, ok := e.catalog.Product(rule.ProductIDs[0])
		if !ok {
			e.log.Warn("sponsored product not in catalog", "rule_id", rule.ID, "product_id", rule.ProductIDs[0])
			continue
		}

		e.log.Debug("sponsorship rule triggered", "rule_id", rule.ID, "trigger", rule.TriggerType, "product_id", product.ID)

		if e.active != nil && rule.Priority != model.PriorityHigh {
			continue
		}
		events = append(events, e.activateLocked(rule, product))
	}
	return events
}

func (e *Evaluator) activateLocked(rule model.SponsorshipRule, product model.Product) Event {
	e.stopTimerLocked()
	e.gen++
	gen := e.gen
	d := DismissAfter(rule.Priority)
	e.active = &Display{Rule: rule, Product: product, ShownFor: d}
	e.timer = e.afterFunc(d, func() { e.expire(gen) })
	return Event{Kind: EventActivated, Rule: rule, Product: product}
}

func (e *Evaluator) expire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.active == nil {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	ev := Event{Kind: EventDismissed, Rule: e.active.Rule, Product: e.active.Product}
	e.active = nil
	e.mu.Unlock()

	e.emit(ev)
}

func (e *Evaluator) dismissLocked() (Event, bool) {
	if e.active == nil {
		return Event{}, false
	}
	e.stopTimerLocked()
	e.gen++
	ev := Event{Kind: EventDismissed, Rule: e.active.Rule, Product: e.active.Product}
	e.active = nil
	return ev, true
}

func (e *Evaluator) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Evaluator) emit(ev Event) {
	if e.listener != nil {
		e.listener(ev)
	}
}
