// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/cruxland/crux/internal/fingerprint"
	"github.com/cruxland/crux/internal/registry"
	"github.com/cruxland/crux/internal/version"
)

var (
	// ErrAborted is returned when a gated release was not confirmed.
	ErrAborted = errors.New("release aborted")
	// ErrAliasRequired is returned when a version or bump is requested
	// without an alias name.
	ErrAliasRequired = errors.New("alias name required")
)

type (
	// Request describes one publish.
	Request struct {
		// Name is the display name sent with the upload. Its extension
		// becomes the script's extension.
		Name    string
		Content []byte

		// Alias, Version and Bump select the alias flow. It runs only
		// when Version is set or Bump is not BumpNone.
		Alias   string
		Version string
		Bump    version.Bump

		Identity registry.Identity
	}

	// Result is the outcome of a publish. Fields are filled as the
	// publish progresses.
	Result struct {
		State       State
		Fingerprint string
		ScriptRef   string
		Created     bool
		Alias       string
		Current     *version.Current
		Tag         string
	}

	// Prompt is what a Confirmer is asked to approve.
	Prompt struct {
		Alias     string
		Current   version.Current
		Next      string
		ScriptRef string
	}

	// Confirmer approves releases that the gate stopped.
	Confirmer interface {
		Confirm(ctx context.Context, p Prompt) (bool, error)
	}

	// ConfirmFunc adapts a function to Confirmer.
	ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

	// Event is one state transition.
	Event struct {
		From   State
		To     State
		Result Result
	}

	// Observer receives every transition of a publish in order.
	Observer interface {
		Observe(Event)
	}

	// ObserverFunc adapts a function to Observer.
	ObserverFunc func(Event)

	// Publisher uploads content and releases alias tags against a registry.
	Publisher struct {
		reg       registry.Registry
		confirmer Confirmer
		observer  Observer
		logger    *log.Logger
	}

	// Option configures a Publisher.
	Option func(*Publisher)

	// run carries the state of one Publish call.
	run struct {
		p   *Publisher
		res *Result
	}
)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// WithConfirmer sets the Confirmer consulted by the gate. Without one, gated
// releases are declined.
func WithConfirmer(c Confirmer) Option {
	return func(p *Publisher) {
		p.confirmer = c
	}
}

// WithObserver sets the transition observer.
func WithObserver(o Observer) Option {
	return func(p *Publisher) {
		p.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// NewPublisher returns a Publisher bound to reg.
func NewPublisher(reg registry.Registry, opts ...Option) *Publisher {
	p := &Publisher{reg: reg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

// Publish uploads req.Content and, when a version or bump is requested,
// releases it under the next tag of req.Alias.
//
// The returned Result is never nil and reports the final state. A declined
// confirmation ends in StateAborted with ErrAborted and no release is made.
// Any other failure ends in StateFailed with the originating error.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	r := &run{p: p, res: &Result{State: StateIdle}}

	wantsAlias := req.Version != "" || req.Bump != version.BumpNone
	if wantsAlias && req.Alias == "" {
		return r.fail(ErrAliasRequired)
	}
	if req.Version != "" {
		if _, err := version.ParseTag(req.Version); err != nil {
			return r.fail(err)
		}
	}

	r.res.Fingerprint = fingerprint.Of(req.Content)
	up, err := p.reg.Upload(ctx, req.Name, req.Content)
	if err != nil {
		return r.fail(err)
	}
	if !fingerprint.Matches(r.res.Fingerprint, up.ScriptRef) {
		p.logger.Debug("registry id differs from local fingerprint", "local", r.res.Fingerprint, "ref", up.ScriptRef)
	}
	r.res.ScriptRef = up.ScriptRef
	r.res.Created = up.Created
	r.to(StateUploaded)

	if !wantsAlias {
		r.to(StateDone)
		return r.res, nil
	}

	r.res.Alias = req.Alias
	r.to(StateResolvingVersion)

	entries, err := p.reg.List(ctx, req.Identity.User)
	if err != nil {
		return r.fail(err)
	}
	current, err := version.ResolveCurrent(entries, req.Identity.User, req.Alias)
	if err != nil {
		return r.fail(err)
	}
	r.res.Current = current

	next := req.Version
	if next == "" {
		if next, err = version.ComputeNext(current, req.Bump); err != nil {
			return r.fail(err)
		}
	}
	r.res.Tag = next
	p.logger.Debug("resolved version", "alias", req.Alias, "current", currentTag(current), "next", next)

	if ShouldConfirm(current, up.ScriptRef) {
		r.to(StateGated)
		ok, err := p.confirm(ctx, Prompt{Alias: req.Alias, Current: *current, Next: next, ScriptRef: up.ScriptRef})
		if err != nil {
			return r.fail(err)
		}
		if !ok {
			r.to(StateAborted)
			return r.res, ErrAborted
		}
		r.to(StateProceeding)
	}

	r.to(StateReleasing)
	if err := p.reg.Release(ctx, req.Identity, req.Alias, next, up.ScriptRef); err != nil {
		return r.fail(err)
	}
	r.to(StateReleased)
	return r.res, nil
}

func (p *Publisher) confirm(ctx context.Context, pr Prompt) (bool, error) {
	if p.confirmer == nil {
		p.logger.Debug("no confirmer configured, declining gated release", "alias", pr.Alias)
		return false, nil
	}
	ok, err := p.confirmer.Confirm(ctx, pr)
	if err != nil {
		return false, fmt.Errorf("confirming release: %w", err)
	}
	return ok, nil
}

// to moves the run to next and notifies the observer.
func (r *run) to(next State) {
	from := r.res.State
	if !from.CanTransition(next) {
		panic(fmt.Sprintf("release: invalid transition %s -> %s", from, next))
	}
	r.res.State = next
	if r.p.observer != nil {
		r.p.observer.Observe(Event{From: from, To: next, Result: *r.res})
	}
}

func (r *run) fail(err error) (*Result, error) {
	r.p.logger.Debug("publish failed", "state", r.res.State, "err", err)
	r.to(StateFailed)
	return r.res, err
}

func currentTag(c *version.Current) string {
	if c == nil {
		return ""
	}
	return c.Tag
}
