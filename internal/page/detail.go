package page

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"charity-events/internal/apiclient"
	"charity-events/internal/model"
	"charity-events/internal/timer"
)

// Detail shows one event. Events with a fundraising goal get their progress
// refreshed on an interval while the page is open.
type Detail struct {
	source  EventLoader
	surface DetailSurface
	opts    options
	log     *zap.Logger
	poller  *timer.Poller

	mu     sync.Mutex
	state  State
	err    error
	event  *model.Event
	modal  *FocusTrap
	closed bool
}

func NewDetail(source EventLoader, surface DetailSurface, opts ...Option) *Detail {
	o := newOptions(opts)
	d := &Detail{
		source:  source,
		surface: surface,
		opts:    o,
		log:     o.log.With(zap.String("page", "detail")),
		state:   StateLoading,
		modal:   NewFocusTrap(RegistrationFocusables),
	}
	d.poller = timer.NewPoller(o.pollInterval, d.refreshProgress)
	return d
}

// Start reads the id from query and loads the event. A missing or malformed
// id goes straight to the error state without a request.
func (d *Detail) Start(ctx context.Context, query url.Values) error {
	if err := waitReady(ctx, d.surface, d.opts.readyTimeout); err != nil {
		d.fail(err)
		return err
	}

	rawID := query.Get("id")
	if _, err := apiclient.ParseID(rawID); err != nil {
		d.log.Warn("invalid event id", zap.String("id", rawID))
		d.fail(err)
		return err
	}

	d.mu.Lock()
	d.state, d.err = StateLoading, nil
	d.renderLocked()
	d.mu.Unlock()

	event, err := d.source.FetchEventByID(ctx, rawID)
	if err != nil {
		d.log.Error("failed to load event", zap.String("id", rawID), zap.Error(err))
		d.fail(err)
		return err
	}

	d.mu.Lock()
	d.event, d.state = event, StateReady
	d.renderLocked()
	closed := d.closed
	d.mu.Unlock()

	if event.HasGoal() && !closed {
		// the poller outlives Start's ctx and is stopped by Close
		d.poller.Start(context.WithoutCancel(ctx))
	}
	return nil
}

func (d *Detail) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state, d.err = StateError, err
	d.renderLocked()
}

// refreshProgress re-fetches the event and redraws only its progress. A
// failed fetch keeps the last value.
func (d *Detail) refreshProgress(ctx context.Context) {
	d.mu.Lock()
	if d.event == nil {
		d.mu.Unlock()
		return
	}
	id := d.event.ID
	d.mu.Unlock()

	fresh, err := d.source.FetchEventByID(ctx, strconv.Itoa(id))
	if err != nil {
		d.log.Debug("progress refresh failed", zap.Int("event_id", id), zap.Error(err))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.event == nil {
		return
	}
	d.event.CurrentAmount = fresh.CurrentAmount
	d.event.GoalAmount = fresh.GoalAmount
	d.surface.RenderProgress(NewProgressView(*d.event))
}

// OpenModal shows the registration dialog and traps focus in it.
func (d *Detail) OpenModal(trigger string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReady {
		return
	}
	d.modal.Open(trigger)
	d.renderModalLocked()
}

// HandleKey routes a key press to the open dialog.
func (d *Detail) HandleKey(k Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.modal.HandleKey(k) {
		return false
	}
	d.renderModalLocked()
	return true
}

// CloseModal closes the dialog and returns the control to refocus.
func (d *Detail) CloseModal() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.modal.IsOpen() {
		return ""
	}
	trigger := d.modal.Close()
	d.renderModalLocked()
	return trigger
}

func (d *Detail) Modal() ModalView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modalViewLocked()
}

func (d *Detail) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detail) View() DetailView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

// Polling reports whether the progress refresh is running.
func (d *Detail) Polling() bool {
	return d.poller.Running()
}

// Close stops the progress refresh and drops later renders.
func (d *Detail) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.poller.Stop()
}

func (d *Detail) viewLocked() DetailView {
	view := DetailView{State: d.state}
	switch d.state {
	case StateError:
		view.Message = ErrorMessage(d.err)
	case StateReady:
		card := NewEventCard(*d.event, "", d.opts.now())
		view.Event = &card
		view.Details = newEventDetails(*d.event)
		if d.event.HasGoal() {
			progress := NewProgressView(*d.event)
			view.Progress = &progress
		}
	}
	return view
}

func (d *Detail) modalViewLocked() ModalView {
	title := "Register"
	if d.event != nil {
		title = "Register for " + d.event.Name
	}
	return d.modal.view(title)
}

func (d *Detail) renderLocked() {
	if d.closed {
		return
	}
	d.surface.RenderDetail(d.viewLocked())
}

func (d *Detail) renderModalLocked() {
	if d.closed {
		return
	}
	d.surface.RenderModal(d.modalViewLocked())
}
