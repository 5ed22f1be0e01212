// Package demo is the "learn state and effects" page built on snapfx: a
// counter whose event handler reads a stale snapshot, a message, and a
// toggled child that ticks on an interval while it is mounted.
//
// All Page methods must be called on the runtime's execution stream, for
// example inside host.Loop.Do.
package demo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/snapfx/pkg/snapfx"
)

const (
	// InitialMessage is the first studyMessage.
	InitialMessage = "Let's learn about state and effects"

	// ChangedMessage is set by ChangeMessage.
	ChangedMessage = "You've got this! 😄"

	// IncrementStep is added by Increment.
	IncrementStep = 10

	// TickStep is added to the CountButton timer on every tick.
	TickStep = 10

	// ChildName is the instance name of the CountButton child.
	ChildName = "count-button"
)

// View is what the page would display after its last commit.
type View struct {
	Heading     string `json:"heading"`
	Message     string `json:"message"`
	ToggleLabel string `json:"toggleLabel"`
	ShowButton  bool   `json:"showButton"`
	ButtonLabel string `json:"buttonLabel,omitempty"`
	Count       int    `json:"count"`
	Timer       int    `json:"timer"`
}

// Option configures a Page.
type Option func(*Page)

// WithInterval sets the CountButton tick interval. Default: one second.
func WithInterval(d time.Duration) Option {
	return func(p *Page) {
		p.interval = d
	}
}

// WithLogger sets the logger that stands in for the console.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

// Page holds the handlers and view of the last render of
// LearnStateAndEffects.
type Page struct {
	interval time.Duration
	logger   *slog.Logger

	view View
	inst *snapfx.Instance

	increment     func()
	toggle        func()
	changeMessage func()
}

// NewPage creates a Page. Mount its LearnStateAndEffects method.
func NewPage(opts ...Option) *Page {
	p := &Page{
		interval: time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LearnStateAndEffects is the page component.
func (p *Page) LearnStateAndEffects(c *snapfx.Instance) {
	p.inst = c

	count := snapfx.UseState(c, 0)
	countNow := count.Get()

	snapfx.UseEffect(c, func() snapfx.Cleanup {
		p.logger.Info("count in effect", "count", countNow)
		return nil
	}, snapfx.On(countNow))

	isShow := snapfx.UseState(c, false)
	showNow := isShow.Get()

	snapfx.UseEffect(c, func() snapfx.Cleanup {
		p.logger.Info("isShow in effect", "isShow", showNow)
		return nil
	}, snapfx.On(showNow))

	studyMessage := snapfx.UseState(c, InitialMessage)
	messageNow := studyMessage.Get()

	snapfx.UseEffect(c, func() snapfx.Cleanup {
		p.logger.Info("studyMessage in effect", "studyMessage", messageNow)
		return nil
	}, snapfx.On(messageNow))

	// Handlers close over this render's snapshot.
	p.increment = func() {
		count.Set(countNow + IncrementStep)
		p.logger.Info("count in event handler", "count", countNow)
	}
	p.toggle = func() {
		isShow.Set(!showNow)
		p.logger.Info("isShow in event handler", "isShow", showNow)
	}
	p.changeMessage = func() {
		studyMessage.Set(ChangedMessage)
	}

	p.view.Heading = fmt.Sprintf("Learning state and effects (%d)", countNow)
	p.view.Message = messageNow
	p.view.Count = countNow
	p.view.ShowButton = showNow
	if showNow {
		p.view.ToggleLabel = "Hide"
	} else {
		p.view.ToggleLabel = "Show"
		p.view.ButtonLabel = ""
		p.view.Timer = 0
	}

	snapfx.UseChild(c, ChildName, CountButton(CountButtonProps{
		Interval: p.interval,
		Logger:   p.logger,
		OnRender: func(timer int) {
			p.view.Timer = timer
			p.view.ButtonLabel = fmt.Sprintf("+%d (%d)", IncrementStep, timer)
		},
	}), showNow)
}

// Increment presses the +10 button. It writes count+10 computed from the
// last render's snapshot, so two presses in one burst still add 10.
func (p *Page) Increment() {
	if p.increment != nil {
		p.increment()
	}
}

// Toggle shows or hides the CountButton.
func (p *Page) Toggle() {
	if p.toggle != nil {
		p.toggle()
	}
}

// ChangeMessage requests the changed study message.
func (p *Page) ChangeMessage() {
	if p.changeMessage != nil {
		p.changeMessage()
	}
}

// View returns the view of the last commit.
func (p *Page) View() View {
	return p.view
}

// Child returns the mounted CountButton instance, or nil.
func (p *Page) Child() *snapfx.Instance {
	if p.inst == nil {
		return nil
	}
	for _, ch := range p.inst.Children() {
		if ch.Name() == ChildName {
			return ch
		}
	}
	return nil
}

// CountButtonProps configures CountButton.
type CountButtonProps struct {
	Interval time.Duration
	Logger   *slog.Logger

	// OnRender receives the timer snapshot of every render.
	OnRender func(timer int)
}

// CountButton is the timer child. Its Once effect starts an interval that
// adds TickStep to timer through an updater, and returns the interval's
// stop as its cleanup, so ticks end when the button is hidden.
func CountButton(props CountButtonProps) snapfx.Component {
	logger := props.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := props.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return func(c *snapfx.Instance) {
		timer := snapfx.UseState(c, 0)

		snapfx.UseEffect(c, func() snapfx.Cleanup {
			stop := snapfx.Interval(c, interval, func() {
				timer.Update(func(t int) int { return t + TickStep })
				logger.Info("try! interval")
			})
			return func() {
				stop()
				logger.Debug("interval cleared", "instance", c.ID())
			}
		}, snapfx.Once())

		if props.OnRender != nil {
			props.OnRender(timer.Get())
		}
	}
}
