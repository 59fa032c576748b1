package toast

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/internal/clock"
	"github.com/vango-dev/domkit/pkg/dom"
)

// EventName is the event name used for toast events sent to an Emitter.
const EventName = "domkit:toast"

// Type represents the toast notification type.
type Type string

const (
	TypeDefault Type = ""
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Default timings.
const (
	DefaultShort   = 3 * time.Second
	DefaultLong    = 6 * time.Second
	DefaultFadeIn  = 10 * time.Millisecond
	DefaultFadeOut = 300 * time.Millisecond
)

// DefaultContainerID is the id of the toast container element.
const DefaultContainerID = "toast-container"

// ID identifies a displayed toast. It is the identifier of the toast's
// auto-dismiss timer. The zero ID is never issued.
type ID uint64

// Action describes what happened to a toast in an Event.
type Action string

const (
	ActionShow   Action = "show"
	ActionRemove Action = "remove"
)

// Event is the payload emitted for every show and remove.
type Event struct {
	ID      ID     `json:"id"`
	Level   Type   `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	Action  Action `json:"action"`
}

// Emitter receives toast events. Hub implements it.
type Emitter interface {
	Emit(name string, data any)
}

// Notifier displays toasts in one document.
type Notifier struct {
	doc         *dom.Document
	builder     *el.Builder
	clock       clock.Clock
	logger      *slog.Logger
	emitter     Emitter
	short       time.Duration
	long        time.Duration
	fadeIn      time.Duration
	fadeOut     time.Duration
	containerID string

	mu        sync.Mutex
	container *dom.Element
	active    map[ID]*entry
}

type entry struct {
	node    *dom.Element
	timer   clock.Timer
	level   Type
	message string
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock sets the clock used for dismissal and fade timers.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithEmitter forwards toast events to e.
func WithEmitter(e Emitter) Option {
	return func(n *Notifier) {
		n.emitter = e
	}
}

// WithDurations sets the short and long display durations.
func WithDurations(short, long time.Duration) Option {
	return func(n *Notifier) {
		if short > 0 {
			n.short = short
		}
		if long > 0 {
			n.long = long
		}
	}
}

// WithFadeDelays sets the fade-in tick and the fade-out transition time.
func WithFadeDelays(in, out time.Duration) Option {
	return func(n *Notifier) {
		if in >= 0 {
			n.fadeIn = in
		}
		if out >= 0 {
			n.fadeOut = out
		}
	}
}

// WithContainerID sets the id of the container element.
func WithContainerID(id string) Option {
	return func(n *Notifier) {
		if id != "" {
			n.containerID = id
		}
	}
}

// New creates a Notifier for doc.
func New(doc *dom.Document, opts ...Option) *Notifier {
	n := &Notifier{
		doc:         doc,
		clock:       clock.NewReal(),
		logger:      slog.Default(),
		short:       DefaultShort,
		long:        DefaultLong,
		fadeIn:      DefaultFadeIn,
		fadeOut:     DefaultFadeOut,
		containerID: DefaultContainerID,
		active:      make(map[ID]*entry),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.builder = el.New(doc, el.WithLogger(n.logger))
	return n
}

// Show displays message and returns its ID. When long is true the toast
// stays for the long duration. A zero ID means the toast could not be
// built; the failure is logged.
func (n *Notifier) Show(message string, long bool) ID {
	return n.ShowLevel(TypeDefault, message, long)
}

// Success shows a success toast.
func (n *Notifier) Success(message string) ID { return n.ShowLevel(TypeSuccess, message, false) }

// Error shows an error toast for the long duration.
func (n *Notifier) Error(message string) ID { return n.ShowLevel(TypeError, message, true) }

// Warning shows a warning toast.
func (n *Notifier) Warning(message string) ID { return n.ShowLevel(TypeWarning, message, false) }

// Info shows an info toast.
func (n *Notifier) Info(message string) ID { return n.ShowLevel(TypeInfo, message, false) }

// Notify shows message with the default level and duration.
func (n *Notifier) Notify(message string) {
	n.Show(message, false)
}

// ShowLevel displays message with the given level.
func (n *Notifier) ShowLevel(level Type, message string, long bool) ID {
	n.mu.Lock()

	container, err := n.containerLocked()
	if err != nil {
		n.mu.Unlock()
		n.logger.Error("toast container unavailable", "error", err)
		return 0
	}

	class := "toast"
	if level != TypeDefault {
		class += " toast-" + string(level)
	}
	node, err := n.builder.Build(&el.Spec{
		Tag:   "div",
		Class: class,
		Text:  message,
		Attrs: map[string]any{
			"role":  "status",
			"style": "opacity: 0; transition: opacity " + cssTime(n.fadeOut) + ";",
		},
	}, container)
	if err != nil {
		n.mu.Unlock()
		return 0
	}
	if err := container.AppendChild(node); err != nil {
		n.mu.Unlock()
		n.logger.Error("toast append failed", "error", err)
		return 0
	}

	delay := n.short
	if long {
		delay = n.long
	}

	// The dismiss callback reads id under n.mu, which is held until id is set.
	var id ID
	timer := n.clock.AfterFunc(delay, func() {
		n.mu.Lock()
		tid := id
		n.mu.Unlock()
		n.Remove(tid)
	})
	id = ID(timer.ID())
	n.active[id] = &entry{node: node, timer: timer, level: level, message: message}

	n.clock.AfterFunc(n.fadeIn, func() {
		n.mu.Lock()
		e, ok := n.active[id]
		n.mu.Unlock()
		if ok && e.node == node {
			node.Style().Set("opacity", "1")
		}
	})
	n.mu.Unlock()

	n.logger.Debug("toast shown", "id", id, "level", level, "long", long)
	n.emit(Event{ID: id, Level: level, Message: message, Action: ActionShow})
	return id
}

// Remove dismisses the toast early. Unknown or already removed IDs are
// ignored and false is returned. The registry entry is deleted at once; the
// node is detached after the fade-out delay.
func (n *Notifier) Remove(id ID) bool {
	n.mu.Lock()
	e, ok := n.active[id]
	if !ok {
		n.mu.Unlock()
		return false
	}
	delete(n.active, id)
	e.timer.Stop()
	n.mu.Unlock()

	e.node.Style().Set("opacity", "0")
	n.clock.AfterFunc(n.fadeOut, e.node.Remove)

	n.logger.Debug("toast removed", "id", id)
	n.emit(Event{ID: id, Level: e.level, Action: ActionRemove})
	return true
}

// Active returns the IDs of toasts that have not been removed, in
// ascending order.
func (n *Notifier) Active() []ID {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]ID, 0, len(n.active))
	for id := range n.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of active toasts.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.active)
}

// Node returns the element of an active toast.
func (n *Notifier) Node(id ID) (*dom.Element, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.active[id]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Container returns the container element, or nil before the first Show.
func (n *Notifier) Container() *dom.Element {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.container
}

// ContainerID returns the id of the container element. Pages pass it to
// ClientScript so browsers use the same container.
func (n *Notifier) ContainerID() string { return n.containerID }

// containerLocked returns the container, creating it and appending it to
// the document element if it is missing. A container with the same id
// that is already in the document is reused. Pages render only the body,
// so browsers create their own container from ClientScript.
func (n *Notifier) containerLocked() (*dom.Element, error) {
	if n.container != nil && n.container.IsConnected() {
		return n.container, nil
	}
	if existing := n.doc.GetElementByID(n.containerID); existing != nil {
		n.container = existing
		return existing, nil
	}

	c, err := n.builder.Build(&el.Spec{
		Tag:   "div",
		ID:    n.containerID,
		Class: "toast-container",
		Attrs: map[string]any{
			"aria-live": "polite",
			"style":     "position: fixed; bottom: 1rem; right: 1rem; z-index: 1000;",
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := n.doc.DocumentElement().AppendChild(c); err != nil {
		return nil, err
	}
	n.container = c
	return c, nil
}

func (n *Notifier) emit(ev Event) {
	if n.emitter != nil {
		n.emitter.Emit(EventName, ev)
	}
}

// cssTime formats d as a CSS <time> value.
func cssTime(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
