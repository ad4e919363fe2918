package execution

import "sync"

// Listener receives process lifecycle notifications for every launch
type Listener interface {
	ProcessStarting(env *Environment)
	ProcessStarted(env *Environment, pid int)
	ProcessNotStarted(env *Environment, err error)
	ProcessTerminated(env *Environment, exitCode int)
}

// Bus fans lifecycle notifications out to subscribed listeners. Listeners
// are called synchronously, in subscription order, on the publishing
// goroutine.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewBus creates an empty Bus
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Connection is one subscription to a Bus
type Connection struct {
	bus  *Bus
	id   int
	once sync.Once
}

// Subscribe registers l until the returned connection is disconnected
func (b *Bus) Subscribe(l Listener) *Connection {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.listeners[b.nextID] = l
	b.order = append(b.order, b.nextID)
	return &Connection{bus: b, id: b.nextID}
}

// Disconnect removes the subscription. Calling it more than once is a no-op.
func (c *Connection) Disconnect() {
	c.once.Do(func() {
		c.bus.mu.Lock()
		defer c.bus.mu.Unlock()

		delete(c.bus.listeners, c.id)
		for i, id := range c.bus.order {
			if id == c.id {
				c.bus.order = append(c.bus.order[:i], c.bus.order[i+1:]...)
				break
			}
		}
	})
}

// Len returns the number of active subscriptions
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Bus) snapshot() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ls := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		ls = append(ls, b.listeners[id])
	}
	return ls
}

// ProcessStarting publishes a starting notification
func (b *Bus) ProcessStarting(env *Environment) {
	for _, l := range b.snapshot() {
		l.ProcessStarting(env)
	}
}

// ProcessStarted publishes a started notification
func (b *Bus) ProcessStarted(env *Environment, pid int) {
	for _, l := range b.snapshot() {
		l.ProcessStarted(env, pid)
	}
}

// ProcessNotStarted publishes a launch failure
func (b *Bus) ProcessNotStarted(env *Environment, err error) {
	for _, l := range b.snapshot() {
		l.ProcessNotStarted(env, err)
	}
}

// ProcessTerminated publishes a termination notification
func (b *Bus) ProcessTerminated(env *Environment, exitCode int) {
	for _, l := range b.snapshot() {
		l.ProcessTerminated(env, exitCode)
	}
}
