package core

import "sync"

// EventCode identifies a kind of event. Application codes start at
// EVENT_CODE_USER.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Resized/resolution changed from the OS. Data: *ResizeEvent.
	EVENT_CODE_RESIZED EventCode = 0x08
	// An asset finished decoding. Data: the asset path as a string.
	EVENT_CODE_ASSET_RESOLVED EventCode = 0x10
	// A camera benchmark run finished. Data: the result value.
	EVENT_CODE_BENCHMARK_COMPLETED EventCode = 0x11

	EVENT_CODE_USER EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// Events dispatches fired events synchronously to registered listeners.
type Events struct {
	mu         sync.RWMutex
	registered map[EventCode][]registeredEvent
}

func NewEvents() *Events {
	return &Events{
		registered: make(map[EventCode][]registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A pointer to a listener instance. Can be nil.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (e *Events) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.registered[code] {
		if r.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	e.registered[code] = append(e.registered[code], registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (e *Events) Unregister(code EventCode, listener interface{}) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.registered[code]
	for i, r := range events {
		if r.listener == listener {
			e.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (e *Events) Fire(context EventContext) bool {
	e.mu.RLock()
	events := append([]registeredEvent(nil), e.registered[context.Type]...)
	e.mu.RUnlock()

	for _, r := range events {
		if r.callback(context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (e *Events) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registered = make(map[EventCode][]registeredEvent)
}
