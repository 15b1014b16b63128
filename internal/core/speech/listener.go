package speech

import "sync"

// Listener tracks whether the recognizer should be capturing audio. It does
// not drive audio itself; observers forward state changes to whatever does.
type Listener struct {
	mu        sync.Mutex
	listening bool
	observers []func(listening bool)
}

// NewListener returns a stopped listener.
func NewListener() *Listener {
	return &Listener{}
}

// OnChange registers fn to be called after every state change.
func (l *Listener) OnChange(fn func(listening bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Listening reports the current state.
func (l *Listener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// Start begins listening. It reports false if already listening.
func (l *Listener) Start() bool {
	return l.set(true)
}

// Stop stops listening. It reports false if already stopped.
func (l *Listener) Stop() bool {
	return l.set(false)
}

// Restart stops then starts the recognizer so it begins a fresh session.
func (l *Listener) Restart() {
	l.set(false)
	l.set(true)
}

func (l *Listener) set(listening bool) bool {
	l.mu.Lock()
	if l.listening == listening {
		l.mu.Unlock()
		return false
	}
	l.listening = listening
	observers := make([]func(bool), len(l.observers))
	copy(observers, l.observers)
	l.mu.Unlock()

	for _, fn := range observers {
		fn(listening)
	}
	return true
}
