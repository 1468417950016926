package tracer

import (
	"fmt"
	"sync"
)

// The trace buffer is shared by every renderer in the process, so it
// is guarded: error paths log from whatever goroutine hit them.
var (
	mu       sync.Mutex
	messages []string
)

// Log records msg in the trace buffer.
func Log(msg string) {
	mu.Lock()
	messages = append(messages, msg)
	mu.Unlock()
}

// Messages returns a snapshot of the accumulated trace without
// clearing it.
func Messages() []string {
	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), messages...)
}

// Flush prints the accumulated trace and resets the buffer. Printing
// happens outside the lock so a slow writer does not block loggers.
func Flush() {
	mu.Lock()
	msgs := messages
	messages = nil
	mu.Unlock()
	for _, msg := range msgs {
		fmt.Println(msg)
	}
}
