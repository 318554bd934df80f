// pkg/status/reporter.go - status reporting to an external status window over a local socket

package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/retry"
)

// DefaultAddress is the loopback port the status window listens on.
const DefaultAddress = "127.0.0.1:19847"

// Message types understood by the status window.
const (
	TypeStatus  = "statusMessage"
	TypeDetail  = "detailMessage"
	TypePercent = "percentProgress"
	TypeLog     = "displayLog"
	TypeQuit    = "quit"
)

// StatusMessage is one newline-delimited JSON record on the wire.
type StatusMessage struct {
	Type    string `json:"type"`
	Data    string `json:"data,omitempty"`
	Percent int    `json:"percent,omitempty"`
	Error   bool   `json:"error,omitempty"`
}

// Reporter abstracts the status surface.
type Reporter interface {
	Start(ctx context.Context) error
	Message(txt string)
	Detail(txt string)
	Percent(pct int) // -1 = indeterminate
	ShowLog(path string)
	Error(err error)
	Stop()
}

// SocketReporter sends status messages to a listener on Address.
type SocketReporter struct {
	Address     string
	Retry       retry.RetryConfig
	DialTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewSocketReporter creates a reporter for addr. An empty addr uses DefaultAddress.
func NewSocketReporter(addr string) *SocketReporter {
	if addr == "" {
		addr = DefaultAddress
	}
	return &SocketReporter{Address: addr, Retry: retry.DefaultConfig, DialTimeout: 2 * time.Second}
}

// Start connects to the status window. A window that cannot be reached is
// logged and the install continues without one.
func (r *SocketReporter) Start(ctx context.Context) error {
	var conn net.Conn
	dialer := net.Dialer{Timeout: r.DialTimeout}
	err := retry.Retry(r.Retry, func() error {
		if err := ctx.Err(); err != nil {
			return retry.Permanent(err)
		}
		c, err := dialer.DialContext(ctx, "tcp", r.Address)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		logging.Warn("Failed to connect to status window, continuing without UI", "address", r.Address, "error", err)
		return nil
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	logging.Info("Status reporter connected", "address", r.Address)
	return nil
}

// Connected reports whether a status window is attached.
func (r *SocketReporter) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

func (r *SocketReporter) send(msg StatusMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logging.Debug("Failed to marshal status message", "error", err)
		return
	}
	data = append(data, '\n')

	if _, err := r.conn.Write(data); err != nil {
		logging.Debug("Failed to write to status window", "error", err)
		r.conn.Close()
		r.conn = nil
	}
}

// Message sends the headline text.
func (r *SocketReporter) Message(txt string) {
	r.send(StatusMessage{Type: TypeStatus, Data: txt})
}

// Detail sends the frequently changing detail text.
func (r *SocketReporter) Detail(txt string) {
	r.send(StatusMessage{Type: TypeDetail, Data: txt})
}

// Percent sends the progress percentage.
func (r *SocketReporter) Percent(pct int) {
	r.send(StatusMessage{Type: TypePercent, Percent: pct})
}

// ShowLog asks the window to display the log at path.
func (r *SocketReporter) ShowLog(path string) {
	r.send(StatusMessage{Type: TypeLog, Data: path})
}

// Error sends err as a headline flagged as an error.
func (r *SocketReporter) Error(err error) {
	r.send(StatusMessage{Type: TypeStatus, Data: fmt.Sprintf("Error: %v", err), Error: true})
}

// Stop tells the window to quit and closes the connection.
func (r *SocketReporter) Stop() {
	r.send(StatusMessage{Type: TypeQuit})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
	logging.Debug("Status reporter stopped")
}

// NoOpReporter implements Reporter but does nothing (for headless operation)
type NoOpReporter struct{}

func NewNoOpReporter() *NoOpReporter {
	return &NoOpReporter{}
}

func (r *NoOpReporter) Start(ctx context.Context) error { return nil }
func (r *NoOpReporter) Message(txt string)              {}
func (r *NoOpReporter) Detail(txt string)               {}
func (r *NoOpReporter) Percent(pct int)                 {}
func (r *NoOpReporter) ShowLog(path string)             {}
func (r *NoOpReporter) Error(err error)                 {}
func (r *NoOpReporter) Stop()                           {}
