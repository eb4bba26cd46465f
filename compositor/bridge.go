// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/crtfx/internal/logging"
)

// ErrBridgeClosed is returned by Post and Sync after Close.
var ErrBridgeClosed = errors.New("compositor: bridge closed")

// DefaultQueueSize is the command queue capacity used when none is given.
const DefaultQueueSize = 64

// CommandHandler consumes commands on the render side.
type CommandHandler interface {
	HandleCommand(cmd Command)
}

type message struct {
	cmd     Command
	barrier chan struct{}
}

// Bridge delivers commands to a CommandHandler on a single consumer
// goroutine, in the order they were posted.
type Bridge struct {
	h  CommandHandler
	ch chan message

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewBridge starts a bridge feeding h. A non-positive queueSize selects
// DefaultQueueSize.
func NewBridge(h CommandHandler, queueSize int) *Bridge {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	b := &Bridge{
		h:    h,
		ch:   make(chan message, queueSize),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bridge) run() {
	defer close(b.done)
	for m := range b.ch {
		if m.barrier != nil {
			close(m.barrier)
			continue
		}
		b.handle(m.cmd)
	}
}

func (b *Bridge) handle(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("compositor: command handler panicked",
				slog.String("command", cmd.Kind.String()), slog.Any("panic", r))
		}
	}()
	b.h.HandleCommand(cmd)
}

// Post enqueues cmd. It blocks only while the queue is full.
func (b *Bridge) Post(cmd Command) error {
	return b.send(message{cmd: cmd})
}

func (b *Bridge) send(m message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBridgeClosed
	}
	b.ch <- m
	return nil
}

// Sync waits until every command posted before the call has been handled.
func (b *Bridge) Sync(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := b.send(message{barrier: barrier}); err != nil {
		return err
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting commands, waits for queued ones to be handled and
// stops the consumer. It is safe to call more than once.
func (b *Bridge) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
	b.mu.Unlock()
	<-b.done
}

// Done is closed once the consumer has exited.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(cmd Command)

// HandleCommand calls f(cmd).
func (f CommandHandlerFunc) HandleCommand(cmd Command) { f(cmd) }
