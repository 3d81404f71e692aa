package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/aatumaykin/hive/internal/logger"
)

var (
	ErrQueueFull      = errors.New("queue is full")
	ErrAlreadyStarted = errors.New("message bus is already started")
	ErrNotStarted     = errors.New("message bus is not started")
)

// subscriberCapacity bounds each subscriber channel; a slow subscriber
// drops events rather than stalling the distribution loop.
const subscriberCapacity = 10

// topic is one direction of the bus: a bounded main queue fanned out to
// any number of subscriber channels. Locking is owned by the MessageBus.
type topic[T any] struct {
	queue       chan T
	subscribers map[int64]chan T
	nextID      int64
}

func newTopic[T any](capacity int) *topic[T] {
	return &topic[T]{
		queue:       make(chan T, capacity),
		subscribers: make(map[int64]chan T),
	}
}

// publish enqueues without blocking.
func (t *topic[T]) publish(item T) error {
	select {
	case t.queue <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// subscribe registers a new subscriber channel.
func (t *topic[T]) subscribe() (int64, <-chan T) {
	ch := make(chan T, subscriberCapacity)
	t.nextID++
	t.subscribers[t.nextID] = ch
	return t.nextID, ch
}

// closeAll closes the subscriber channels and the main queue.
func (t *topic[T]) closeAll() {
	for id, ch := range t.subscribers {
		close(ch)
		delete(t.subscribers, id)
	}
	close(t.queue)
}

// MessageBus is an asynchronous queue decoupling channel gateways from the
// agent router: inbound events flow one way, outbound actions the other.
type MessageBus struct {
	mu      sync.RWMutex
	logger  *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	inbound  *topic[InboundMessage]
	outbound *topic[OutboundAction]
}

// New creates a new MessageBus with the specified capacity for both queues.
func New(capacity int, logger *logger.Logger) *MessageBus {
	return &MessageBus{
		logger:   logger,
		inbound:  newTopic[InboundMessage](capacity),
		outbound: newTopic[OutboundAction](capacity),
	}
}

// Start starts the distribution goroutines.
func (mb *MessageBus) Start(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.started {
		return ErrAlreadyStarted
	}

	mb.ctx, mb.cancel = context.WithCancel(ctx)
	mb.started = true

	go distribute(mb, mb.inbound, "inbound")
	go distribute(mb, mb.outbound, "outbound")

	mb.logger.Info("message bus started", logger.Field{Key: "capacity", Value: cap(mb.inbound.queue)})
	return nil
}

// Stop gracefully stops the message bus and closes all channels.
func (mb *MessageBus) Stop() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if !mb.started {
		return ErrNotStarted
	}

	mb.logger.Info("stopping message bus")

	if mb.cancel != nil {
		mb.cancel()
	}

	mb.inbound.closeAll()
	mb.outbound.closeAll()
	mb.started = false

	mb.logger.Info("message bus stopped")
	return nil
}

// PublishInbound publishes an inbound event to the queue.
func (mb *MessageBus) PublishInbound(msg InboundMessage) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if !mb.started {
		return ErrNotStarted
	}

	if err := mb.inbound.publish(msg); err != nil {
		mb.logger.WarnCtx(mb.ctx, "inbound queue full",
			logger.Field{Key: "capacity", Value: cap(mb.inbound.queue)})
		return err
	}

	mb.logger.DebugCtx(mb.ctx, "inbound event published",
		logger.Field{Key: "kind", Value: string(msg.Kind)},
		logger.Field{Key: "channel_id", Value: msg.ChannelID},
		logger.Field{Key: "message_id", Value: msg.MessageID})
	return nil
}

// PublishOutbound publishes an outbound action to the queue.
func (mb *MessageBus) PublishOutbound(action OutboundAction) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	if !mb.started {
		return ErrNotStarted
	}

	if err := mb.outbound.publish(action); err != nil {
		mb.logger.WarnCtx(mb.ctx, "outbound queue full",
			logger.Field{Key: "capacity", Value: cap(mb.outbound.queue)})
		return err
	}

	mb.logger.DebugCtx(mb.ctx, "outbound action published",
		logger.Field{Key: "kind", Value: string(action.Kind)},
		logger.Field{Key: "agent", Value: action.AgentName},
		logger.Field{Key: "channel_id", Value: action.ChannelID})
	return nil
}

// SubscribeInbound subscribes to inbound events. Returns nil before Start.
func (mb *MessageBus) SubscribeInbound(ctx context.Context) <-chan InboundMessage {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if !mb.started {
		return nil
	}

	id, ch := mb.inbound.subscribe()
	mb.logger.DebugCtx(ctx, "inbound subscriber added",
		logger.Field{Key: "subscriber_id", Value: id})
	return ch
}

// SubscribeOutbound subscribes to outbound actions. Returns nil before Start.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) <-chan OutboundAction {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if !mb.started {
		return nil
	}

	id, ch := mb.outbound.subscribe()
	mb.logger.DebugCtx(ctx, "outbound subscriber added",
		logger.Field{Key: "subscriber_id", Value: id})
	return ch
}

// distribute forwards items from a topic's main queue to every subscriber
// until the bus context is cancelled or the queue is closed.
func distribute[T any](mb *MessageBus, t *topic[T], name string) {
	for {
		select {
		case <-mb.ctx.Done():
			return
		case item, ok := <-t.queue:
			if !ok {
				return
			}
			mb.mu.RLock()
			for _, ch := range t.subscribers {
				select {
				case ch <- item:
				default:
					mb.logger.WarnCtx(mb.ctx, "subscriber channel full, dropping item",
						logger.Field{Key: "topic", Value: name})
				}
			}
			mb.mu.RUnlock()
		}
	}
}

// IsStarted returns true if the message bus is started.
func (mb *MessageBus) IsStarted() bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.started
}
