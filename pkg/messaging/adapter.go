package messaging

import (
	"context"
)

// HandlerFunc processes one message. Returned errors are reported to onError
// and do not stop the dispatch loop.
type HandlerFunc func(ctx context.Context, msg Message) error

// Dispatch routes messages from a subscription to handlers keyed by channel
// until ctx is done or the subscription closes.
func Dispatch(ctx context.Context, msgs <-chan Message, handlers map[string]HandlerFunc, onError func(Message, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			h, found := handlers[msg.Channel]
			if !found {
				continue
			}
			if err := h(ctx, msg); err != nil && onError != nil {
				onError(msg, err)
			}
		}
	}
}
