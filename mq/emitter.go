package mq

import (
	"context"
	"encoding/json"
	"log"

	"krishimitra/rdx"
)

const orderEventsChannel = "order-events"

// OrderEvent notifies dashboards that an order changed state.
type OrderEvent struct {
	OrderID  string `json:"order_id"`
	VendorID string `json:"vendor_id"`
	UserID   string `json:"user_id"`
	Status   string `json:"status"`
}

// EmitOrderEvent publishes to Redis; fire-and-forget, failures are logged
// and never block the caller.
func EmitOrderEvent(ctx context.Context, event OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal order event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, orderEventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish order event: %v", err)
	}
}

// StartOrderEventWorker keeps per-vendor pending-order counters fresh for
// the vendor dashboard.
func StartOrderEventWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, orderEventsChannel)
	ch := sub.Channel()

	log.Println("[OrderEventWorker] Listening for order events...")

	for msg := range ch {
		var event OrderEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[OrderEventWorker] Failed to parse event: %v", err)
			continue
		}

		// open-order count per vendor: opened on pending, closed on
		// delivery or cancellation
		key := "orders:open:" + event.VendorID
		var err error
		switch event.Status {
		case "pending":
			err = rdx.Conn.Incr(ctx, key).Err()
		case "delivered", "cancelled":
			err = rdx.Conn.Decr(ctx, key).Err()
		}
		if err != nil {
			log.Printf("[OrderEventWorker] Counter update error: %v", err)
		}
	}
}
