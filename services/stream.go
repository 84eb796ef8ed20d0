package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const balancePollInterval = 2 * time.Second

// StreamBalance pushes the caller's balance over server-sent events. The
// current balance is sent at once, then again whenever it changes.
func (s *LedgerService) StreamBalance(c *fiber.Ctx, who Identity) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(balancePollInterval)
		defer ticker.Stop()
		s.pumpBalance(w, who, ticker.C, done)
	})
	return nil
}

// pumpBalance writes balance events until the client goes away or done
// closes. Every tick writes at least a keepalive comment, so a closed
// connection surfaces as a flush error even while the balance is idle.
func (s *LedgerService) pumpBalance(w *bufio.Writer, who Identity, ticks <-chan time.Time, done <-chan struct{}) {
	last := int64(-1)
	send := func() bool {
		balance, err := s.GetBalance(context.Background(), who)
		switch {
		case errors.Is(err, ErrUserNotFound):
			return false
		case err != nil:
			log.Printf("[SSE] balance query for user %d: %v", who.UserID, err)
			w.WriteString(":\n\n")
		case balance == last:
			w.WriteString(":\n\n")
		default:
			last = balance
			fmt.Fprintf(w, "event: balance\ndata: {\"coins\":%d}\n\n", balance)
		}
		return w.Flush() == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ticks:
			if !send() {
				log.Printf("[SSE] stream for user %d closed", who.UserID)
				return
			}
		case <-done:
			return
		}
	}
}
