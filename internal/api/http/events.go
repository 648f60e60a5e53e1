package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/weather-dashboard/internal/events"
)

const (
	feedBuffer        = 32
	heartbeatInterval = 15 * time.Second
)

// streamEvents serves the bus as server-sent events. The subscription lives
// as long as the client connection.
func streamEvents(bus *events.Bus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		feed := events.NewFeed(bus, feedBuffer, events.All...)
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer feed.Close()
			if err := pump(w, feed.C(), heartbeatInterval); err != nil {
				log.Printf("DEBUG: events stream closed: %v", err)
			}
		}))
		return nil
	}
}

// pump writes events from ch until ch is closed or a write fails.
func pump(w *bufio.Writer, ch <-chan events.Event, heartbeat time.Duration) error {
	if _, err := w.WriteString(": connected\n\n"); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeEvent(w, ev); err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
}

func writeEvent(w *bufio.Writer, ev events.Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		log.Printf("ERROR: events: encode %s: %v", ev.Name, err)
		return nil
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
