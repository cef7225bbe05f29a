package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const streamBuffer = 4

// streamBoard pushes the board as Server-Sent Events: the current snapshot
// first, then one frame per store update.
func streamBoard(store BoardStore, logger *log.Logger, heartbeat time.Duration) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, routeStream, streamEventName)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			metrics.SetErrorStage("flusher")
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		// Subscribe before reading the initial snapshot so no update falls
		// in between; frames at or below the last sent version are skipped.
		updates, unsubscribe := store.Subscribe(streamBuffer)
		defer unsubscribe()

		h := c.Response().Header()
		h.Set(echo.HeaderContentType, "text/event-stream")
		h.Set(echo.HeaderCacheControl, "no-cache")
		h.Set(echo.HeaderConnection, "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		c.Response().WriteHeader(http.StatusOK)

		snap := store.Snapshot()
		if werr := writeSnapshotEvent(c.Response(), snap); werr != nil {
			return nil
		}
		flusher.Flush()
		last := snap.Version
		metrics.SetVersion(last)

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-updates:
				if !ok {
					return nil
				}
				if snap.Version <= last {
					continue
				}
				if werr := writeSnapshotEvent(c.Response(), snap); werr != nil {
					return nil
				}
				flusher.Flush()
				last = snap.Version
				metrics.SetVersion(last)
			case <-ticker.C:
				if _, werr := c.Response().Write([]byte(": ping\n\n")); werr != nil {
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snap domain.Snapshot) error {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(data)+32)
	frame = append(frame, "id: "...)
	frame = strconv.AppendUint(frame, snap.Version, 10)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	_, err = w.Write(frame)
	return err
}
