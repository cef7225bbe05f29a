package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const defaultHeartbeat = 15 * time.Second

// Options configures the routes registered by Register.
type Options struct {
	// Deduper is optional; without it idempotency keys are not enforced.
	Deduper   Deduper
	Logger    *log.Logger
	Heartbeat time.Duration
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store BoardStore, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	boardID := store.Snapshot().Board.ID

	e.GET(routeBoard, getBoard(store, logger))
	e.GET(routeStream, streamBoard(store, logger, heartbeat))
	e.POST(routeCommands, postCommands(store, opts.Deduper, boardID, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func versionETag(v uint64) string {
	return `"` + strconv.FormatUint(v, 10) + `"`
}

// etagMatches applies the weak comparison of If-None-Match: "*" or any
// listed tag equal to etag.
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}
	return false
}

func getBoard(store BoardStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, routeBoard, boardEventName)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		snap := store.Snapshot()
		metrics.SetVersion(snap.Version)
		etag := versionETag(snap.Version)
		c.Response().Header().Set("ETag", etag)
		if etagMatches(c.Request().Header.Get("If-None-Match"), etag) {
			metrics.SetNotModified(true)
			return c.NoContent(http.StatusNotModified)
		}

		err = c.JSON(http.StatusOK, snap)
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postCommands(store BoardStore, deduper Deduper, boardID string, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, routeCommands, commandsEventName)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		decodeStart := time.Now()
		lr := io.LimitReader(c.Request().Body, postCommandMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		cmds := make([]domain.Command, 0, 4)
		if derr := dec.Decode(&cmds); derr != nil {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, postCommandResponse{Error: "invalid body"})
		}
		if len(cmds) == 0 {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, postCommandResponse{Error: "no commands"})
		}

		// Validate the whole batch before anything reaches the store.
		ops := make([]operation, len(cmds))
		for i := range cmds {
			op, perr := parseCommand(cmds[i])
			if perr != nil {
				metrics.SetErrorStage("validate")
				return c.JSON(http.StatusBadRequest, postCommandResponse{
					Error: "command " + strconv.Itoa(i) + " (" + cmds[i].Type + "): " + perr.Error(),
				})
			}
			ops[i] = op
		}
		metrics.ObserveDecode(time.Since(decodeStart))

		results := make([]commandResult, len(cmds))
		for i := range cmds {
			key := cmds[i].IdempotencyKey
			if key == "" {
				key = uuid.NewString()
			}
			results[i] = commandResult{IdempotencyKey: key, Type: cmds[i].Type}
		}
		fresh := dedupe(ctx, deduper, boardID, cmds, logger)

		applyStart := time.Now()
		applied, duplicates := 0, 0
		for i, op := range ops {
			if !fresh[i] {
				results[i].Duplicate = true
				duplicates++
				continue
			}
			results[i].ID, results[i].Applied = op(store)
			if results[i].Applied {
				applied++
			}
		}
		metrics.ObserveApply(time.Since(applyStart))
		metrics.SetCommands(len(cmds), applied, duplicates)

		version := store.Version()
		metrics.SetVersion(version)
		err = c.JSON(http.StatusOK, postCommandResponse{Results: results, Version: version})
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}
