// Package handler maps HTTP requests onto the ingest pipeline and query
// engine. It depends on small interfaces so tests can run it against fakes.
package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slogger-dev/slogger/internal/ingest"
	"github.com/slogger-dev/slogger/internal/model"
	"github.com/slogger-dev/slogger/internal/query"
	"github.com/slogger-dev/slogger/internal/response"
)

// Ingester accepts a raw JSON batch for a source.
type Ingester interface {
	Ingest(ctx context.Context, source string, body []byte) (int, error)
}

// LogQuerier serves filtered pages and the distinct-sources listing.
type LogQuerier interface {
	Logs(ctx context.Context, f query.Filter) ([]model.LogEntry, int, error)
	Sources(ctx context.Context) ([]string, error)
}

// PartitionLister reports existing day partitions.
type PartitionLister interface {
	List(ctx context.Context) ([]string, error)
}

// LogsHandler serves the /api routes.
type LogsHandler struct {
	Pipeline   Ingester
	Engine     LogQuerier
	Partitions PartitionLister
}

type queryResponse struct {
	Logs  []model.LogEntry `json:"logs"`
	Total int              `json:"total"`
}

// Ingest handles POST /api/logs/:source.
func (h *LogsHandler) Ingest(c echo.Context) error {
	source := c.Param("source")
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, "read body failed")
	}

	inserted, err := h.Pipeline.Ingest(c.Request().Context(), source, body)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidPayload) {
			return response.BadRequest(c, "body must be a json array")
		}
		return response.InternalError(c, "ingest failed")
	}
	return response.OK(c, map[string]int{"inserted": inserted})
}

// Query handles GET /api/logs.
func (h *LogsHandler) Query(c echo.Context) error {
	f := query.Filter{
		Sources:  splitSources(c.QueryParam("sources")),
		Search:   c.QueryParam("search"),
		JSONPath: c.QueryParam("json_path"),
		From:     query.ParseTime(c.QueryParam("from")),
		To:       query.ParseTime(c.QueryParam("to")),
		Limit:    query.ParseLimit(c.QueryParam("limit"), query.DefaultLimit, query.MaxLimit),
		Offset:   query.ParseOffset(c.QueryParam("offset")),
	}

	logs, total, err := h.Engine.Logs(c.Request().Context(), f)
	if err != nil {
		return response.InternalError(c, "query failed")
	}
	return response.OK(c, queryResponse{Logs: logs, Total: total})
}

// Sources handles GET /api/sources.
func (h *LogsHandler) Sources(c echo.Context) error {
	sources, err := h.Engine.Sources(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "query failed")
	}
	return response.OK(c, map[string][]string{"sources": sources})
}

// ListPartitions handles GET /api/partitions.
func (h *LogsHandler) ListPartitions(c echo.Context) error {
	names, err := h.Partitions.List(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "list partitions failed")
	}
	if names == nil {
		names = []string{}
	}
	return response.OK(c, map[string][]string{"partitions": names})
}

func splitSources(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
