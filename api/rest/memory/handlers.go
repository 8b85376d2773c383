package memory

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/api/rest/pagination"
	"github.com/k3ss/backend/internal/errors"
	"github.com/k3ss/backend/internal/memory"
)

// WriteHandler appends an entry to a project's memory stream
func WriteHandler(store *memory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := errors.ValidatePathProject(c)
		if !ok {
			return
		}

		var req WriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		entry, err := store.Write(c.Request.Context(), project, req.Data, req.Metadata)
		if err != nil {
			errors.InternalError(c, "memory storage error", err)
			return
		}

		c.JSON(http.StatusCreated, WriteResponse{
			Status:    "success",
			ID:        entry.ID,
			Project:   project,
			Timestamp: entry.Timestamp,
		})
	}
}

// ReadHandler returns a page of entries with optional time bounds
func ReadHandler(store *memory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := errors.ValidatePathProject(c)
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(c.Query("limit"))   //nolint:errcheck // defaults applied below
		offset, _ := strconv.Atoi(c.Query("offset")) //nolint:errcheck // defaults applied below
		params := pagination.DefaultParams(limit, offset, defaultPageLimit, maxPageLimit)

		startTime := c.Query("start_time")
		endTime := c.Query("end_time")

		if err := validateTimeBound(startTime); err != nil {
			errors.BadRequest(c, "invalid start_time", err)
			return
		}

		if err := validateTimeBound(endTime); err != nil {
			errors.BadRequest(c, "invalid end_time", err)
			return
		}

		result, err := store.Read(c.Request.Context(), project, memory.ReadOptions{
			Limit:     params.Limit,
			Offset:    params.Offset,
			StartTime: startTime,
			EndTime:   endTime,
		})
		if err != nil {
			errors.InternalError(c, "memory retrieval error", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{
			Items:  result.Items,
			Total:  result.Total,
			Limit:  params.Limit,
			Offset: params.Offset,
		})
	}
}

// QueryHandler searches entries by substring plus equality filters
func QueryHandler(store *memory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := errors.ValidatePathProject(c)
		if !ok {
			return
		}

		var req QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		params := pagination.DefaultParams(req.Limit, req.Offset, defaultPageLimit, maxPageLimit)

		result, err := store.Query(c.Request.Context(), project, memory.QueryOptions{
			Query:   req.Query,
			Limit:   params.Limit,
			Offset:  params.Offset,
			Filters: req.Filters,
		})
		if err != nil {
			errors.InternalError(c, "memory query error", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{
			Items:  result.Items,
			Total:  result.Total,
			Limit:  params.Limit,
			Offset: params.Offset,
			Query:  req.Query,
		})
	}
}

// PurgeHandler deletes all memory for a project; requires confirm=true
func PurgeHandler(store *memory.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := errors.ValidatePathProject(c)
		if !ok {
			return
		}

		if c.Query("confirm") != "true" {
			errors.ConfirmationRequired(c, "set confirm=true to purge all memory data")
			return
		}

		result, err := store.Purge(c.Request.Context(), project)
		if err != nil {
			errors.InternalError(c, "memory purge error", err)
			return
		}

		c.JSON(http.StatusOK, PurgeResponse{
			Status:        "success",
			Project:       project,
			StreamDeleted: result.StreamDeleted,
			RowsDeleted:   result.RowsDeleted,
			Timestamp:     time.Now().UTC().Format(memory.TimestampLayout),
		})
	}
}

func validateTimeBound(bound string) error {
	if bound == "" {
		return nil
	}

	_, err := time.Parse(time.RFC3339, bound)

	return err
}
