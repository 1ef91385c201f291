package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/coyotlinden/opentsdb/internal/api/v1"
	httperr "github.com/coyotlinden/opentsdb/internal/core/errors"
	"github.com/coyotlinden/opentsdb/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist datapoint"
)

// putError carries the structured HTTP error shape from a helper back to the
// orchestrator. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type putError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *putError) Error() string {
	return e.message
}

// PutHandler handles HTTP POST /api/v1/put. The body is either one
// datapoint object or an array of them.
func (s *Service) PutHandler(c *gin.Context) {
	points, payloadSize, err := s.parseBody(c)
	if err != nil {
		writeError(c, err)
		return
	}

	for i := range points {
		if verr := points[i].Validate(); verr != nil {
			slog.Warn("Datapoint validation failed", "error", verr, "index", i)
			writeError(c, &putError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidDataPointError,
				message:    verr.Error(),
				details:    map[string]interface{}{"index": i},
			})
			return
		}
	}

	slog.Info("Received datapoints", "count", len(points), "payload_size", payloadSize)

	stored, duplicates, err := s.persist(c.Request.Context(), points)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": stored, "duplicates": duplicates})
}

// parseBody reads the size-limited request body and binds it into a batch
// of datapoints. A single JSON object is accepted as a batch of one.
func (s *Service) parseBody(c *gin.Context) ([]v1.DataPoint, int, *putError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &putError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &putError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	var points []v1.DataPoint
	trimmed := bytes.TrimLeft(bodyBytes, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var dp v1.DataPoint
		if err := json.Unmarshal(bodyBytes, &dp); err != nil {
			slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
			return nil, len(bodyBytes), invalidJSON()
		}
		points = []v1.DataPoint{dp}
	} else {
		if err := json.Unmarshal(bodyBytes, &points); err != nil {
			slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
			return nil, len(bodyBytes), invalidJSON()
		}
	}

	if len(points) == 0 {
		return nil, len(bodyBytes), &putError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidDataPointError,
			message:    "at least one datapoint is required",
		}
	}

	return points, len(bodyBytes), nil
}

// persist classifies each value into its numeric domain and saves it.
// Duplicates are counted rather than failing the batch.
func (s *Service) persist(ctx context.Context, points []v1.DataPoint) (stored, duplicates int, _ *putError) {
	for i := range points {
		value, err := points[i].ParseValue()
		if err != nil {
			return stored, duplicates, &putError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidDataPointError,
				message:    err.Error(),
				details:    map[string]interface{}{"index": i},
			}
		}

		if err := s.store.SaveDataPoint(ctx, &points[i], value); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				slog.Info("Duplicate datapoint skipped",
					"metric", points[i].Metric, "ts", points[i].Timestamp)
				duplicates++
				continue
			}

			slog.Error("Failed to persist datapoint", "error", err, "metric", points[i].Metric)
			return stored, duplicates, &putError{
				statusCode: http.StatusInternalServerError,
				errorType:  httperr.HttpInternalError,
				message:    msgPersistFailed,
			}
		}
		stored++
	}
	return stored, duplicates, nil
}

func invalidJSON() *putError {
	return &putError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpInvalidJsonError,
		message:    msgInvalidJSON,
	}
}

// writeError serializes a putError as the JSON HTTP response.
func writeError(c *gin.Context, err *putError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
