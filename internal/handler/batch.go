package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/worker"
)

// BatchRequest resolves several items in one call and merges the totals
type BatchRequest struct {
	Requests []bom.Request `json:"requests" validate:"required,min=1,dive"`
}

// TaskResponse returns the handle for a background resolution
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

const (
	taskStatusPending = "pending"
	taskStatusDone    = "done"
)

// HandleResolveBatch handles synchronous batch resolution
// @Summary Resolve a batch of items
// @Description Resolves every request and merges base-material totals. All-or-nothing: any failing entry aborts the whole batch
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Batch of resolution requests"
// @Success 200 {object} bom.Report
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 422 {object} ErrorResponse "Recipe cycle detected"
// @Failure 500 {object} ErrorResponse
// @Router /resolve/batch [post]
func HandleResolveBatch(svc bom.Service, reporter *bom.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		req, ok := decodeBatch(w, r)
		if !ok {
			return
		}

		totals, err := svc.ResolveBatch(r.Context(), req.Requests)
		if err != nil {
			log.Error("Failed to resolve batch", "error", err, "requests", len(req.Requests))
			respondDomainError(w, err)
			return
		}

		report, err := reporter.Build(r.Context(), totals)
		if err != nil {
			log.Error("Failed to build report", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to build report")
			return
		}

		log.Info("Batch resolution completed", "requests", len(req.Requests),
			"base_materials", len(report.Lines))
		respondJSON(w, http.StatusOK, report)
	}
}

// HandleSubmitBatch handles asynchronous batch resolution
// @Summary Submit a batch resolution as a background task
// @Description Enqueues the batch on the worker pool and returns a task ID to poll
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Batch of resolution requests"
// @Success 202 {object} TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /resolve/batch/async [post]
func HandleSubmitBatch(pool *worker.Pool, svc bom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		req, ok := decodeBatch(w, r)
		if !ok {
			return
		}

		// The task outlives the request, so it must not inherit the request
		// context
		task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
			return svc.ResolveBatch(ctx, req.Requests)
		})

		log.Info("Batch resolution submitted", "task_id", task.ID, "requests", len(req.Requests))
		respondJSON(w, http.StatusAccepted, TaskResponse{
			TaskID: task.ID.String(),
			Status: taskStatusPending,
		})
	}
}

// HandleGetTask handles background task polling
// @Summary Poll a background resolution task
// @Description Returns 202 with pending status while the task runs, the finished report on success, or the task's error
// @Tags resolve
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} bom.Report
// @Success 202 {object} TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 422 {object} ErrorResponse "Recipe cycle detected"
// @Failure 500 {object} ErrorResponse
// @Router /tasks/{id} [get]
func HandleGetTask(pool *worker.Pool, reporter *bom.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid task ID")
			return
		}

		task, ok := pool.Get(id)
		if !ok {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}

		if !task.Finished() {
			respondJSON(w, http.StatusAccepted, TaskResponse{
				TaskID: id.String(),
				Status: taskStatusPending,
			})
			return
		}

		totals, err := task.Wait(r.Context())
		if err != nil {
			log.Warn("Background resolution failed", "task_id", id, "error", err)
			respondDomainError(w, err)
			return
		}

		report, err := reporter.Build(r.Context(), totals)
		if err != nil {
			log.Error("Failed to build report", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to build report")
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

func decodeBatch(w http.ResponseWriter, r *http.Request) (BatchRequest, bool) {
	log := logger.FromContext(r.Context())

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode batch request", "error", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondValidationError(w, r, err)
		return req, false
	}
	return req, true
}
