package adaptor

import (
	"encoding/json"
	"net/http"

	"ev-service-center/internal/dto/request"
	"ev-service-center/internal/usecase"
	"ev-service-center/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MaintenanceHandler struct {
	service usecase.MaintenanceService
	log     *zap.Logger
}

func NewMaintenanceHandler(service usecase.MaintenanceService, log *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		service: service,
		log:     log.With(zap.String("handler", "maintenance")),
	}
}

func actorFromContext(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{UserID: userID, Role: role}, true
}

// CreateTask handles POST /api/maintenance/tasks (admin only).
func (h *MaintenanceHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	task, err := h.service.CreateTaskFromBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create task")
		return
	}

	utils.ResponseCreated(w, task)
}

// GetTask handles GET /api/maintenance/tasks/{id}.
func (h *MaintenanceHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get task")
		return
	}

	utils.ResponseSuccess(w, task)
}

// ListMyTasks handles GET /api/maintenance/tasks/my.
func (h *MaintenanceHandler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	tasks, err := h.service.ListTasksByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list my tasks")
		return
	}

	utils.ResponseSuccess(w, tasks)
}

// ListTasks handles GET /api/maintenance/tasks (admin only).
func (h *MaintenanceHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListTasks(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list tasks")
		return
	}

	utils.ResponseSuccess(w, tasks)
}

// SetStatus handles PUT /api/maintenance/tasks/{id}/status.
func (h *MaintenanceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	var req request.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	task, err := h.service.UpdateTaskStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, h.log, err, "update task status")
		return
	}

	utils.ResponseSuccess(w, task)
}

// ListDueSoon handles GET /api/maintenance/tasks/due-soon (admin only).
func (h *MaintenanceHandler) ListDueSoon(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListTasksDueSoon(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list due-soon tasks")
		return
	}

	utils.ResponseSuccess(w, result)
}

// AddPart handles POST /api/maintenance/tasks/{id}/parts.
func (h *MaintenanceHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	var req request.AddTaskPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	part, err := h.service.AddPartToTask(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add part to task")
		return
	}

	utils.ResponseCreated(w, part)
}

// ListParts handles GET /api/maintenance/tasks/{id}/parts.
func (h *MaintenanceHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListTaskParts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list task parts")
		return
	}

	utils.ResponseSuccess(w, parts)
}

// RemovePart handles DELETE /api/maintenance/tasks/{id}/parts/{partID}.
func (h *MaintenanceHandler) RemovePart(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	err := h.service.RemovePartFromTask(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "partID"))
	if err != nil {
		handleServiceError(w, h.log, err, "remove part from task")
		return
	}

	utils.ResponseSuccess(w, map[string]string{"message": "Part removed and stock credited"})
}

// GetChecklist handles GET /api/maintenance/tasks/{id}/checklist.
func (h *MaintenanceHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetChecklist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get checklist")
		return
	}

	utils.ResponseSuccess(w, items)
}

// UpdateChecklistItem handles PUT /api/maintenance/tasks/{id}/checklist/{itemID}.
func (h *MaintenanceHandler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	var req request.UpdateChecklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	item, err := h.service.UpdateChecklistItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update checklist item")
		return
	}

	utils.ResponseSuccess(w, item)
}

// RemoveChecklistItem handles DELETE /api/maintenance/tasks/{id}/checklist/{itemID}.
func (h *MaintenanceHandler) RemoveChecklistItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	err := h.service.RemoveChecklistItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		handleServiceError(w, h.log, err, "remove checklist item")
		return
	}

	utils.ResponseSuccess(w, map[string]string{"message": "Checklist item removed"})
}
