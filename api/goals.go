package api

import (
	"errors"
	"net/http"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/services"
	"github.com/aliirsyaadn/mindful-death/utils"

	"github.com/gin-gonic/gin"
)

// ListGoalsHandler returns the caller's goals, oldest first.
// GET /api/goals
func (h *APIHandler) ListGoalsHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	goals, err := h.goalService.ListGoals(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to fetch goals.", err)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Goals retrieved successfully", goals)
}

// AddGoalHandler creates a goal.
// POST /api/goals
func (h *APIHandler) AddGoalHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req models.GoalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	unlock := h.lockUser(userID)
	defer unlock()

	goal, err := h.goalService.AddGoal(userID, req)
	if err != nil {
		h.sendGoalError(c, err, "Failed to create goal.")
		return
	}

	utils.SendJSONData(c, http.StatusCreated, "Goal created", goal)
}

// UpdateGoalHandler applies a partial update.
// PATCH /api/goals/:goalID
func (h *APIHandler) UpdateGoalHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var patch models.GoalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	unlock := h.lockUser(userID)
	defer unlock()

	goal, err := h.goalService.UpdateGoal(userID, c.Param("goalID"), patch)
	if err != nil {
		h.sendGoalError(c, err, "Failed to update goal.")
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Goal updated", goal)
}

// DeleteGoalHandler removes a goal.
// DELETE /api/goals/:goalID
func (h *APIHandler) DeleteGoalHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	unlock := h.lockUser(userID)
	defer unlock()

	if err := h.goalService.DeleteGoal(userID, c.Param("goalID")); err != nil {
		h.sendGoalError(c, err, "Failed to delete goal.")
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Goal deleted", nil)
}

// ToggleGoalHandler flips a goal's completed flag.
// POST /api/goals/:goalID/toggle
func (h *APIHandler) ToggleGoalHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	unlock := h.lockUser(userID)
	defer unlock()

	goal, err := h.goalService.ToggleGoalComplete(userID, c.Param("goalID"))
	if err != nil {
		h.sendGoalError(c, err, "Failed to toggle goal.")
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Goal toggled", goal)
}

// GoalSummaryHandler reports completion statistics.
// GET /api/goals/summary
func (h *APIHandler) GoalSummaryHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.goalService.Summary(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to build goal summary.", err)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Goal summary generated successfully", summary)
}

func (h *APIHandler) sendGoalError(c *gin.Context, err error, publicMsg string) {
	switch {
	case errors.Is(err, services.ErrGoalNotFound):
		utils.SendJSONError(c, h.log, http.StatusNotFound, "Goal not found.", nil, err.Error())
	case errors.Is(err, services.ErrInvalidGoal):
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid goal.", nil, err.Error())
	default:
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, publicMsg, err)
	}
}
