package api

import (
	"errors"
	"net/http"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/services"
	"github.com/aliirsyaadn/mindful-death/utils"

	"github.com/gin-gonic/gin"
)

// FlowResponse describes the questionnaire for clients rendering it.
type FlowResponse struct {
	FlowID      string                       `json:"flow_id"`
	FlowVersion string                       `json:"flow_version"`
	Sections    []models.Section             `json:"sections"`
	Questions   []models.Question            `json:"questions"`
	InputTypes  []models.InputTypeDefinition `json:"input_types"`
	Citations   []models.Citation            `json:"citations"`
}

type setAnswerRequest struct {
	QuestionID string             `json:"question_id" binding:"required"`
	Value      models.AnswerValue `json:"value"`
}

// GetAssessmentHandler initializes the caller's session and returns its derived state.
// GET /api/assessment
func (h *APIHandler) GetAssessmentHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	unlock := h.lockUser(userID)
	defer unlock()

	state, err := h.controller.Initialize(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to load assessment.", err)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Assessment state retrieved", state)
}

// GetFlowHandler returns sections, questions (with input-type defaults applied) and citations.
// GET /api/assessment/flow
func (h *APIHandler) GetFlowHandler(c *gin.Context) {
	questions := make([]models.Question, 0, len(h.catalog.Questions()))
	for _, q := range h.catalog.Questions() {
		if cfg, ok := h.catalog.MergedConfig(q.ID); ok {
			q.Config = cfg
		}
		questions = append(questions, q)
	}

	inputTypes := make([]models.InputTypeDefinition, 0)
	seen := make(map[models.InputType]bool)
	for _, q := range questions {
		if seen[q.InputType] {
			continue
		}
		seen[q.InputType] = true
		if def, ok := h.catalog.InputTypeDefinition(q.InputType); ok {
			inputTypes = append(inputTypes, def)
		}
	}

	utils.SendJSONData(c, http.StatusOK, "Success", FlowResponse{
		FlowID:      h.catalog.FlowID(),
		FlowVersion: h.catalog.FlowVersion(),
		Sections:    h.catalog.Sections(),
		Questions:   questions,
		InputTypes:  inputTypes,
		Citations:   h.catalog.Citations(),
	})
}

// SetAnswerHandler records or clears one answer. A null value clears it.
// POST /api/assessment/answer
// Request body: { "question_id": "smoking", "value": "never" }
func (h *APIHandler) SetAnswerHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req setAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	h.dispatch(c, userID, services.SetAnswer(req.QuestionID, req.Value))
}

// actionHandler builds the handler for the body-less transitions: next, back, complete and reset.
func (h *APIHandler) actionHandler(actionType services.ActionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.requireUserID(c)
		if !ok {
			return
		}
		h.dispatch(c, userID, services.Action{Type: actionType})
	}
}

func (h *APIHandler) dispatch(c *gin.Context, userID string, action services.Action) {
	unlock := h.lockUser(userID)
	defer unlock()

	state, err := h.controller.Initialize(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to load assessment.", err)
		return
	}

	next, err := h.controller.Dispatch(state, action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAssessmentIncomplete):
			utils.SendJSONError(c, h.log, http.StatusUnprocessableEntity, "Assessment is not complete.", nil, err.Error())
		case errors.Is(err, services.ErrUnknownQuestion), errors.Is(err, services.ErrUnknownAction):
			utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid assessment action.", nil, err.Error())
		default:
			utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to update assessment.", err)
		}
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Success", next)
}
