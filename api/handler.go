package api

import (
	"errors"
	"hash/fnv"
	"net/http"
	"sync"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/services"
	"github.com/aliirsyaadn/mindful-death/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDHeader identifies the caller. The userID query parameter is accepted as a fallback.
const UserIDHeader = "X-User-ID"

var errMissingUserID = errors.New("missing user id")

// userLockStripes bounds the number of user mutexes. Users sharing a stripe just queue behind each other.
const userLockStripes = 256

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	catalog     *services.Catalog
	controller  services.Controller
	goalService services.GoalService
	userService services.UserService
	log         *zap.Logger

	// userLocks serialises actions for a single user so each one sees the state the previous one left.
	userLocks [userLockStripes]sync.Mutex
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	catalog *services.Catalog,
	controller services.Controller,
	goalService services.GoalService,
	userService services.UserService,
	log *zap.Logger,
) *APIHandler {
	return &APIHandler{
		catalog:     catalog,
		controller:  controller,
		goalService: goalService,
		userService: userService,
		log:         log.Named("api"),
	}
}

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(r *gin.Engine, h *APIHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/init", h.InitHandler)

		assessmentGroup := apiGroup.Group("/assessment")
		{
			assessmentGroup.GET("", h.GetAssessmentHandler)
			assessmentGroup.GET("/flow", h.GetFlowHandler)
			assessmentGroup.POST("/answer", h.SetAnswerHandler)
			assessmentGroup.POST("/next", h.actionHandler(services.ActionGoNext))
			assessmentGroup.POST("/back", h.actionHandler(services.ActionGoBack))
			assessmentGroup.POST("/complete", h.actionHandler(services.ActionComplete))
			assessmentGroup.POST("/reset", h.actionHandler(services.ActionReset))
		}

		userGroup := apiGroup.Group("/user")
		{
			userGroup.GET("", h.GetUserHandler)
			userGroup.DELETE("", h.ClearUserHandler)
			userGroup.POST("/setup", h.QuickSetupHandler)
		}

		goalGroup := apiGroup.Group("/goals")
		{
			goalGroup.GET("", h.ListGoalsHandler)
			goalGroup.POST("", h.AddGoalHandler)
			goalGroup.GET("/summary", h.GoalSummaryHandler)
			goalGroup.PATCH("/:goalID", h.UpdateGoalHandler)
			goalGroup.DELETE("/:goalID", h.DeleteGoalHandler)
			goalGroup.POST("/:goalID/toggle", h.ToggleGoalHandler)
		}
	}
}

// lockUser acquires the user's mutex stripe and returns its unlock function.
func (h *APIHandler) lockUser(userID string) func() {
	mu := &h.userLocks[userLockStripe(userID)]
	mu.Lock()
	return mu.Unlock
}

func userLockStripe(userID string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(userID))
	return int(hash.Sum32() % userLockStripes)
}

// requireUserID reads the caller's id and writes a 400 when it is absent.
func (h *APIHandler) requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		userID = c.Query("userID")
	}
	if userID == "" {
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "User id is required.", errMissingUserID,
			"set the "+UserIDHeader+" header or the userID query parameter")
		return "", false
	}
	return userID, true
}

// InitHandler returns the caller's id, generating one for new visitors, and where they stand.
// GET /api/init
func (h *APIHandler) InitHandler(c *gin.Context) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		userID = c.Query("userID")
	}

	response := models.InitResponse{
		UserID:      userID,
		FlowID:      h.catalog.FlowID(),
		FlowVersion: h.catalog.FlowVersion(),
	}

	if userID == "" {
		response.UserID = uuid.NewString()
		response.IsNew = true
		h.log.Info("Generated new user id", zap.String("user_id", response.UserID))
		utils.SendJSONData(c, http.StatusOK, "Success", response)
		return
	}

	unlock := h.lockUser(userID)
	defer unlock()

	data, err := h.userService.Get(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to load user data.", err)
		return
	}
	response.IsNew = data == nil
	response.HasCompletedAssessment = data.HasCompletedAssessment()

	state, err := h.controller.Initialize(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to load assessment session.", err)
		return
	}
	response.HasSession = len(state.Session.AnswerSet()) > 0

	utils.SendJSONData(c, http.StatusOK, "Success", response)
}

// GetUserHandler returns the durable user record.
// GET /api/user
func (h *APIHandler) GetUserHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, err := h.userService.Get(userID)
	if err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to load user data.", err)
		return
	}
	if data == nil {
		utils.SendJSONError(c, h.log, http.StatusNotFound, "User not found.", nil)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "User data retrieved successfully", data)
}

// ClearUserHandler deletes the user record, goals and any in-progress session.
// DELETE /api/user
func (h *APIHandler) ClearUserHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	unlock := h.lockUser(userID)
	defer unlock()

	if err := h.userService.Clear(userID); err != nil {
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to clear user data.", err)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "User data cleared", nil)
}

// QuickSetupHandler stores age and gender before the full assessment.
// POST /api/user/setup
// Request body: { "age": 30, "gender": "female", "birth_date": "1995-06-15" }
func (h *APIHandler) QuickSetupHandler(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.QuickSetupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	unlock := h.lockUser(userID)
	defer unlock()

	data, err := h.userService.QuickSetup(userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSetup) {
			utils.SendJSONError(c, h.log, http.StatusBadRequest, "Invalid setup.", nil, err.Error())
			return
		}
		utils.SendJSONError(c, h.log, http.StatusInternalServerError, "Failed to save setup.", err)
		return
	}

	utils.SendJSONData(c, http.StatusOK, "Setup saved", data)
}
