package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/repository"
	"github.com/aliirsyaadn/mindful-death/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := services.DefaultCatalog()
	require.NoError(t, err)

	log := zap.NewNop()
	sessions := repository.NewMemorySessionRepository(log)
	users := repository.NewMemoryUserDataRepository(log)
	handler := NewAPIHandler(
		catalog,
		services.NewController(catalog, sessions, users, log, nil),
		services.NewGoalService(users, log),
		services.NewUserService(users, sessions, log),
		log,
	)

	r := gin.New()
	RegisterRoutes(r, handler)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, userID string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decodeState(t *testing.T, env envelope) services.State {
	t.Helper()
	var state services.State
	require.NoError(t, json.Unmarshal(env.Data, &state))
	return state
}

func answer(id string, value interface{}) gin.H {
	return gin.H{"question_id": id, "value": value}
}

// completeAnswers answers every required question of the embedded flow for a non-smoker.
var completeAnswers = []gin.H{
	answer("birth_date", "1995-06-15"),
	answer("gender", "female"),
	answer("smoking", "never"),
	answer("exercise", "active"),
	answer("bmi_category", "normal"),
	answer("alcohol", "never"),
	answer("sleep", "good"),
	answer("stress", "low"),
	answer("diet", "healthy"),
	answer("social_connection", "strong"),
}

func TestInitHandler(t *testing.T) {
	r := setupRouter(t)

	t.Run("Generates an id for new visitors", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/init", "", nil)
		require.Equal(t, http.StatusOK, code)

		var resp models.InitResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.NotEmpty(t, resp.UserID)
		assert.True(t, resp.IsNew)
		assert.False(t, resp.HasCompletedAssessment)
		assert.Equal(t, "life-expectancy-assessment", resp.FlowID)
	})

	t.Run("Known id via query parameter", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/init?userID=visitor-1", "", nil)
		require.Equal(t, http.StatusOK, code)

		var resp models.InitResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "visitor-1", resp.UserID)
		assert.True(t, resp.IsNew)
		assert.False(t, resp.HasSession)
	})
}

func TestAssessmentHandlers(t *testing.T) {
	r := setupRouter(t)
	const user = "user-1"

	t.Run("Missing user id", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/assessment", "", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "User id is required.", env.Error)
	})

	t.Run("Fresh state starts at the first question", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/assessment", user, nil)
		require.Equal(t, http.StatusOK, code)

		state := decodeState(t, env)
		require.NotNil(t, state.CurrentQuestion)
		assert.Equal(t, "birth_date", state.CurrentQuestion.Question.ID)
		assert.False(t, state.CanGoBack)
		assert.False(t, state.IsComplete)
		assert.Nil(t, state.Result)
	})

	t.Run("Flow definition", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/assessment/flow", "", nil)
		require.Equal(t, http.StatusOK, code)

		var flow FlowResponse
		require.NoError(t, json.Unmarshal(env.Data, &flow))
		assert.Equal(t, "2.0.0", flow.FlowVersion)
		assert.NotEmpty(t, flow.Sections)
		assert.NotEmpty(t, flow.Citations)
		assert.NotEmpty(t, flow.InputTypes)

		for _, q := range flow.Questions {
			if q.ID != "health_conditions" {
				continue
			}
			require.NotNil(t, q.Config.MinSelections, "input-type default is rendered")
			assert.Equal(t, 1, *q.Config.MinSelections)
		}
	})

	t.Run("Answer and move", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPost, "/api/assessment/answer", user, answer("birth_date", "1995-06-15"))
		require.Equal(t, http.StatusOK, code)
		state := decodeState(t, env)
		assert.Equal(t, models.StringAnswer("1995-06-15"), state.Session.AnswerSet()["birth_date"])
		assert.True(t, state.CanGoNext)

		code, env = doRequest(t, r, http.MethodPost, "/api/assessment/next", user, nil)
		require.Equal(t, http.StatusOK, code)
		state = decodeState(t, env)
		assert.Equal(t, "gender", state.CurrentQuestion.Question.ID)

		code, env = doRequest(t, r, http.MethodPost, "/api/assessment/back", user, nil)
		require.Equal(t, http.StatusOK, code)
		state = decodeState(t, env)
		assert.Equal(t, "birth_date", state.CurrentQuestion.Question.ID)
	})

	t.Run("Unknown question", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPost, "/api/assessment/answer", user, answer("favourite_colour", "blue"))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid assessment action.", env.Error)
	})

	t.Run("Malformed answer body", func(t *testing.T) {
		code, _ := doRequest(t, r, http.MethodPost, "/api/assessment/answer", user, gin.H{"value": "x"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Completing early is refused", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPost, "/api/assessment/complete", user, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, env.Details, "not complete")
	})

	t.Run("Full run stores the estimate", func(t *testing.T) {
		for _, a := range completeAnswers {
			code, env := doRequest(t, r, http.MethodPost, "/api/assessment/answer", user, a)
			require.Equal(t, http.StatusOK, code, env.Error)
		}

		code, env := doRequest(t, r, http.MethodPost, "/api/assessment/complete", user, nil)
		require.Equal(t, http.StatusOK, code, env.Details)
		state := decodeState(t, env)
		require.NotNil(t, state.Result)
		require.NotNil(t, state.LifeEstimate)
		assert.Equal(t, 73.8, state.Result.BaseLifeExpectancy)
		assert.Equal(t, state.Result.AdjustedLifeExpectancy, state.LifeEstimate.LifeExpectancy)

		code, env = doRequest(t, r, http.MethodGet, "/api/user", user, nil)
		require.Equal(t, http.StatusOK, code)
		var data models.UserData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "1995-06-15", data.BirthDate)
		require.NotNil(t, data.LifeEstimate.Data())
		assert.Equal(t, state.LifeEstimate.DaysRemaining, data.LifeEstimate.Data().DaysRemaining)

		code, env = doRequest(t, r, http.MethodGet, "/api/init", user, nil)
		require.Equal(t, http.StatusOK, code)
		var resp models.InitResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.True(t, resp.HasCompletedAssessment)
		assert.False(t, resp.IsNew)
	})

	t.Run("Next session is pre-filled from stored data", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/assessment", user, nil)
		require.Equal(t, http.StatusOK, code)
		state := decodeState(t, env)
		assert.Equal(t, models.StringAnswer("female"), state.Session.AnswerSet()["gender"])
	})

	t.Run("Reset clears answers", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPost, "/api/assessment/reset", user, nil)
		require.Equal(t, http.StatusOK, code)
		state := decodeState(t, env)
		assert.Empty(t, state.Session.AnswerSet())
		assert.Equal(t, 0, state.Progress.AnsweredQuestions)
	})

	t.Run("Delete user", func(t *testing.T) {
		code, _ := doRequest(t, r, http.MethodDelete, "/api/user", user, nil)
		require.Equal(t, http.StatusOK, code)

		code, env := doRequest(t, r, http.MethodGet, "/api/user", user, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "User not found.", env.Error)
	})
}

func TestQuickSetupHandler(t *testing.T) {
	r := setupRouter(t)

	code, env := doRequest(t, r, http.MethodPost, "/api/user/setup", "u", gin.H{"age": 30, "gender": "other"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details, "gender")

	code, env = doRequest(t, r, http.MethodPost, "/api/user/setup", "u", gin.H{"age": 30, "gender": "male", "birth_date": "1995-01-01"})
	require.Equal(t, http.StatusOK, code)
	var data models.UserData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Profile.Data())
	assert.Equal(t, 30, data.Profile.Data().Age)

	code, env = doRequest(t, r, http.MethodGet, "/api/assessment", "u", nil)
	require.Equal(t, http.StatusOK, code)
	state := decodeState(t, env)
	assert.Equal(t, models.StringAnswer("male"), state.Session.AnswerSet()["gender"])
	assert.Equal(t, models.StringAnswer("1995-01-01"), state.Session.AnswerSet()["birth_date"])
}

func TestGoalHandlers(t *testing.T) {
	r := setupRouter(t)
	const user = "goal-user"

	code, env := doRequest(t, r, http.MethodPost, "/api/goals", user, gin.H{"title": "Run a marathon", "category": "kesehatan"})
	require.Equal(t, http.StatusCreated, code, env.Details)
	var goal models.Goal
	require.NoError(t, json.Unmarshal(env.Data, &goal))
	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, models.GoalPriorityMedium, goal.Priority)

	t.Run("Invalid goal", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPost, "/api/goals", user, gin.H{"title": "Nap", "category": "sleeping"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid goal.", env.Error)
	})

	t.Run("Patch", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodPatch, "/api/goals/"+goal.ID, user, gin.H{"priority": "high"})
		require.Equal(t, http.StatusOK, code)
		var updated models.Goal
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, models.GoalPriorityHigh, updated.Priority)
		assert.Equal(t, "Run a marathon", updated.Title)
	})

	t.Run("Toggle and summary", func(t *testing.T) {
		code, _ := doRequest(t, r, http.MethodPost, "/api/goals/"+goal.ID+"/toggle", user, nil)
		require.Equal(t, http.StatusOK, code)

		code, env := doRequest(t, r, http.MethodGet, "/api/goals/summary", user, nil)
		require.Equal(t, http.StatusOK, code)
		var summary models.GoalSummary
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, 1, summary.TotalGoals)
		assert.Equal(t, 1, summary.CompletedGoals)
		assert.Equal(t, 100.0, summary.CompletionRate)
	})

	t.Run("List", func(t *testing.T) {
		code, env := doRequest(t, r, http.MethodGet, "/api/goals", user, nil)
		require.Equal(t, http.StatusOK, code)
		var goals []models.Goal
		require.NoError(t, json.Unmarshal(env.Data, &goals))
		assert.Len(t, goals, 1)
	})

	t.Run("Delete and missing goal", func(t *testing.T) {
		code, _ := doRequest(t, r, http.MethodDelete, "/api/goals/"+goal.ID, user, nil)
		require.Equal(t, http.StatusOK, code)

		code, env := doRequest(t, r, http.MethodDelete, "/api/goals/"+goal.ID, user, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Goal not found.", env.Error)
	})
}

func TestLockUser(t *testing.T) {
	t.Run("A user always maps to the same stripe", func(t *testing.T) {
		for _, id := range []string{"", "u1", "550e8400-e29b-41d4-a716-446655440000"} {
			stripe := userLockStripe(id)
			assert.Equal(t, stripe, userLockStripe(id))
			assert.GreaterOrEqual(t, stripe, 0)
			assert.Less(t, stripe, userLockStripes)
		}
	})

	t.Run("Serialises concurrent actions of one user", func(t *testing.T) {
		h := &APIHandler{}
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := h.lockUser("u1")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})
}
