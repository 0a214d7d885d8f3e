package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	// ErrAssessmentIncomplete is returned by Complete while a visible required question is unanswered
	// or birth date / gender are missing.
	ErrAssessmentIncomplete = errors.New("assessment is not complete")
	ErrUnknownAction        = errors.New("unknown assessment action")
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrNoState              = errors.New("assessment state has not been initialized")
)

// ActionType names one of the transitions the controller accepts.
type ActionType string

const (
	ActionSetAnswer ActionType = "set_answer"
	ActionGoNext    ActionType = "go_next"
	ActionGoBack    ActionType = "go_back"
	ActionComplete  ActionType = "complete"
	ActionReset     ActionType = "reset"
)

// Action is one user intent. QuestionID and Value are only read by set_answer.
type Action struct {
	Type       ActionType         `json:"type"`
	QuestionID string             `json:"question_id,omitempty"`
	Value      models.AnswerValue `json:"value"`
}

func SetAnswer(questionID string, value models.AnswerValue) Action {
	return Action{Type: ActionSetAnswer, QuestionID: questionID, Value: value}
}

// State is everything the presentation layer needs, derived from one session.
type State struct {
	Session           *models.AssessmentSession `json:"session"`
	CurrentQuestion   *VisibleQuestion          `json:"current_question"`
	CurrentSection    *models.Section           `json:"current_section"`
	CurrentValidation *ValidationResult         `json:"current_validation,omitempty"`
	Progress          Progress                  `json:"progress"`
	CanGoBack         bool                      `json:"can_go_back"`
	CanGoNext         bool                      `json:"can_go_next"`
	IsComplete        bool                      `json:"is_complete"`
	IsLastQuestion    bool                      `json:"is_last_question"`
	CanComplete       bool                      `json:"can_complete"`
	Result            *models.AssessmentResult  `json:"result"`
	LifeEstimate      *models.LifeEstimate      `json:"life_estimate"`
}

// Controller owns the assessment session of each user and applies actions to it.
type Controller interface {
	Initialize(userID string) (*State, error)
	Dispatch(state *State, action Action) (*State, error)
}

type controller struct {
	catalog    *Catalog
	navigator  *Navigator
	calculator *Calculator
	sessions   repository.SessionRepository
	users      repository.UserDataRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewController wires the engine to its storage. now defaults to time.Now.
func NewController(
	catalog *Catalog,
	sessions repository.SessionRepository,
	users repository.UserDataRepository,
	log *zap.Logger,
	now func() time.Time,
) Controller {
	if now == nil {
		now = time.Now
	}
	return &controller{
		catalog:    catalog,
		navigator:  NewNavigator(catalog),
		calculator: NewCalculator(catalog, now),
		sessions:   sessions,
		users:      users,
		log:        log.Named("assessment_controller"),
		now:        now,
	}
}

func (s *controller) newSession(userID string) *models.AssessmentSession {
	now := s.now()
	session := &models.AssessmentSession{
		UserID:        userID,
		FlowID:        s.catalog.FlowID(),
		FlowVersion:   s.catalog.FlowVersion(),
		StartedAt:     now,
		LastUpdatedAt: now,
	}
	session.SetAnswers(models.Answers{})
	if first := s.navigator.FirstQuestion(session.AnswerSet()); first != nil {
		session.SetCursor(first.Question.ID)
	}
	return session
}

// prefill copies birth date and gender from durable user data into answers that lack them.
func (s *controller) prefill(userID string, answers models.Answers) (bool, error) {
	data, err := s.users.GetUserData(userID)
	if err != nil {
		return false, fmt.Errorf("failed to load user data for prefill: %w", err)
	}
	if data == nil {
		return false, nil
	}
	changed := false
	if data.BirthDate != "" && answers[QuestionBirthDate].IsBlank() {
		answers[QuestionBirthDate] = models.StringAnswer(data.BirthDate)
		changed = true
	}
	if p := data.Profile.Data(); p != nil && p.Gender != "" && answers[QuestionGender].IsBlank() {
		answers[QuestionGender] = models.StringAnswer(p.Gender)
		changed = true
	}
	return changed, nil
}

// Initialize resumes the user's session, or starts a new one when none exists or it belongs to another flow.
func (s *controller) Initialize(userID string) (*State, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	session, err := s.sessions.GetSession(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for userID %s: %w", userID, err)
	}

	dirty := false
	switch {
	case session == nil:
		s.log.Info("Starting new assessment session", zap.String("user_id", userID), zap.String("flow_id", s.catalog.FlowID()))
		session = s.newSession(userID)
		dirty = true
	case session.FlowID != s.catalog.FlowID():
		s.log.Info("Discarding session from another flow",
			zap.String("user_id", userID),
			zap.String("session_flow_id", session.FlowID),
			zap.String("flow_id", s.catalog.FlowID()),
		)
		session = s.newSession(userID)
		dirty = true
	case session.FlowVersion != s.catalog.FlowVersion():
		s.log.Warn("Resuming session recorded against a different flow version",
			zap.String("user_id", userID),
			zap.String("session_flow_version", session.FlowVersion),
			zap.String("flow_version", s.catalog.FlowVersion()),
		)
	}

	answers := session.AnswerSet()
	filled, err := s.prefill(userID, answers)
	if err != nil {
		return nil, err
	}
	if filled {
		session.SetAnswers(answers)
		dirty = true
	}

	state := s.deriveState(session)
	if dirty {
		if err := s.persist(state.Session); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Dispatch applies action to state and returns the next state. The input state is never mutated.
// Once a result is present only reset changes anything.
func (s *controller) Dispatch(state *State, action Action) (*State, error) {
	if state == nil || state.Session == nil {
		return nil, ErrNoState
	}
	if state.Result != nil && action.Type != ActionReset {
		return state, nil
	}

	switch action.Type {
	case ActionSetAnswer:
		return s.setAnswer(state, action.QuestionID, action.Value)
	case ActionGoNext:
		return s.move(state, s.navigator.NextQuestion)
	case ActionGoBack:
		return s.move(state, s.navigator.PreviousQuestion)
	case ActionComplete:
		return s.complete(state)
	case ActionReset:
		return s.reset(state)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
}

// setAnswer stores value (an absent value clears the answer) and keeps the cursor if it is still visible.
func (s *controller) setAnswer(state *State, questionID string, value models.AnswerValue) (*State, error) {
	if _, ok := s.catalog.QuestionByID(questionID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	session := state.Session.Clone()
	answers := session.AnswerSet()
	if value.IsPresent() {
		answers[questionID] = value
	} else {
		delete(answers, questionID)
	}
	session.SetAnswers(answers)
	session.LastUpdatedAt = s.now()

	next := s.deriveState(session)
	if err := s.persist(next.Session); err != nil {
		return nil, err
	}
	s.log.Debug("Answer set",
		zap.String("user_id", session.UserID),
		zap.String("question_id", questionID),
		zap.String("current_question_id", next.Session.Cursor()),
	)
	return next, nil
}

// move steps the cursor with step; no neighbour means the state is returned unchanged.
func (s *controller) move(state *State, step func(string, models.Answers) *VisibleQuestion) (*State, error) {
	target := step(state.Session.Cursor(), state.Session.AnswerSet())
	if target == nil {
		return state, nil
	}
	session := state.Session.Clone()
	session.SetCursor(target.Question.ID)
	session.LastUpdatedAt = s.now()

	next := s.deriveState(session)
	if err := s.persist(next.Session); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *controller) complete(state *State) (*State, error) {
	answers := state.Session.AnswerSet()
	if !s.navigator.IsComplete(answers) {
		missing := s.navigator.UnansweredRequired(answers)
		ids := make([]string, 0, len(missing))
		for _, q := range missing {
			ids = append(ids, q.ID)
		}
		return nil, fmt.Errorf("%w: unanswered %v", ErrAssessmentIncomplete, ids)
	}
	birthDate, _ := answers[QuestionBirthDate].AsString()
	gender, _ := answers[QuestionGender].AsString()
	if birthDate == "" || gender == "" {
		return nil, fmt.Errorf("%w: birth date and gender are required", ErrAssessmentIncomplete)
	}

	result := s.calculator.Calculate(answers)
	estimate := s.calculator.ToLifeEstimate(result, birthDate)
	completedAt := s.now()

	userID := state.Session.UserID
	data, err := s.users.GetUserData(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data for userID %s: %w", userID, err)
	}
	if data == nil {
		data = models.NewUserData(userID)
	}
	data.PlanType = models.PlanTypeDeath
	data.BirthDate = birthDate
	data.Profile = datatypes.NewJSONType(s.profileFrom(answers, birthDate))
	data.LifeEstimate = datatypes.NewJSONType(&estimate)
	data.ExtendedAssessment = datatypes.NewJSONType(&models.ExtendedAssessment{
		Answers:     answers.Clone(),
		Result:      result,
		CompletedAt: completedAt,
	})
	data.CompletedAt = &completedAt

	if err := s.users.SaveUserData(data); err != nil {
		return nil, fmt.Errorf("failed to save assessment result for userID %s: %w", userID, err)
	}
	if err := s.sessions.ClearSession(userID); err != nil {
		return nil, fmt.Errorf("failed to clear session for userID %s: %w", userID, err)
	}

	session := state.Session.Clone()
	session.CompletedAt = &completedAt
	session.LastUpdatedAt = completedAt

	next := s.deriveState(session)
	next.Result = &result
	next.LifeEstimate = &estimate

	s.log.Info("Assessment completed",
		zap.String("user_id", userID),
		zap.Float64("base_life_expectancy", result.BaseLifeExpectancy),
		zap.Float64("total_adjustment", result.TotalAdjustment),
		zap.Float64("adjusted_life_expectancy", result.AdjustedLifeExpectancy),
		zap.String("confidence", string(result.Confidence)),
		zap.Int("applied_factors", len(result.AppliedFactors)),
	)
	return next, nil
}

func (s *controller) profileFrom(answers models.Answers, birthDate string) *models.Profile {
	str := func(id string) string {
		v, _ := answers[id].AsString()
		return v
	}
	return &models.Profile{
		Age:              s.calculator.CalculateAge(birthDate),
		Gender:           str(QuestionGender),
		Province:         str(QuestionProvince),
		Smoking:          str("smoking"),
		Exercise:         str("exercise"),
		BMI:              str("bmi_category"),
		Sleep:            str("sleep"),
		Stress:           str("stress"),
		Diet:             str("diet"),
		Alcohol:          str("alcohol"),
		SocialConnection: str("social_connection"),
	}
}

func (s *controller) reset(state *State) (*State, error) {
	userID := state.Session.UserID
	if err := s.sessions.ClearSession(userID); err != nil {
		return nil, fmt.Errorf("failed to clear session for userID %s: %w", userID, err)
	}
	session := s.newSession(userID)
	next := s.deriveState(session)
	if err := s.persist(next.Session); err != nil {
		return nil, err
	}
	s.log.Info("Assessment reset", zap.String("user_id", userID))
	return next, nil
}

func (s *controller) persist(session *models.AssessmentSession) error {
	if err := s.sessions.SaveSession(session); err != nil {
		return fmt.Errorf("failed to save session for userID %s: %w", session.UserID, err)
	}
	return nil
}

// deriveState recomputes every visibility-dependent field. A cursor that is no longer visible
// falls back to the first visible question.
func (s *controller) deriveState(session *models.AssessmentSession) *State {
	answers := session.AnswerSet()

	current := s.visibleCursor(session.Cursor(), answers)
	if current == nil {
		current = s.navigator.FirstQuestion(answers)
	}
	if current != nil {
		session.SetCursor(current.Question.ID)
	} else {
		session.SetCursor("")
	}

	state := &State{
		Session:    session,
		Progress:   s.navigator.Progress(answers, session.Cursor()),
		IsComplete: s.navigator.IsComplete(answers),
	}
	if current == nil {
		return state
	}

	section := current.Section
	validation := ValidateAnswer(current.Question, answers[current.Question.ID])
	state.CurrentQuestion = current
	state.CurrentSection = &section
	state.CurrentValidation = &validation
	state.CanGoBack = s.navigator.HasPrevious(current.Question.ID, answers)
	// CanGoNext only tracks the current answer; on the last question it gates completion.
	state.CanGoNext = s.navigator.CanProceed(current.Question.ID, answers)
	state.IsLastQuestion = s.navigator.IsLast(current.Question.ID, answers)
	state.CanComplete = state.IsLastQuestion && state.CanGoNext && state.IsComplete
	return state
}

func (s *controller) visibleCursor(questionID string, answers models.Answers) *VisibleQuestion {
	if questionID == "" {
		return nil
	}
	visible := s.navigator.AllVisibleQuestions(answers)
	if i := indexOf(visible, questionID); i != -1 {
		return &visible[i]
	}
	return nil
}
