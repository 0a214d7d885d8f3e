package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/repository"
	"github.com/aliirsyaadn/mindful-death/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const scoreUserID = "cli"

var answersFile string

// ScoreOutput is what the score command prints.
type ScoreOutput struct {
	Result       *models.AssessmentResult `json:"result"`
	LifeEstimate *models.LifeEstimate     `json:"life_estimate"`
	Summary      models.FactorsSummary    `json:"summary"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Answer the questionnaire from a file and print the estimate",
	Long: `score reads a map of question id to answer from a YAML or JSON file,
replays it through the assessment engine and prints the result as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := catalogFor(cfg)
		if err != nil {
			return err
		}
		answers, err := readAnswers(answersFile)
		if err != nil {
			return err
		}

		output, err := runScore(catalog, answers)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML or JSON file of answers")
	scoreCmd.MarkFlagRequired("answers")
	rootCmd.AddCommand(scoreCmd)
}

func readAnswers(path string) (models.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	answers := models.Answers{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &answers)
	default:
		err = yaml.Unmarshal(data, &answers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	return answers, nil
}

// runScore drives a throwaway session with in-memory storage: one set_answer per answer, then complete.
func runScore(catalog *services.Catalog, answers models.Answers) (*ScoreOutput, error) {
	log := cliLogger()
	controller := services.NewController(
		catalog,
		repository.NewMemorySessionRepository(log),
		repository.NewMemoryUserDataRepository(log),
		log,
		nil,
	)

	state, err := controller.Initialize(scoreUserID)
	if err != nil {
		return nil, err
	}

	for _, id := range answerOrder(catalog, answers) {
		state, err = controller.Dispatch(state, services.SetAnswer(id, answers[id]))
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", id, err)
		}
	}

	state, err = controller.Dispatch(state, services.Action{Type: services.ActionComplete})
	if err != nil {
		return nil, err
	}

	return &ScoreOutput{
		Result:       state.Result,
		LifeEstimate: state.LifeEstimate,
		Summary:      services.FactorsSummary(*state.Result),
	}, nil
}

// answerOrder lists answered ids in flow order, then any ids the flow does not know in name order.
func answerOrder(catalog *services.Catalog, answers models.Answers) []string {
	ids := make([]string, 0, len(answers))
	known := make(map[string]bool, len(answers))
	for _, q := range catalog.Questions() {
		if _, ok := answers[q.ID]; ok {
			ids = append(ids, q.ID)
			known[q.ID] = true
		}
	}

	var unknown []string
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return append(ids, unknown...)
}
