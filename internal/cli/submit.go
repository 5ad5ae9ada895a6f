package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// NewSubmitCmd builds the subcommand that posts answers for a session.
// Answers are given as questionID=optionID pairs.
func NewSubmitCmd(configPath, baseURL *string) *cobra.Command {
	var (
		sessionID string
		quizID    string
		answers   []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit answers for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), *configPath, *baseURL, sessionID, quizID, answers)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id (recorded against the dedup set)")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "answer as questionID=optionID (repeatable)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func runSubmit(ctx context.Context, configPath, baseURL, sessionID, quizID string, rawAnswers []string) error {
	service, err := buildService(ctx, configPath, baseURL)
	if err != nil {
		return err
	}

	submissions := make([]domain.AnswerSubmission, 0, len(rawAnswers))
	for _, raw := range rawAnswers {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid answer %q, want questionID=optionID", raw)
		}
		submissions = append(submissions, domain.AnswerSubmission{
			QuestionID: parts[0],
			OptionID:   parts[1],
		})
	}

	result, err := service.Submit(ctx, sessionID, quizID, submissions)
	if err != nil {
		return err
	}
	log.Printf("scored %d/%d", result.Score, result.TotalQuestions)
	return nil
}
