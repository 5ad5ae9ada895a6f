package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/singhvigyat/scrutiny-client/internal/app"
	"github.com/singhvigyat/scrutiny-client/internal/auth"
	"github.com/singhvigyat/scrutiny-client/internal/config"
	"github.com/singhvigyat/scrutiny-client/internal/domain"
	filekv "github.com/singhvigyat/scrutiny-client/internal/infra/file"
	rediskv "github.com/singhvigyat/scrutiny-client/internal/infra/redis"
	transport "github.com/singhvigyat/scrutiny-client/internal/transport/http"
)

// NewWatchCmd builds the subcommand that joins a session and follows it
// until the quiz opens.
func NewWatchCmd(configPath, baseURL *string) *cobra.Command {
	var (
		sessionID   string
		pin         string
		displayName string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Join a session and wait for the quiz to start",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), *configPath, *baseURL, sessionID, pin, displayName)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to watch")
	cmd.Flags().StringVar(&pin, "pin", "", "session PIN")
	cmd.Flags().StringVar(&displayName, "name", "", "display name to join with")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func runWatch(ctx context.Context, configPath, baseURL, sessionID, pin, displayName string) error {
	service, err := buildService(ctx, configPath, baseURL)
	if err != nil {
		return err
	}

	quizID := ""
	if pin != "" {
		joined, err := service.Join(ctx, sessionID, pin, displayName)
		if err != nil {
			return err
		}
		sessionID = joined.SessionID
		quizID = joined.QuizID
		log.Printf("joined session %s (quiz %q)", sessionID, quizID)
	}

	activated := make(chan struct{}, 1)
	stop := service.Watch(ctx, sessionID, quizID, app.WatchCallbacks{
		OnSessionUpdate: func(s domain.Session) {
			log.Printf("session %s: status=%s participants=%d", s.ID, s.Status, len(s.Participants))
		},
		OnSessionActivated: func(result app.ActivationResult) {
			if result.Quiz != nil {
				log.Printf("quiz %q is live with %d questions", result.Quiz.Title, len(result.Quiz.Questions))
			} else {
				log.Printf("session %s is live (quiz payload unavailable)", result.Session.ID)
			}
			activated <- struct{}{}
		},
		OnSubmissionAlreadyRecorded: func() {
			log.Printf("answers already submitted for this session, nothing to do")
			activated <- struct{}{}
		},
		OnError: func(err error) {
			// One failed cycle is not fatal; the next tick runs regardless.
			log.Printf("poll: %v", err)
		},
	})
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-activated:
	case <-sig:
		log.Println("interrupted, stopping watcher...")
	case <-ctx.Done():
	}
	return nil
}

// buildService wires config, token source, durable store, and transport into
// a participation service. Redis backs the dedup set when configured;
// otherwise a state file under the user's home directory.
func buildService(ctx context.Context, configPath, baseURL string) (*app.ParticipationService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = cfg.Backend.BaseURL
	}

	var tokens transport.TokenSource
	if cfg.Auth.TokenPath != "" {
		tokens = auth.FileTokenSource{Path: cfg.Auth.TokenPath}
	}
	client := transport.NewClient(baseURL, cfg.Backend.Alternates, tokens)

	var kv app.KV
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = rediskv.NewKV(redisClient, 0)
	} else {
		statePath := cfg.State.Path
		if statePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			statePath = filepath.Join(home, ".scrutiny", "state.json")
		}
		kv = filekv.NewKV(statePath)
	}

	dedup, err := app.NewDedupTracker(ctx, kv)
	if err != nil {
		return nil, err
	}

	quizzes := app.NewQuizRepository(client, config.Duration(cfg.Quiz.TTL, 10*time.Minute))
	interval := config.Duration(cfg.Poll.Interval, 3*time.Second)
	return app.NewParticipationService(client, quizzes, dedup, interval), nil
}
