// Package app wires configuration, storage and services into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syntexapply/internal/cache"
	"syntexapply/internal/client"
	"syntexapply/internal/config"
	"syntexapply/internal/flow"
	"syntexapply/internal/model"
	"syntexapply/internal/notify"
	"syntexapply/internal/repository"
	"syntexapply/internal/service"
	"syntexapply/internal/transport/rest"
	"syntexapply/internal/transport/rest/middleware"
	"syntexapply/internal/transport/ws"
)

const connectTimeout = 5 * time.Second

// App holds every long-lived dependency of the server
type App struct {
	Config        *config.Config
	Mongo         *mongo.Client
	Redis         *redis.Client
	Questionnaire *model.Questionnaire
	Submissions   *service.SubmissionService
	Applications  *service.ApplicationService
	WSHub         *ws.Hub
	RateLimiter   *middleware.RateLimiter

	stop chan struct{}
}

// New connects the optional backends and builds the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, stop: make(chan struct{})}

	var db *mongo.Database
	if cfg.MongoURI != "" {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		db = client.Database(cfg.MongoDB)
		log.WithField("database", cfg.MongoDB).Info("connected to MongoDB")
	}

	var sessions cache.SessionCache
	if cfg.RedisAddr != "" {
		rdb, err := connectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Redis = rdb
		sessions = cache.NewSessionCache(rdb, cfg.SessionTTL)
		log.Info("connected to Redis, sessions are shared")
	} else {
		sessions = cache.NewMemorySessionCache(cfg.SessionTTL)
		log.Warn("REDIS_URI not set, sessions are kept in memory")
	}

	var questionnaireRepo repository.QuestionnaireRepo
	recorders := []service.Recorder{repository.NewFileSubmissionLog(cfg.SubmissionsPath)}
	if db != nil {
		questionnaireRepo = repository.NewQuestionnaireRepo(db)
		recorders = append(recorders, repository.NewSubmissionRepo(db))
	}

	q, err := service.NewQuestionnaireService(questionnaireRepo, cfg.QuestionnaireID, cfg.QuestionsFile).Load(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Questionnaire = q

	notifiers, err := buildNotifiers(cfg, questionKeys(q))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Submissions = service.NewSubmissionService(recorders, notifiers)

	var submitter flow.Submitter = service.NewLocalSubmitter(a.Submissions)
	if cfg.SubmitEndpoint != "" {
		submitter = client.NewSubmitter(cfg.SubmitEndpoint, 30*time.Second)
		log.WithField("endpoint", cfg.SubmitEndpoint).Info("sessions submit to a remote endpoint")
	}

	a.Applications, err = service.NewApplicationService(
		q,
		sessions,
		service.NewAuthService(cfg.SessionSecret, cfg.SessionTTL),
		submitter,
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.WSHub = ws.NewHub()
	a.Applications.SetBroadcaster(a.WSHub)

	a.RateLimiter = middleware.NewRateLimiter(cfg.ApplyRatePerMinute)
	a.RateLimiter.StartCleanup(10*time.Minute, a.stop)

	log.WithFields(log.Fields{
		"questionnaire": q.ID,
		"questions":     q.Len(),
		"submissions":   cfg.SubmissionsPath,
		"notifiers":     len(notifiers),
	}).Info("application service ready")
	return a, nil
}

// Router returns the HTTP handler for the server
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		ApplicationService: a.Applications,
		SubmissionService:  a.Submissions,
		RateLimiter:        a.RateLimiter,
		WSHub:              a.WSHub,
		AllowedOrigins:     a.Config.CORSAllowedOrigins,
	})
}

// Close releases every connection held by the app
func (a *App) Close(ctx context.Context) error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	if a.WSHub != nil {
		a.WSHub.Close()
	}

	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}

func buildNotifiers(cfg *config.Config, order []string) ([]notify.Notifier, error) {
	var notifiers []notify.Notifier
	if cfg.Mail.Enabled() {
		n, err := notify.NewResendNotifier(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.To, cfg.Mail.Subject, order)
		if err != nil {
			return nil, fmt.Errorf("email relay: %w", err)
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Twilio.Enabled() {
		n, err := notify.NewTwilioRESTNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.To, order)
		if err != nil {
			return nil, fmt.Errorf("twilio relay: %w", err)
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		log.Warn("no reviewer relay configured, submissions are only recorded")
	}
	return notifiers, nil
}

func questionKeys(q *model.Questionnaire) []string {
	keys := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		keys[i] = question.Key
	}
	return keys
}
