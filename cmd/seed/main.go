package main

import (
	"context"
	"flag"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syntexapply/internal/config"
	"syntexapply/internal/logging"
	"syntexapply/internal/model"
	"syntexapply/internal/questionnaire"
	"syntexapply/internal/repository"
	"syntexapply/internal/service"
)

// seed stores a questionnaire in MongoDB so the server can pick it up without a redeploy
func main() {
	file := flag.String("file", "", "YAML questionnaire to store (default: built-in questionnaire)")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	var q *model.Questionnaire
	if *file != "" {
		q, err = questionnaire.LoadFile(*file)
	} else {
		q, err = questionnaire.Default()
	}
	if err != nil {
		log.WithError(err).Fatal("failed to load questionnaire")
	}

	repo := repository.NewQuestionnaireRepo(client.Database(cfg.MongoDB))
	svc := service.NewQuestionnaireService(repo, cfg.QuestionnaireID, "")
	if err := svc.Seed(ctx, q); err != nil {
		log.WithError(err).Fatal("failed to store questionnaire")
	}

	log.WithFields(log.Fields{
		"questionnaire": cfg.QuestionnaireID,
		"questions":     q.Len(),
		"database":      cfg.MongoDB,
	}).Info("questionnaire seeded")
}
