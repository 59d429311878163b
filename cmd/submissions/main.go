package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syntexapply/internal/config"
	"syntexapply/internal/logging"
	"syntexapply/internal/repository"
)

// submissions prints recorded applications as JSON lines, from the file log
// or from the Mongo mirror when -mongo is set
func main() {
	fromMongo := flag.Bool("mongo", false, "read from the MongoDB mirror instead of the file log")
	since := flag.Duration("since", 0, "only show submissions newer than this (mongo only), e.g. 72h")
	id := flag.String("id", "", "show a single submission by id (mongo only)")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()
	out := json.NewEncoder(os.Stdout)

	if !*fromMongo {
		records, err := repository.NewFileSubmissionLog(cfg.SubmissionsPath).List(ctx)
		if err != nil {
			log.WithError(err).Fatal("failed to read submission log")
		}
		for _, rec := range records {
			out.Encode(rec)
		}
		return
	}

	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI must be set")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	repo := repository.NewSubmissionRepo(client.Database(cfg.MongoDB))
	if *id != "" {
		s, err := repo.GetByID(ctx, *id)
		if err != nil {
			log.WithError(err).Fatal("failed to load submission")
		}
		if s == nil {
			log.WithField("submission", *id).Fatal("submission not found")
		}
		out.Encode(s)
		return
	}

	var from time.Time
	if *since > 0 {
		from = time.Now().Add(-*since).UTC()
	}
	list, err := repo.ListSince(ctx, from)
	if err != nil {
		log.WithError(err).Fatal("failed to list submissions")
	}
	for _, s := range list {
		out.Encode(s)
	}
}
