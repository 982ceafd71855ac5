package stores

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/rs/zerolog/log"
)

// MongoAlertStore persists alert records in the alerts collection. Insert
// failures are retried with exponential backoff before giving up.
type MongoAlertStore struct{}

func NewMongoAlertStore() *MongoAlertStore {
	return &MongoAlertStore{}
}

func (s *MongoAlertStore) Emit(ctx context.Context, alerts []rtdf.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	alertsCollection := database.GetCollection("alerts")

	documents := make([]interface{}, len(alerts))
	for i := range alerts {
		documents[i] = alerts[i]
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		_, insertErr := alertsCollection.InsertMany(ctx, documents)
		if insertErr != nil {
			log.Warn().Err(insertErr).Int("count", len(documents)).Msg("Retrying alert insert")
		}
		return insertErr
	}, retryBackoff)

	return err
}
