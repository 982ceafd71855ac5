package stores

import (
	"context"
	"errors"
	"time"

	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTrainStore reads and updates train records in the trains collection.
type MongoTrainStore struct{}

func NewMongoTrainStore() *MongoTrainStore {
	return &MongoTrainStore{}
}

func (s *MongoTrainStore) Train(ctx context.Context, id string) (*rtdf.Train, error) {
	trainsCollection := database.GetCollection("trains")

	var train rtdf.Train
	err := trainsCollection.FindOne(ctx, bson.M{"primaryidentifier": id}).Decode(&train)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &train, nil
}

func (s *MongoTrainStore) ActiveTrains(ctx context.Context) ([]*rtdf.Train, error) {
	trainsCollection := database.GetCollection("trains")

	cursor, err := trainsCollection.Find(ctx, bson.M{
		"status": bson.M{"$in": bson.A{rtdf.TrainStatusRunning, rtdf.TrainStatusStoppedInService}},
	})
	if err != nil {
		return nil, err
	}

	var trains []*rtdf.Train
	if err := cursor.All(ctx, &trains); err != nil {
		return nil, err
	}

	return trains, nil
}

func (s *MongoTrainStore) UpdateTrainStatus(ctx context.Context, id string, status rtdf.TrainStatus) error {
	trainsCollection := database.GetCollection("trains")

	_, err := trainsCollection.UpdateOne(ctx, bson.M{"primaryidentifier": id}, bson.M{
		"$set": bson.M{
			"status":               status,
			"modificationdatetime": time.Now(),
		},
	})

	return err
}

func (s *MongoTrainStore) UpdateTrainLocation(ctx context.Context, id string, location *rtdf.Location, reportedAt time.Time) error {
	trainsCollection := database.GetCollection("trains")

	_, err := trainsCollection.UpdateOne(ctx, bson.M{"primaryidentifier": id}, bson.M{
		"$set": bson.M{
			"lastknownlocation":    location,
			"lastreportedat":       reportedAt,
			"modificationdatetime": time.Now(),
		},
	})

	return err
}
