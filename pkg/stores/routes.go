package stores

import (
	"context"
	"errors"

	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRouteStore reads route records from the routes collection.
type MongoRouteStore struct{}

func NewMongoRouteStore() *MongoRouteStore {
	return &MongoRouteStore{}
}

func (s *MongoRouteStore) Route(ctx context.Context, id string) (*rtdf.Route, error) {
	routesCollection := database.GetCollection("routes")

	var route rtdf.Route
	err := routesCollection.FindOne(ctx, bson.M{"primaryidentifier": id}).Decode(&route)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &route, nil
}
