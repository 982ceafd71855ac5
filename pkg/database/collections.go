package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createTrainsIndexes()
	createRoutesIndexes()
	createTravelLogsIndexes()
	createAlertsIndexes()
}

func createTrainsIndexes() {
	trainsCollection := GetCollection("trains")
	trainsIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastknownlocation.coordinates", Value: "2d"}},
		},
	}

	opts := options.CreateIndexes()
	_, err := trainsCollection.Indexes().CreateMany(context.Background(), trainsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createRoutesIndexes() {
	routesCollection := GetCollection("routes")
	routesIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "assignedtrainref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := routesCollection.Indexes().CreateMany(context.Background(), routesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createTravelLogsIndexes() {
	travelLogsCollection := GetCollection("travel_logs")
	travelLogsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainref", Value: 1}, {Key: "recordedat", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
		},
		{
			Keys: bson.D{{Key: "recordedat", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := travelLogsCollection.Indexes().CreateMany(context.Background(), travelLogsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createAlertsIndexes() {
	alertsCollection := GetCollection("alerts")
	alertsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipientref", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := alertsCollection.Indexes().CreateMany(context.Background(), alertsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
