package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TrainsRouter(router fiber.Router) {
	router.Get("/", listTrains)
	router.Get("/:identifier", getTrain)
	router.Get("/:identifier/travel_log", getTrainTravelLog)
}

func listTrains(c *fiber.Ctx) error {
	query := bson.M{}
	if statusQuery := c.Query("status"); statusQuery != "" {
		query["status"] = statusQuery
	}

	trainsCollection := database.GetCollection("trains")
	cursor, err := trainsCollection.Find(context.Background(), query)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	trains := []rtdf.Train{}
	if err := cursor.All(context.Background(), &trains); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	trainsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, trains)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Trains",
		})
	}

	return c.JSON(trainsReduced)
}

func getTrain(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	trainsCollection := database.GetCollection("trains")
	var train *rtdf.Train
	trainsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&train)

	if train == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Train matching Train Identifier",
		})
	}

	trainReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, train)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Train",
		})
	}

	return c.JSON(trainReduced)
}

func getTrainTravelLog(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	count := c.QueryInt("count", 100)
	if count > 500 {
		count = 500
	}

	travelLogsCollection := database.GetCollection("travel_logs")

	opts := options.Find().SetSort(bson.D{{Key: "recordedat", Value: -1}}).SetLimit(int64(count))
	cursor, err := travelLogsCollection.Find(context.Background(), bson.M{"trainref": identifier}, opts)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reports := []rtdf.LocationReport{}
	if err := cursor.All(context.Background(), &reports); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reportsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, reports)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Travel Log",
		})
	}

	return c.JSON(reportsReduced)
}
