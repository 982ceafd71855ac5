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

func AlertsRouter(router fiber.Router) {
	router.Get("/", listAlerts)
}

func listAlerts(c *fiber.Ctx) error {
	count := c.QueryInt("count", 100)
	if count > 500 {
		count = 500
	}

	query := bson.M{}
	if recipientQuery := c.Query("recipient"); recipientQuery != "" {
		query["recipientref"] = recipientQuery
	}

	alertsCollection := database.GetCollection("alerts")

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(count))
	cursor, err := alertsCollection.Find(context.Background(), query, opts)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	alerts := []rtdf.Alert{}
	if err := cursor.All(context.Background(), &alerts); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	alertsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, alerts)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Alerts",
		})
	}

	return c.JSON(alertsReduced)
}
