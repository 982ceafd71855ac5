package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"go.mongodb.org/mongo-driver/bson"
)

func RoutesRouter(router fiber.Router) {
	router.Get("/:identifier", getRoute)
}

func getRoute(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	routesCollection := database.GetCollection("routes")
	var route *rtdf.Route
	routesCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&route)

	if route == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Route matching Route Identifier",
		})
	}

	routeReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, route)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Route",
		})
	}

	return c.JSON(routeReduced)
}
