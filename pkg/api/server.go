package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/railwatch/railwatch/pkg/api/routes"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.ReportsRouter(group.Group("/reports"))

	routes.TrainsRouter(group.Group("/trains"))

	routes.RoutesRouter(group.Group("/routes"))

	routes.AlertsRouter(group.Group("/alerts"))

	return webApp.Listen(listen)
}
