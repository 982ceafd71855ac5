package routes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/redis_client"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/rs/zerolog/log"
)

var reportsQueue rmq.Queue
var validate = validator.New()

// OpenReportsQueue opens the queue that ingested reports are published on.
// Must be called before the reports router serves traffic.
func OpenReportsQueue() error {
	queue, err := redis_client.QueueConnection.OpenQueue("reports-queue")
	if err != nil {
		return err
	}

	reportsQueue = queue
	return nil
}

func ReportsRouter(router fiber.Router) {
	router.Post("/", submitReport)
}

type reportSubmission struct {
	TrainRef    string `json:"train_ref" validate:"required"`
	DetectedTag string `json:"detected_tag"`

	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
	Latitude  *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,latitude"`

	HDOP       float64 `json:"hdop" validate:"gte=0"`
	Satellites int     `json:"satellites" validate:"gte=0"`

	RecordedAt time.Time `json:"recorded_at" validate:"required"`

	TestData bool `json:"test_data"`
}

func submitReport(c *fiber.Ctx) error {
	var submission reportSubmission
	if err := c.BodyParser(&submission); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Could not parse report submission",
		})
	}

	if err := validate.Struct(submission); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	report := rtdf.LocationReport{
		TrainRef:    submission.TrainRef,
		DetectedTag: submission.DetectedTag,
		HDOP:        submission.HDOP,
		Satellites:  submission.Satellites,
		RecordedAt:  submission.RecordedAt,
		TestData:    submission.TestData,
	}

	if submission.Longitude != nil && submission.Latitude != nil {
		report.Accuracy = rtdf.ClassifyAccuracy(submission.HDOP, submission.Satellites)

		// an invalid fix degrades to a tag-only observation
		if report.Accuracy != rtdf.AccuracyInvalid {
			location := rtdf.NewLocation(*submission.Longitude, *submission.Latitude)
			report.Location = &location
		}
	} else {
		report.Accuracy = rtdf.AccuracyInvalid
	}

	travelLogsCollection := database.GetCollection("travel_logs")
	if _, err := travelLogsCollection.InsertOne(context.Background(), report); err != nil {
		log.Error().Err(err).Str("train", report.TrainRef).Msg("Failed to record travel log")
	}

	if !report.TestData {
		reportJSON, _ := json.Marshal(report)
		if err := reportsQueue.PublishBytes(reportJSON); err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Could not queue report for evaluation",
			})
		}
	}

	c.SendStatus(fiber.StatusAccepted)
	return c.JSON(fiber.Map{
		"status":   "accepted",
		"accuracy": report.Accuracy,
	})
}
