package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/railwatch/railwatch/pkg/redis_client"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/rs/zerolog/log"
)

const numConsumers = 5
const batchSize = 200

const reportsQueueName = "reports-queue"

// StartConsumers opens the reports queue and runs the background batch
// consumers that feed the orchestrator.
func StartConsumers(orchestrator *Orchestrator) {
	log.Info().Msg("Starting report consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(reportsQueueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startReportConsumer(queue, i, orchestrator)
	}
}

func startReportConsumer(queue rmq.Queue, id int, orchestrator *Orchestrator) {
	log.Info().Msgf("Starting report consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("reports-queue-%d", id), batchSize, 2*time.Second, NewBatchConsumer(id, orchestrator)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id           int
	orchestrator *Orchestrator
}

func NewBatchConsumer(id int, orchestrator *Orchestrator) *BatchConsumer {
	return &BatchConsumer{id: id, orchestrator: orchestrator}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var report *rtdf.LocationReport
		if err := json.Unmarshal([]byte(payload), &report); err != nil || report == nil {
			log.Error().Err(err).Msg("Failed to decode location report")
			continue
		}

		if _, err := consumer.orchestrator.EvaluateReport(context.Background(), report); err != nil {
			log.Error().Err(err).Str("train", report.TrainRef).Msg("Failed to evaluate location report")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume location report")
		}
	}
}
