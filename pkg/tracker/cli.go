package tracker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/railwatch/railwatch/pkg/database"
	"github.com/railwatch/railwatch/pkg/elastic_client"
	"github.com/railwatch/railwatch/pkg/redis_client"
	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/railwatch/railwatch/pkg/stores"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Tracking engine ingests location reports and raises alerts",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the tracking engine",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					orchestrator, err := newDefaultOrchestrator()
					if err != nil {
						return err
					}

					StartConsumers(orchestrator)

					StartSweeper(orchestrator)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "sweep",
				Usage: "run a single sweep over the active fleet and exit",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					orchestrator, err := newDefaultOrchestrator()
					if err != nil {
						return err
					}

					if err := orchestrator.SweepActiveVehicles(context.Background()); err != nil {
						return err
					}

					elastic_client.WaitUntilQueueEmpty()

					return nil
				},
			},
			{
				Name:  "testevaluate",
				Usage: "evaluate a single synthetic report and dump the result",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					orchestrator, err := newDefaultOrchestrator()
					if err != nil {
						return err
					}

					location := rtdf.NewLocation(-0.141944, 51.514797)
					report := &rtdf.LocationReport{
						TrainRef:   c.Args().First(),
						Location:   &location,
						RecordedAt: time.Now(),
					}

					result, err := orchestrator.EvaluateReport(context.Background(), report)
					pretty.Println(result, err)

					return nil
				},
			},
		},
	}
}

func newDefaultOrchestrator() (*Orchestrator, error) {
	config, err := GetTrackerConfig()
	if err != nil {
		return nil, err
	}

	trainStore := stores.NewMongoTrainStore()
	routeStore := NewCachedRouteStore(stores.NewMongoRouteStore())
	alertStore := stores.NewMongoAlertStore()

	return NewOrchestrator(config, trainStore, routeStore, alertStore, SystemClock{}), nil
}
