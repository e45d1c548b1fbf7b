package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"scirel.ai/deppath/api"
	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/types"
	"scirel.ai/deppath/worker"
)

const pipelineStartMaxRetries = 5

var withAPI bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction and ranking REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ppln, err := loadPipeline()
		if err != nil {
			return err
		}
		return listen(ppln)
	},
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Consume article tasks from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		ppln, err := loadPipeline()
		if err != nil {
			return err
		}
		if withAPI {
			go func() {
				err := listen(ppln)
				mainLogger.Fatal().Caller().Err(err).Msg("REST API stopped with error")
			}()
		}

		mainLogger.Info().Msg("Start dependency path worker")
		for {
			rmqWorker, err := worker.New(ppln)
			if err != nil {
				mainLogger.Err(err).Msg("Could not initialize RMQ worker")
				return err
			}
			if err = rmqWorker.StartWorker(); err != nil {
				mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
				time.Sleep(5 * time.Second)
			}
		}
	},
}

func init() {
	workCmd.Flags().BoolVar(&withAPI, "api", false, "Also serve the REST API")
}

func loadPipeline() (pipeline.Pipeline, error) {
	var err error
	for retry := 0; retry < pipelineStartMaxRetries; retry++ {
		var ppln pipeline.Pipeline
		if ppln, err = pipeline.New(cfg); err == nil {
			mainLogger.Info().Str("config_name", cfg.Name).Msg("Pipeline loaded")
			return ppln, nil
		}
		if errors.Is(err, types.ErrInvalidConfig) {
			return nil, err
		}
		mainLogger.Err(err).Msg("Failed to start dependency path pipeline. Retrying in 5 sec")
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("could not start pipeline after %d retries: %w", pipelineStartMaxRetries, err)
}

func listen(ppln pipeline.Pipeline) error {
	service := &api.Service{Pipeline: ppln, Config: cfg}
	host := fmt.Sprintf(":%s", env.RestAPIPort)
	mainLogger.Info().Msgf("REST API on %s", host)
	return http.ListenAndServe(host, service.Routes())
}
