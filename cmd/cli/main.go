package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"codearena/internal/cli/config"
	httpclient "codearena/internal/cli/http"
	"codearena/internal/cli/repl"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override judge API base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.API.Timeout = *timeout
	}

	client := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout)

	// Submit needs direct storage and broker access; the read-only commands
	// work without either.
	var objStorage storage.ObjectStorage
	if cfg.MinIO.Endpoint != "" {
		objStorage, err = storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			fmt.Fprintf(os.Stderr, "init minio failed: %v\n", err)
			return
		}
	}
	var producer mq.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		queue, err := mq.NewKafkaQueue(mq.KafkaConfig{
			Brokers:     cfg.Kafka.Brokers,
			ClientID:    "codearena-cli",
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "init kafka failed: %v\n", err)
			return
		}
		defer func() {
			_ = queue.Close()
		}()
		producer = queue
	}

	session := repl.New(client, objStorage, producer, cfg)
	if err := session.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
