// Package main announces new attachment uploads to the artisan topic.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/kylejryan/artisan-request-portal/internal/awsutil"
	"github.com/kylejryan/artisan-request-portal/internal/config"
	"github.com/kylejryan/artisan-request-portal/internal/logging"
	"github.com/kylejryan/artisan-request-portal/internal/notify"
)

// main loads configuration before the first event and starts the Lambda handler.
func main() {
	env := config.MustLoadNotifier()
	logger := logging.New(env.LogLevel, "json", os.Stdout)

	var pub notify.Publisher
	switch env.Backend {
	case config.BackendAMQP:
		p, err := notify.NewAMQPPublisher(env.RabbitMQURL)
		if err != nil {
			log.Fatal(err)
		}
		defer p.Close()
		pub = p
	default:
		cfg, _, err := awsutil.Load(context.Background(), env.Region)
		if err != nil {
			log.Fatal(err)
		}
		pub = &notify.SNSPublisher{Client: sns.NewFromConfig(cfg)}
	}

	h := notify.NewHandler(pub, env.TopicARN, logger)
	lambda.Start(h.Handle)
}
