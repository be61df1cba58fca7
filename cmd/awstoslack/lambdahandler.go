package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/function61/aws-to-slack/pkg/lambdautils"
	"github.com/function61/gokit/logex"
)

func lambdaHandler() {
	logger := logex.StandardLogger()
	logl := logex.Levels(logger)

	conf, err := configFromEnv(true)
	var a *service
	if err == nil {
		a, err = newService(conf, nil, logger)
	}

	var restApi http.Handler
	if err != nil {
		logl.Error.Printf("startup: %v", err)
		restApi = newErrorApi(err)
	} else {
		restApi = newRestApi(a, logex.Prefix("restapi", logger))
	}

	handler := func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error) {
		switch event := polymorphicEvent.(type) {
		case *lambdautils.Notification:
			if a == nil {
				return nil, err // startup error. fail so the trigger retries once config is fixed
			}

			logl.Debug.Printf("%s trigger", event.Trigger)

			_, processErr := a.dispatcher.Process(ctx, event.Raw)
			return nil, processErr
		case *events.APIGatewayProxyRequest:
			return lambdautils.ServeApiGatewayProxyRequestUsingHttpHandler(
				ctx,
				event,
				restApi)
		default:
			return nil, errors.New("cannot identify type of request")
		}
	}

	lambda.StartHandler(lambdautils.NewMultiEventTypeHandler(handler))
}
