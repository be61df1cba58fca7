package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/function61/aws-to-slack/pkg/dispatch"
	"github.com/function61/gokit/httputils"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/taskrunner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const maxEventSize = 1024 * 1024

func newRestApi(a *service, logger *log.Logger) http.Handler {
	logl := logex.Levels(logger)

	mux := httputils.NewMethodMux()

	mux.POST.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxEventSize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		report, err := a.dispatcher.Process(r.Context(), raw)
		if err != nil {
			logl.Error.Printf("POST /events: %v", err)
		}

		switch {
		case errors.Is(err, dispatch.ErrEmptyPayload):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case report == nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		case err != nil: // Slack unreachable. report tells which records made it
			w.WriteHeader(http.StatusBadGateway)
			handleJsonOutput(w, ingestResultFrom(report))
		default:
			handleJsonOutput(w, ingestResultFrom(report))
		}
	})

	mux.GET.HandleFunc("/interpreters", func(w http.ResponseWriter, r *http.Request) {
		handleJsonOutput(w, interpreterInfos(a.engine.Interpreters()))
	})

	mux.GET.Handle("/metrics", promhttp.Handler())

	return mux
}

// fallback when config is broken, so the API tells why instead of the Lambda crash looping
func newErrorApi(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	})
}

func handleJsonOutput(w http.ResponseWriter, output interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(output); err != nil {
		panic(err)
	}
}

func restApiCliEntry() *cobra.Command {
	addr := ":80"

	cmd := &cobra.Command{
		Use:   "restapi",
		Short: "Start REST API (used mainly for dev/testing)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			exitIfError(runStandaloneRestApi(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				addr,
				logger))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "", addr, "Address to listen on")

	return cmd
}

func runStandaloneRestApi(ctx context.Context, addr string, logger *log.Logger) error {
	conf, err := configFromEnv(true)
	if err != nil {
		return err
	}

	a, err := newService(conf, nil, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: newRestApi(a, logex.Prefix("restapi", logger)),
	}

	tasks := taskrunner.New(ctx, logger)

	tasks.Start("listener "+srv.Addr, func(_ context.Context, _ string) error {
		return httputils.RemoveGracefulServerClosedError(srv.ListenAndServe())
	})

	tasks.Start("listenershutdowner", httputils.ServerShutdownTask(srv))

	return tasks.Wait()
}
