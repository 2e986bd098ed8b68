package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
)

type WebServerConfig struct {
	Extract *ExtractConfig
	Scheme  string
	Addr    net.IP
	Port    int
}

// RunWebServer prepares an Extractor and serves HTTP requests that launch runs until /stop is requested or the
// process is interrupted.
func RunWebServer(ctx context.Context, web *WebServerConfig) error {
	if web == nil || web.Extract == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if web.Port <= 0 {
		return errors.Errorf("invalid port %v", web.Port)
	}
	e, err := NewExtractor(ctx, web.Extract)
	if err != nil {
		return err
	}
	defer func() {
		_ = e.Close()
	}()
	log := e.Log()
	runs := NewRunRegistry(log, e.Run)
	// Start the web server.
	srv, chanStopServer := runServer(log, web, runs)
	// Block & wait for completion.
	return waitForServer(ctx, log, srv, chanStopServer, runs)
}

// newRouter returns the routes served by px serve.
func newRouter(log logger.Logger, runs *RunRegistry, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(GetHandlerHealth(log))
	r.Path("/stop").Methods(http.MethodGet).HandlerFunc(GetHandlerStopServer(log, runs, chanStopServer))
	r.Path("/runs").Methods(http.MethodPost).HandlerFunc(GetHandlerRunLaunch(log, runs))
	r.Path("/runs/{runId}").Methods(http.MethodGet).HandlerFunc(GetHandlerRunStatus(log, runs))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
func runServer(log logger.Logger, web *WebServerConfig, runs *RunRegistry) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         net.JoinHostPort(addrString(web.Addr), fmt.Sprint(web.Port)),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, runs, chanStopServer),
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Error(err)
				select {
				case chanStopServer <- "error":
				default:
				}
			}
		}
	}()
	scheme := web.Scheme
	if scheme == "" {
		scheme = "http"
	}
	log.Info(fmt.Sprintf("Listening on %v://%v", strings.ToLower(scheme), srv.Addr))
	return srv, chanStopServer
}

func addrString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func waitForServer(ctx context.Context, log logger.Logger, srv *http.Server, chanStopServer chan string, runs *RunRegistry) error {
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C).
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	defer signal.Stop(chanOS)
	select {
	case <-chanStopServer:
	case <-chanOS:
	case <-ctx.Done():
	}
	log.Info("Shutting down web server...")
	// Cancel the active run first so it stops before new datasets are started.
	runs.StopAll(30 * time.Second)
	wait := time.Second * 15
	sctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return srv.Shutdown(sctx) // waits for open connections until the deadline.
}
