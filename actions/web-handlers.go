package actions

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := errors.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

func (w *WebServerResponse) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "ok":
		*w = Okay
	case "error":
		*w = Error
	default:
		return errors.Errorf("unhandled WebServerResponse value %q", s)
	}
	return nil
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRunLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId"`
}

type ResponseRunStatus struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Run     *RunView          `json:"run,omitempty"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerStopServer cancels any active run and then signals the server to shut down.
func GetHandlerStopServer(log logger.Logger, runs *RunRegistry, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := runs.ActiveRunId(); ok {
			log.Info("stop requested while run ", id, " is active")
		}
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // a stop is already pending.
		}
	}
}

func GetHandlerRunLaunch(log logger.Logger, runs *RunRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := runs.Start()
		if errors.Is(err, ErrRunInProgress) {
			log.Info("HTTP request to launch a run while run ", id, " is in progress")
			respond(log, w, http.StatusConflict, ResponseRunLaunch{Status: Error, Message: err.Error(), RunId: id})
			return
		} else if err != nil {
			log.Error(err)
			respond(log, w, http.StatusInternalServerError, ResponseRunLaunch{Status: Error, Message: err.Error()})
			return
		}
		log.Info("launched run ", id)
		respond(log, w, http.StatusAccepted, ResponseRunLaunch{Status: Okay, Message: "run launched", RunId: id})
	}
}

func GetHandlerRunStatus(log logger.Logger, runs *RunRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		v, ok := runs.Get(id)
		if !ok { // if the run doesn't exist...
			log.Info("HTTP request for status of run ", id, " that doesn't exist.")
			respond(log, w, http.StatusNotFound, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		respond(log, w, http.StatusOK, ResponseRunStatus{Status: Okay, Run: &v})
	}
}

// respond will marshal i to JSON and write it to w with the given status code.
func respond(log logger.Logger, w http.ResponseWriter, code int, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(j); err != nil {
		log.Error(err)
	}
}
