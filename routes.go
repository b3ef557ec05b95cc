package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/materials"
	"github.com/Kristof1273/3D-builder/timeline"
)

const maxCommandBytes = 64 << 10

func setCors(origin string, h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			return
		}
		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// confirmationRequired is returned for destructive requests sent without
// confirm=true.
type confirmationRequired struct {
	prompt string
}

func (e confirmationRequired) Error() string {
	return "confirmation required: " + e.prompt
}

type api struct {
	driver editor.Driver
	logger *zap.Logger
}

func newRouter(driver editor.Driver, broker *Broker, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &api{driver: driver, logger: logger}
	router := mux.NewRouter()

	router.Handle("/health", healthController{broker: broker})
	router.Handle("/events", broker).Methods(http.MethodGet)
	router.HandleFunc("/world", a.world).Methods(http.MethodGet)
	router.HandleFunc("/bom", a.bom).Methods(http.MethodGet)
	router.HandleFunc("/command", a.command).Methods(http.MethodPost)
	router.HandleFunc("/points/{id:[0-9]+}/click", a.click).Methods(http.MethodPost)
	router.HandleFunc("/points/{id:[0-9]+}", a.deletePoint).Methods(http.MethodDelete)
	router.HandleFunc("/clips/{id}", a.deleteClip).Methods(http.MethodDelete)
	router.HandleFunc("/project/new", a.newProject).Methods(http.MethodPost)
	router.HandleFunc("/project/save", a.saveProject).Methods(http.MethodPost)
	router.HandleFunc("/project/save-as", a.saveProjectAs).Methods(http.MethodPost)
	router.HandleFunc("/project/load", a.loadProject).Methods(http.MethodPost)
	router.HandleFunc("/undo", a.undo).Methods(http.MethodPost)
	router.HandleFunc("/redo", a.redo).Methods(http.MethodPost)
	router.HandleFunc("/help", a.help).Methods(http.MethodGet)

	router.HandleFunc("/points/{id:[0-9]+}/move", a.movePoint).Methods(http.MethodPost)
	router.HandleFunc("/points/{id:[0-9]+}/color", a.colorPoint).Methods(http.MethodPost)

	router.HandleFunc("/materials", a.addMaterial).Methods(http.MethodPost)
	router.HandleFunc("/materials/{id}", a.editMaterial).Methods(http.MethodPatch)
	router.HandleFunc("/materials/{id}/build", a.toggleBuild).Methods(http.MethodPost)
	router.HandleFunc("/build", a.disarmBuild).Methods(http.MethodDelete)

	router.HandleFunc("/collections", a.createCollection).Methods(http.MethodPost)
	router.HandleFunc("/collections/{name}", a.renameCollection).Methods(http.MethodPut)
	router.HandleFunc("/collections/{name}/points", a.addToCollection).Methods(http.MethodPost)
	router.HandleFunc("/collections/{name}/points/{id:[0-9]+}", a.removeFromCollection).Methods(http.MethodDelete)

	return router
}

func (a *api) view(ctx context.Context) (editor.View, error) {
	var v editor.View
	err := a.driver.Call(ctx, func(s *editor.Session) error {
		v = s.View()
		return nil
	})
	return v, err
}

func (a *api) world(rw http.ResponseWriter, req *http.Request) {
	v, err := a.view(req.Context())
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, v.World)
}

func (a *api) bom(rw http.ResponseWriter, req *http.Request) {
	v, err := a.view(req.Context())
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, v.BOM)
}

type commandResponse struct {
	Wire  string `json:"wire"`
	Local bool   `json:"local"`
}

func (a *api) command(rw http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxCommandBytes))
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	line := strings.TrimSpace(string(body))
	if line == "" {
		http.Error(rw, "empty command", http.StatusBadRequest)
		return
	}

	var resp commandResponse
	err = a.driver.Call(req.Context(), func(s *editor.Session) error {
		cmd, err := s.Submit(line)
		if cmd != nil {
			resp = commandResponse{Wire: cmd.Wire(), Local: command.IsLocal(cmd)}
		}
		return err
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusAccepted, resp)
}

func (a *api) click(rw http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	var build editor.BuildView
	err = a.driver.Call(req.Context(), func(s *editor.Session) error {
		if err := s.ClickPoint(id); err != nil {
			return err
		}
		build = s.View().Build
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, build)
}

func confirmed(req *http.Request) bool {
	ok, _ := strconv.ParseBool(req.URL.Query().Get("confirm"))
	return ok
}

// answer accepts the confirmation s just raised when the caller confirmed,
// and declines it otherwise.
func answer(s *editor.Session, conf command.Confirmation, accept bool) error {
	if !accept {
		_ = s.Confirm(false)
		return confirmationRequired{prompt: conf.Prompt}
	}
	return s.Confirm(true)
}

func (a *api) deletePoint(rw http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	accept := confirmed(req)
	err = a.driver.Call(req.Context(), func(s *editor.Session) error {
		if _, ok := s.World().Point(id); !ok {
			return editor.ErrUnknownPoint
		}
		return answer(s, s.DeletePoint(id), accept)
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	rw.WriteHeader(http.StatusAccepted)
}

func (a *api) deleteClip(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	accept := confirmed(req)
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		conf, err := s.DeleteClip(id)
		if err != nil {
			return err
		}
		return answer(s, conf, accept)
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	rw.WriteHeader(http.StatusAccepted)
}

func (a *api) newProject(rw http.ResponseWriter, req *http.Request) {
	accept := confirmed(req)
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		return answer(s, s.NewProject(), accept)
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	rw.WriteHeader(http.StatusAccepted)
}

type errorResponse struct {
	Error  string `json:"error"`
	Prompt string `json:"prompt,omitempty"`
}

func (a *api) fail(rw http.ResponseWriter, err error) {
	var confirm confirmationRequired
	switch {
	case errors.As(err, &confirm):
		writeJSON(rw, http.StatusPreconditionRequired, errorResponse{Error: err.Error(), Prompt: confirm.prompt})
	case errors.Is(err, command.ErrOutboxFull), errors.Is(err, editor.ErrStopped):
		writeJSON(rw, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, editor.ErrUnknownPoint), errors.Is(err, timeline.ErrUnknownClip), errors.Is(err, materials.ErrUnknownMaterial):
		writeJSON(rw, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, materials.ErrDuplicateMaterial):
		writeJSON(rw, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.logger.Debug("request abandoned", zap.Error(err))
	default:
		writeJSON(rw, http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
