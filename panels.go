package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/materials"
)

var errMissingProjectID = errors.New("project id is required")

// decodeBody reads a JSON request body into v. An empty body leaves v as is.
func decodeBody(req *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(req.Body, maxCommandBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// queue runs fn on the session and answers 202 on success.
func (a *api) queue(rw http.ResponseWriter, req *http.Request, fn func(*editor.Session) error) {
	if err := a.driver.Call(req.Context(), fn); err != nil {
		a.fail(rw, err)
		return
	}
	rw.WriteHeader(http.StatusAccepted)
}

// Project lifecycle.

type projectRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type projectResponse struct {
	Project string `json:"project"`
}

func (a *api) project(rw http.ResponseWriter, req *http.Request, fn func(*editor.Session, projectRequest) error) {
	var body projectRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	var resp projectResponse
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		if err := fn(s, body); err != nil {
			return err
		}
		resp.Project = s.Project()
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusAccepted, resp)
}

func (a *api) saveProject(rw http.ResponseWriter, req *http.Request) {
	a.project(rw, req, func(s *editor.Session, body projectRequest) error {
		return s.Save(body.Name)
	})
}

func (a *api) saveProjectAs(rw http.ResponseWriter, req *http.Request) {
	a.project(rw, req, func(s *editor.Session, body projectRequest) error {
		return s.SaveAs(body.Name)
	})
}

func (a *api) loadProject(rw http.ResponseWriter, req *http.Request) {
	a.project(rw, req, func(s *editor.Session, body projectRequest) error {
		if strings.TrimSpace(body.ID) == "" {
			return errMissingProjectID
		}
		return s.LoadProject(body.ID, body.Name)
	})
}

func (a *api) undo(rw http.ResponseWriter, req *http.Request) {
	a.queue(rw, req, (*editor.Session).Undo)
}

func (a *api) redo(rw http.ResponseWriter, req *http.Request) {
	a.queue(rw, req, (*editor.Session).Redo)
}

type helpEntry struct {
	Name        string `json:"name"`
	Syntax      string `json:"syntax"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

func (a *api) help(rw http.ResponseWriter, req *http.Request) {
	term := req.URL.Query().Get("q")
	var entries []helpEntry
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		for _, spec := range s.Help(term) {
			entries = append(entries, helpEntry{
				Name:        spec.Name,
				Syntax:      spec.Syntax,
				Description: spec.Description,
				Example:     spec.Example,
			})
		}
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	if entries == nil {
		entries = []helpEntry{}
	}
	writeJSON(rw, http.StatusOK, entries)
}

// Points table.

type moveRequest struct {
	X json.Number `json:"x"`
	Y json.Number `json:"y"`
	Z json.Number `json:"z"`
}

type colorRequest struct {
	Color string `json:"color"`
}

func pointID(rw http.ResponseWriter, req *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (a *api) movePoint(rw http.ResponseWriter, req *http.Request) {
	id, ok := pointID(rw, req)
	if !ok {
		return
	}
	var body moveRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.ProposeMove(id, body.X.String(), body.Y.String(), body.Z.String())
	})
}

func (a *api) colorPoint(rw http.ResponseWriter, req *http.Request) {
	id, ok := pointID(rw, req)
	if !ok {
		return
	}
	var body colorRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.ProposeColor(id, body.Color)
	})
}

// Materials panel.

// materialPatch carries the fields to change. Numbers may be sent as JSON
// numbers or numeric strings.
type materialPatch struct {
	Name      *string      `json:"name"`
	Color     *string      `json:"color"`
	Thickness *json.Number `json:"thickness"`
	Price     *json.Number `json:"price"`
}

func (a *api) addMaterial(rw http.ResponseWriter, req *http.Request) {
	var m materials.Material
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		m = s.AddMaterial()
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusCreated, m)
}

func (a *api) editMaterial(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var patch materialPatch
	if err := decodeBody(req, &patch); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	var m materials.Material
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		if _, ok := s.Catalog().Get(id); !ok {
			return materials.ErrUnknownMaterial
		}
		if patch.Name != nil {
			if err := s.RenameMaterial(id, *patch.Name); err != nil {
				return err
			}
		}
		if patch.Color != nil {
			if err := s.SetMaterialColor(id, *patch.Color); err != nil {
				return err
			}
		}
		if patch.Thickness != nil {
			if err := s.SetMaterialThickness(id, patch.Thickness.String()); err != nil {
				return err
			}
		}
		if patch.Price != nil {
			if err := s.SetMaterialPrice(id, patch.Price.String()); err != nil {
				return err
			}
		}
		m, _ = s.Catalog().Get(id)
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, m)
}

func (a *api) toggleBuild(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var build editor.BuildView
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		if err := s.ToggleBuild(id); err != nil {
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

func (a *api) disarmBuild(rw http.ResponseWriter, req *http.Request) {
	err := a.driver.Call(req.Context(), func(s *editor.Session) error {
		s.DisarmBuild()
		return nil
	})
	if err != nil {
		a.fail(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

// Collections panel.

type collectionRequest struct {
	Name string `json:"name"`
	IDs  string `json:"ids"`
}

func (a *api) createCollection(rw http.ResponseWriter, req *http.Request) {
	var body collectionRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.CreateCollection(body.Name)
	})
}

func (a *api) renameCollection(rw http.ResponseWriter, req *http.Request) {
	from := mux.Vars(req)["name"]
	var body collectionRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.RenameCollection(from, body.Name)
	})
}

func (a *api) addToCollection(rw http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	var body collectionRequest
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.AddToCollection(name, body.IDs)
	})
}

func (a *api) removeFromCollection(rw http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	id, ok := pointID(rw, req)
	if !ok {
		return
	}
	a.queue(rw, req, func(s *editor.Session) error {
		return s.RemoveFromCollection(name, id)
	})
}
