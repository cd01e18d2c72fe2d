// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package routes implements the handlers of the admin API.

Handlers return an error instead of writing failures themselves;
middleware.CatchError turns it into a JSON error body.
*/
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/core/audit"
	"github.com/Dhousefe/aCisDsec/core/command"
	"github.com/Dhousefe/aCisDsec/core/pipeline"
	"github.com/Dhousefe/aCisDsec/core/session"
	"github.com/Dhousefe/aCisDsec/server/request_context"
)

var (
	errUnknownProfile = errors.New("unknown profile")
	errNothingToDo    = errors.New("either markup or path is required")
)

// Admin holds the components the admin API operates on.
type Admin struct {
	Pipeline *pipeline.Pipeline
	Sessions *session.Manager
	Commands *command.Handler
}

// Healthz reports that the process is serving.
func (a *Admin) Healthz(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statsResponse struct {
	Version   string         `json:"version"`
	Revision  string         `json:"revision"`
	StartedAt string         `json:"started_at"`
	Locales   []string       `json:"locales"`
	Actors    int            `json:"actors"`
	Pipeline  pipeline.Stats `json:"pipeline"`
}

// Stats reports pipeline counters, cache usage and the loaded locales.
func (a *Admin) Stats(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, statsResponse{
		Version:   config.BuildVersion,
		Revision:  config.Global.Build.Revision(),
		StartedAt: config.Global.Instance.StartingTime,
		Locales:   a.Pipeline.Dictionaries().Locales(),
		Actors:    a.Sessions.Len(),
		Pipeline:  a.Pipeline.Stats(),
	})
}

// ClearCache drops every cached template.
func (a *Admin) ClearCache(w http.ResponseWriter, r *http.Request) error {
	span := a.span(r, audit.ToCache)
	_ = span.Begin(r.Context())

	cleared := a.Pipeline.ClearCache()

	span.End()
	span.Log()

	return writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

type reloadResponse struct {
	Locales []string `json:"locales"`
	Cleared int      `json:"cleared"`
}

// ReloadDictionaries re-reads every loaded dictionary file and then clears
// the cache, so no resolution observes a template built from stale entries.
func (a *Admin) ReloadDictionaries(w http.ResponseWriter, r *http.Request) error {
	span := a.span(r, audit.ToDictionary)
	_ = span.Begin(r.Context())

	dicts := a.Pipeline.Dictionaries()
	dicts.ReloadAll()
	cleared := a.Pipeline.ClearCache()

	span.End()
	span.Log()

	return writeJSON(w, http.StatusOK, reloadResponse{Locales: dicts.Locales(), Cleared: cleared})
}

type resolveRequest struct {
	// Profile defaults to the NPC dialog.
	Profile string `json:"profile"`
	Markup  string `json:"markup"`
	// Path is a resource path. With Markup it is only the provenance;
	// without it the file is read.
	Path     string `json:"path"`
	EntityID int    `json:"entity_id"`
	// Actor selects the locale and translation flag of a session.
	Actor *int `json:"actor"`
	// Locale and Enabled override the session values.
	Locale  string `json:"locale"`
	Enabled *bool  `json:"enabled"`
}

type resolveResponse struct {
	Locale string `json:"locale"`
	HTML   string `json:"html"`
}

// Resolve runs markup or a resource file through the pipeline, for previews.
func (a *Admin) Resolve(w http.ResponseWriter, r *http.Request) error {
	var req resolveRequest
	if err := readJSON(w, r, &req); err != nil {
		return err
	}

	profile := pipeline.NpcDialog

	if req.Profile != "" {
		var ok bool

		profile, ok = pipeline.ProfileByName(req.Profile)
		if !ok {
			return NewStatusError(http.StatusBadRequest, fmt.Errorf("%w: %q", errUnknownProfile, req.Profile))
		}
	}

	state := a.Sessions.Defaults()
	if req.Actor != nil {
		state = a.Sessions.Get(*req.Actor)
	}

	if req.Locale != "" {
		lang, country, _ := strings.Cut(strings.ReplaceAll(req.Locale, "-", "_"), "_")

		locale, err := session.ParseLocale(lang, country)
		if err != nil {
			return NewStatusError(http.StatusBadRequest, err)
		}

		state.Locale = locale
	}

	if req.Enabled != nil {
		state.Enabled = *req.Enabled
	}

	var out string

	switch {
	case req.Markup != "":
		out = a.Pipeline.ResolveAs(profile, req.Markup, req.EntityID, state.Locale, state.Enabled, req.Path)
	case req.Path != "":
		out = a.Pipeline.ResolveFile(profile, req.Path, req.EntityID, state.Locale, state.Enabled)
	default:
		return NewStatusError(http.StatusBadRequest, errNothingToDo)
	}

	return writeJSON(w, http.StatusOK, resolveResponse{Locale: state.Locale, HTML: out})
}

// ActorState reports the translation settings of one actor.
func (a *Admin) ActorState(w http.ResponseWriter, r *http.Request) error {
	id, err := actorID(r)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, a.Sessions.Get(id))
}

type commandRequest struct {
	Line string `json:"line"`
}

type commandResponse struct {
	Reply string        `json:"reply"`
	State session.State `json:"state"`
}

// RunCommand runs a command line such as ".setlang es" on behalf of an actor.
func (a *Admin) RunCommand(w http.ResponseWriter, r *http.Request) error {
	id, err := actorID(r)
	if err != nil {
		return err
	}

	var req commandRequest
	if err := readJSON(w, r, &req); err != nil {
		return err
	}

	reply, err := a.Commands.Dispatch(r.Context(), id, req.Line)
	if errors.Is(err, command.ErrUnknownCommand) {
		return NewStatusError(http.StatusNotFound, err)
	} else if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, commandResponse{Reply: reply, State: a.Sessions.Get(id)})
}

func (a *Admin) span(r *http.Request, dest audit.TrafficDestination) audit.Span {
	return audit.Span{
		Destination: dest,
		RequestID:   request_context.FromRequest(r).RequestID,
		Method:      r.Method,
		URL:         r.URL.String(),
	}
}
