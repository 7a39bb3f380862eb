package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/dekarrin/yarnspinner/server/serr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParamKeyID is the chi URL parameter name used for a session ID in every
// route that operates on one existing Session.
const URLParamKeyID = "id"

type EndpointFunc func(req *http.Request) EndpointResult

// Endpoint wraps ep as an http.HandlerFunc: it recovers panics into an
// HTTP-500, applies the unauth delay to 401/403/500 responses, and writes
// the EndpointResult.
func Endpoint(unauthDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		result := ep(req)

		if result.status == http.StatusUnauthorized || result.status == http.StatusForbidden || result.status == http.StatusInternalServerError {
			time.Sleep(unauthDelay)
		}

		result.writeResponse(w, req)
	}
}

// requireIDParam gets the session ID of the main entity being referenced in
// the URI. It panics if the key is not there or is not parsable, which
// Endpoint's deferred panicTo500 converts into an HTTP-500 - a caller must
// only use this from a route that includes {id} in its pattern.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, URLParamKeyID, uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// parseJSON decodes req's body into v, which must be a pointer. It leaves
// req.Body re-readable afterward since some middleware logs the raw body.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return nil
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		res := jsonErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\n%s", panicErr, string(debug.Stack())),
		)
		res.writeResponse(w, req)
	}
}

// API wires the session endpoints to a SessionManager. Its HTTP* methods are
// assigned as handlers on a chi router by Server.routes().
type API struct {
	Sessions    *SessionManager
	UnauthDelay time.Duration
}

func (api API) endpoint(ep EndpointFunc) http.HandlerFunc {
	return Endpoint(api.UnauthDelay, ep)
}

// createSessionRequest is the body of POST /sessions.
type createSessionRequest struct {
	// ManifestPath points at a .yarnproject.toml readable by the server
	// process; Files instead lists source file paths readable by the server
	// process. StartNode is passed on to SessionManager.Create.
	ManifestPath string   `json:"manifestPath"`
	Files        []string `json:"files"`
	StartNode    string   `json:"startNode"`
}

type sessionModel struct {
	ID    uuid.UUID `json:"id"`
	State string    `json:"state"`
}

// HTTPCreateSession returns a handler that loads a project and starts a new
// session goroutine for it, returning the new session's ID.
func (api API) HTTPCreateSession() http.HandlerFunc {
	return api.endpoint(api.epCreateSession)
}

func (api API) epCreateSession(req *http.Request) EndpointResult {
	var body createSessionRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "parse request: %v", err)
	}

	sess, err := api.Sessions.Create(body.ManifestPath, body.Files, body.StartNode)
	if err != nil {
		return jsonBadRequest(err.Error(), "create session: %v", err)
	}

	return jsonCreated(sessionModel{ID: sess.ID(), State: sess.State().String()}, "created session %s", sess.ID())
}

// HTTPDeleteSession returns a handler that stops and discards a session.
func (api API) HTTPDeleteSession() http.HandlerFunc {
	return api.endpoint(api.epDeleteSession)
}

func (api API) epDeleteSession(req *http.Request) EndpointResult {
	id := requireIDParam(req)

	if err := api.Sessions.Delete(id); err != nil {
		return jsonNotFound("delete session %s: %v", id, err)
	}
	return jsonNoContent("deleted session %s", id)
}

// eventModel is the wire shape of a yarn.Event.
type eventModel struct {
	Line         *lineModel    `json:"line,omitempty"`
	Command      *string       `json:"command,omitempty"`
	Options      []optionModel `json:"options,omitempty"`
	NodeComplete *string       `json:"nodeComplete,omitempty"`
	Stopped      bool          `json:"stopped"`
	Error        string        `json:"error,omitempty"`
}

type lineModel struct {
	Text string `json:"text"`
	Hash string `json:"hash,omitempty"`
}

type optionModel struct {
	Text      string `json:"text"`
	Hash      string `json:"hash,omitempty"`
	Available bool   `json:"available"`
}

func toEventModel(ev yarn.Event) eventModel {
	m := eventModel{}

	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	if ev.Line != nil {
		m.Line = &lineModel{Text: ev.Line.Text, Hash: ev.Line.Hash}
	}
	if ev.Command != nil {
		cmd := ev.Command.Text
		m.Command = &cmd
	}
	if ev.Options != nil {
		m.Options = make([]optionModel, len(ev.Options.Options))
		for i, opt := range ev.Options.Options {
			m.Options[i] = optionModel{Text: opt.Text, Hash: opt.Hash, Available: opt.Available}
		}
	}
	if ev.NodeComplete != nil {
		next := ev.NodeComplete.NextNode
		m.NodeComplete = &next
		m.Stopped = next == ""
	}
	return m
}

// HTTPAdvanceSession returns a handler that runs the session's VM forward by
// one event (starting it first if it is not yet running).
func (api API) HTTPAdvanceSession() http.HandlerFunc {
	return api.endpoint(api.epAdvanceSession)
}

func (api API) epAdvanceSession(req *http.Request) EndpointResult {
	id := requireIDParam(req)

	sess, err := api.Sessions.Get(id)
	if err != nil {
		return jsonNotFound("advance session %s: %v", id, err)
	}

	ev, err := sess.Advance(req.Context())
	if err != nil {
		return jsonBadRequest(err.Error(), "advance session %s: %v", id, err)
	}

	return jsonOK(toEventModel(ev), "advanced session %s", id)
}

// selectOptionRequest is the body of POST /sessions/{id}/select.
type selectOptionRequest struct {
	Index int `json:"index"`
}

// HTTPSelectOption returns a handler that resolves a pending option prompt.
func (api API) HTTPSelectOption() http.HandlerFunc {
	return api.endpoint(api.epSelectOption)
}

func (api API) epSelectOption(req *http.Request) EndpointResult {
	id := requireIDParam(req)

	var body selectOptionRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "parse request: %v", err)
	}

	sess, err := api.Sessions.Get(id)
	if err != nil {
		return jsonNotFound("select option for session %s: %v", id, err)
	}

	if err := sess.SelectOption(req.Context(), body.Index); err != nil {
		return jsonBadRequest(err.Error(), "select option for session %s: %v", id, err)
	}
	return jsonNoContent("session %s selected option %d", id, body.Index)
}

// HTTPGetSession returns a handler that reports a session's current state.
func (api API) HTTPGetSession() http.HandlerFunc {
	return api.endpoint(api.epGetSession)
}

func (api API) epGetSession(req *http.Request) EndpointResult {
	id := requireIDParam(req)

	sess, err := api.Sessions.Get(id)
	if err != nil {
		return jsonNotFound("get session %s: %v", id, err)
	}

	return jsonOK(sessionModel{ID: sess.ID(), State: sess.State().String()}, "got session %s", id)
}
