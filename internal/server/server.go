package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"questline/internal/actions"
	"questline/internal/domain"
	"questline/internal/engine"
	"questline/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"objective 7 not tracked: not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true" example:"{\"objective_id\":7}"`
}

// apiError models the required error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Questline API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine.Session == nil || cfg.Engine.Config == nil {
		return nil, errors.New("server: engine session and config are required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the requested envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Questline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerCatalog(group, cfg.Engine)
	registerObjectives(group, cfg.Engine)
	registerSelection(group, cfg.Engine)
	registerPlayers(group, cfg.Engine)
	registerSaves(group, cfg.Engine)
	registerActions(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerMe(group)
	if cfg.Auth.EnableDevLogin {
		registerDevAuth(group, cfg.Auth)
	}
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, engine.ErrUnknownObjective):
		return newAPIError(http.StatusNotFound, "unknown_objective", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrPlayerSwitchingDenied):
		return newAPIError(http.StatusConflict, "player_switching_denied", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "not defined"), strings.Contains(lowered, "has no state"):
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", msg, nil)
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	open := map[string]bool{
		path.Join("/", basePath, "health"):         true,
		path.Join("/", basePath, "auth/dev/login"): true,
	}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if open[route] {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Questline API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}

var writeErrors = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusUnprocessableEntity,
	http.StatusInternalServerError,
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCatalog(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-catalog",
		Method:      http.MethodGet,
		Path:        "/catalog",
		Summary:     "Objective definitions",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body CatalogResponse `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CatalogResponse `json:"body"`
		}{Body: CatalogResponse{
			GameID:     e.Config.Game.ID,
			Objectives: nonNilSlice(e.Catalog.List()),
		}}, nil
	})
}

type objectivePath struct {
	ObjectiveID int `path:"objective_id" minimum:"0"`
}

func registerObjectives(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-objectives",
		Method:      http.MethodGet,
		Path:        "/objectives",
		Summary:     "List tracked objectives",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		StateType   string `query:"state_type" doc:"active, complete or fail"`
		DisplayType string `query:"display_type" doc:"all, incomplete_only, complete_only or failed_only"`
	}) (*struct {
		Body ObjectiveList `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		var filter engine.ObjectiveFilter
		if input.StateType != "" {
			t, err := domain.ParseStateType(input.StateType)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), map[string]any{"state_type": input.StateType})
			}
			filter.StateType = t
		}
		if input.DisplayType != "" {
			d, err := domain.ParseDisplayType(input.DisplayType)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), map[string]any{"display_type": input.DisplayType})
			}
			filter.DisplayType = d
		}
		return &struct {
			Body ObjectiveList `json:"body"`
		}{Body: ObjectiveList{Items: e.Objectives(filter)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-objective",
		Method:      http.MethodGet,
		Path:        "/objectives/{objective_id}",
		Summary:     "Get a tracked objective",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *objectivePath) (*struct {
		Body domain.ObjectiveStatus `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		st, err := e.Objective(input.ObjectiveID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ObjectiveStatus `json:"body"`
		}{Body: st}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-objective-state",
		Method:      http.MethodPut,
		Path:        "/objectives/{objective_id}/state",
		Summary:     "Set an objective's current state",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *struct {
		ObjectiveID int             `path:"objective_id" minimum:"0"`
		Body        SetStateRequest `json:"body"`
	}) (*struct {
		Body domain.ObjectiveStatus `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		st, err := e.SetObjectiveState(ctx, input.ObjectiveID, input.Body.StateID, input.Body.SelectAfter, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ObjectiveStatus `json:"body"`
		}{Body: st}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "cancel-objective",
		Method:        http.MethodDelete,
		Path:          "/objectives/{objective_id}",
		Summary:       "Stop tracking an objective",
		DefaultStatus: http.StatusNoContent,
		Errors:        writeErrors,
	}, func(ctx context.Context, input *objectivePath) (*struct{}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.CancelObjective(ctx, input.ObjectiveID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-objective",
		Method:      http.MethodPost,
		Path:        "/objectives/{objective_id}/select",
		Summary:     "Select an objective; an untracked ID clears the selection",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *objectivePath) (*struct {
		Body SelectionResponse `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		st, ok, err := e.SelectObjective(ctx, input.ObjectiveID, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SelectionResponse `json:"body"`
		}{Body: selectionResponse(st, ok)}, nil
	})
}

func selectionResponse(st domain.ObjectiveStatus, ok bool) SelectionResponse {
	if !ok {
		return SelectionResponse{}
	}
	return SelectionResponse{Selected: true, Objective: &st}
}

func registerSelection(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-selection",
		Method:      http.MethodGet,
		Path:        "/selection",
		Summary:     "Selected objective",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body SelectionResponse `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		st, ok := e.Selected()
		return &struct {
			Body SelectionResponse `json:"body"`
		}{Body: selectionResponse(st, ok)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "clear-selection",
		Method:        http.MethodDelete,
		Path:          "/selection",
		Summary:       "Deselect the selected objective",
		DefaultStatus: http.StatusNoContent,
		Errors:        writeErrors,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.DeselectObjective(ctx, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerPlayers(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-players",
		Method:      http.MethodGet,
		Path:        "/players",
		Summary:     "Current and configured players",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body PlayerResponse `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		current, saveID := e.CurrentPlayer()
		return &struct {
			Body PlayerResponse `json:"body"`
		}{Body: playerResponse(e.Config, current, saveID)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "switch-player",
		Method:      http.MethodPost,
		Path:        "/players/{player_id}/switch",
		Summary:     "Make a player the active one",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *struct {
		PlayerID string `path:"player_id"`
	}) (*struct {
		Body PlayerResponse `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.SwitchPlayer(ctx, input.PlayerID, actorID); err != nil {
			return nil, handleError(err)
		}
		current, saveID := e.CurrentPlayer()
		return &struct {
			Body PlayerResponse `json:"body"`
		}{Body: playerResponse(e.Config, current, saveID)}, nil
	})
}

func registerSaves(api huma.API, e engine.Engine) {
	type savePath struct {
		SaveID string `path:"save_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-saves",
		Method:      http.MethodGet,
		Path:        "/saves",
		Summary:     "List save slots",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body SaveList `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListSaves(ctx, e.Config.Game.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SaveList `json:"body"`
		}{Body: SaveList{Items: nonNilSlice(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-game",
		Method:      http.MethodPost,
		Path:        "/saves/{save_id}",
		Summary:     "Write the session to a save slot",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *struct {
		SaveID string       `path:"save_id"`
		Body   *SaveRequest `json:"body,omitempty" required:"false"`
	}) (*struct {
		Body domain.MainData `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermSavesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		var label string
		if input.Body != nil {
			label = input.Body.Label
		}
		md, err := e.SaveGame(ctx, input.SaveID, label, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.MainData `json:"body"`
		}{Body: md}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "load-game",
		Method:      http.MethodPost,
		Path:        "/saves/{save_id}/load",
		Summary:     "Replace the session with a save slot",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *savePath) (*struct {
		Body domain.MainData `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermSavesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		md, err := e.LoadGame(ctx, input.SaveID, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.MainData `json:"body"`
		}{Body: md}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-save",
		Method:        http.MethodDelete,
		Path:          "/saves/{save_id}",
		Summary:       "Delete a save slot",
		DefaultStatus: http.StatusNoContent,
		Errors:        writeErrors,
	}, func(ctx context.Context, input *savePath) (*struct{}, error) {
		if _, err := requirePermission(ctx, PermSavesWrite); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteSave(ctx, e.Config.Game.ID, input.SaveID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "new-game",
		Method:        http.MethodPost,
		Path:          "/game/new",
		Summary:       "Discard all objective data",
		DefaultStatus: http.StatusNoContent,
		Errors:        writeErrors,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		actorID, err := requirePermission(ctx, PermSavesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.NewGame(ctx, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerActions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-action-lists",
		Method:      http.MethodGet,
		Path:        "/actions",
		Summary:     "Configured action lists",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ActionListSummary `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermObjectivesRead); err != nil {
			return nil, handleError(err)
		}
		names := make([]string, 0, len(e.Config.ActionLists))
		for name := range e.Config.ActionLists {
			names = append(names, name)
		}
		sort.Strings(names)
		res := make([]ActionListSummary, 0, len(names))
		for _, name := range names {
			list, err := actions.FromConfig(name, e.Config.ActionLists[name])
			if err != nil {
				return nil, handleError(err)
			}
			summary := ActionListSummary{Name: name, Actions: []string{}}
			for _, a := range list.Actions {
				summary.Actions = append(summary.Actions, a.Label(e.Catalog))
			}
			res = append(res, summary)
		}
		return &struct {
			Body []ActionListSummary `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "run-action-list",
		Method:      http.MethodPost,
		Path:        "/actions/{name}/run",
		Summary:     "Run a configured action list",
		Errors:      writeErrors,
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct {
		Body ObjectiveList `json:"body"`
	}, error) {
		actorID, err := requirePermission(ctx, PermObjectivesWrite)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.RunActionList(ctx, input.Name, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ObjectiveList `json:"body"`
		}{Body: ObjectiveList{Items: e.Objectives(engine.ObjectiveFilter{})}}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind" doc:"objective, game, save, player or action_list"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
		Cursor     string `query:"cursor"`
	}) (*struct {
		Body paginatedEvents `json:"body"`
	}, error) {
		if _, err := requirePermission(ctx, PermEventsRead); err != nil {
			return nil, handleError(err)
		}
		limit := normalizeLimit(input.Limit)
		var cursorID int64
		if input.Cursor != "" {
			parsed, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid cursor", map[string]any{"cursor": input.Cursor})
			}
			cursorID = parsed
		}
		items, err := e.Repo.LatestEventsFrom(ctx, limit+1, cursorID, e.Config.Game.ID, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		resp := paginatedEvents{Items: []EventResponse{}}
		if len(items) > limit {
			resp.NextCursor = strconv.FormatInt(items[limit-1].ID, 10)
			items = items[:limit]
		}
		for _, evt := range items {
			resp.Items = append(resp.Items, eventResponse(evt))
		}
		return &struct {
			Body paginatedEvents `json:"body"`
		}{Body: resp}, nil
	})
}

func registerMe(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current principal",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body WhoAmIResponse `json:"body"`
	}, error) {
		principal, authErr := principalFromRequest(ctx)
		if authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body WhoAmIResponse `json:"body"`
		}{Body: WhoAmIResponse{
			ActorID:     principal.ActorID,
			Permissions: nonNilSlice(principal.Permissions),
			Source:      principal.Source,
		}}, nil
	})
}

func registerDevAuth(api huma.API, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "dev-login",
		Method:      http.MethodPost,
		Path:        "/auth/dev/login",
		Summary:     "DEV ONLY: mint a JWT for local testing",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body DevLoginRequest `json:"body"`
	}) (*struct {
		Body DevLoginResponse `json:"body"`
	}, error) {
		actor := strings.TrimSpace(input.Body.ActorID)
		if actor == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "actor_id is required", nil)
		}
		perms := input.Body.Permissions
		if len(perms) == 0 {
			perms = []string{PermAll}
		}
		token, err := SignToken(authCfg.JWTSecret, actor, perms, 0)
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return &struct {
			Body DevLoginResponse `json:"body"`
		}{Body: DevLoginResponse{Token: token}}, nil
	})
}

func normalizeLimit(in int) int {
	if in <= 0 {
		return 50
	}
	if in > 200 {
		return 200
	}
	return in
}
