package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"questline/internal/actions"
	"questline/internal/app"
	"questline/internal/config"
	"questline/internal/db"
	"questline/internal/domain"
	"questline/internal/engine"
	"questline/internal/migrate"
	"questline/internal/repo"
	"questline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "ql",
	Short: "Questline CLI",
	Long: `Questline tracks the objectives of an adventure game session.
Core concepts:
- Objective: a quest defined in the game config with an ordered list of states.
- State: each state is active, complete or fail; menus filter on that type.
- Player objectives: per-player objectives are kept apart while player switching is allowed.
- Selection: at most one tracked objective is highlighted at a time.
- Save slot: a named copy of the session; every command resumes from and writes back the autosave slot.
- Event log: diary of changes, view with 'ql log tail'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("QUESTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("game", "", "game id (overrides the stored default)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("game", rootCmd.PersistentFlags().Lookup("game"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(objectiveCmd())
	rootCmd.AddCommand(playerCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace database and start a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			start := func(ctx context.Context, e engine.Engine) error {
				if err := e.Start(ctx, viper.GetString("actor-id")); err != nil {
					return err
				}
				version, err := migrate.CurrentVersion(ctx, e.DB)
				if err != nil {
					return err
				}
				latest, err := migrate.Latest()
				if err != nil {
					return err
				}
				if version != latest {
					return fmt.Errorf("database schema is at v%d, want v%d", version, latest)
				}
				player, _ := e.CurrentPlayer()
				info := map[string]any{
					"game_id":        e.Config.Game.ID,
					"database":       db.Path(workspace),
					"schema_version": version,
					"player_id":      player,
					"objectives":     len(e.Catalog.List()),
				}
				if viper.GetBool("json") {
					return printJSON(info)
				}
				fmt.Printf("Initialized game %s in %s (schema v%d, %d objectives defined, player %s)\n",
					e.Config.Game.ID, db.Path(workspace), version, len(e.Catalog.List()), player)
				return nil
			}
			if filePath == "" {
				return withEngine(cmd.Context(), start)
			}
			cfg, err := config.FromFile(filePath)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return start(ctx, engine.New(r.DB, cfg))
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "YAML game config to import (defaults to questline.yml or a sample game)")
	return cmd
}

func objectiveCmd() *cobra.Command {
	obj := &cobra.Command{
		Use:     "objective",
		Aliases: []string{"obj"},
		Short:   "Track objectives",
	}
	obj.AddCommand(objectiveSetCmd())
	obj.AddCommand(objectiveGetCmd())
	obj.AddCommand(objectiveCancelCmd())
	obj.AddCommand(objectiveListCmd())
	obj.AddCommand(objectiveSelectCmd())
	obj.AddCommand(objectiveDeselectCmd())
	obj.AddCommand(objectiveSelectedCmd())
	obj.AddCommand(objectiveCatalogCmd())
	return obj
}

func objectiveSetCmd() *cobra.Command {
	var selectAfter bool
	cmd := &cobra.Command{
		Use:   "set <objective-id> <state-id>",
		Short: "Set an objective's current state, tracking it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectiveID, err := parseID(args[0], "objective id")
			if err != nil {
				return err
			}
			stateID, err := parseID(args[1], "state id")
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				st, err := e.SetObjectiveState(ctx, objectiveID, stateID, selectAfter, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printObjectives([]domain.ObjectiveStatus{st})
			})
		},
	}
	cmd.Flags().BoolVar(&selectAfter, "select", false, "select the objective afterwards")
	return cmd
}

func objectiveGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <objective-id>",
		Short: "Show a tracked objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectiveID, err := parseID(args[0], "objective id")
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), false, func(ctx context.Context, e engine.Engine) error {
				st, err := e.Objective(objectiveID)
				if err != nil {
					return err
				}
				return printObjectives([]domain.ObjectiveStatus{st})
			})
		},
	}
}

func objectiveCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <objective-id>",
		Short: "Stop tracking an objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectiveID, err := parseID(args[0], "objective id")
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				return e.CancelObjective(ctx, objectiveID, viper.GetString("actor-id"))
			})
		},
	}
}

func objectiveListCmd() *cobra.Command {
	var stateType, displayType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked objectives",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter engine.ObjectiveFilter
			if stateType != "" {
				t, err := domain.ParseStateType(stateType)
				if err != nil {
					return err
				}
				filter.StateType = t
			}
			if displayType != "" {
				d, err := domain.ParseDisplayType(displayType)
				if err != nil {
					return err
				}
				filter.DisplayType = d
			}
			return withSession(cmd.Context(), false, func(ctx context.Context, e engine.Engine) error {
				return printObjectives(e.Objectives(filter))
			})
		},
	}
	cmd.Flags().StringVar(&stateType, "state-type", "", "filter by state type (active, complete, fail)")
	cmd.Flags().StringVar(&displayType, "display-type", "", "filter by display type (all, incomplete_only, complete_only, failed_only)")
	return cmd
}

func objectiveSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <objective-id>",
		Short: "Select a tracked objective; an untracked id clears the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectiveID, err := parseID(args[0], "objective id")
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				st, ok, err := e.SelectObjective(ctx, objectiveID, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printSelection(st, ok)
			})
		},
	}
}

func objectiveDeselectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deselect",
		Short: "Clear the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				return e.DeselectObjective(ctx, viper.GetString("actor-id"))
			})
		},
	}
}

func objectiveSelectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selected",
		Short: "Show the selected objective",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), false, func(ctx context.Context, e engine.Engine) error {
				st, ok := e.Selected()
				return printSelection(st, ok)
			})
		},
	}
}

func objectiveCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List objective definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				defs := e.Catalog.List()
				if viper.GetBool("json") {
					return printJSON(defs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Objective", "Title", "Per player", "State", "Label", "Type"})
				for _, o := range defs {
					for _, s := range o.States {
						tw.AppendRow(table.Row{o.ID, o.Title, o.PerPlayer, s.ID, s.Label, s.Type})
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}

func playerCmd() *cobra.Command {
	p := &cobra.Command{Use: "player", Short: "Manage the active player"}
	p.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), false, func(ctx context.Context, e engine.Engine) error {
				player, _ := e.CurrentPlayer()
				return printJSONOrLine(map[string]any{
					"player_id":         player,
					"switching_allowed": e.Config.Settings.AllowsPlayerSwitching(),
				}, "active player: "+player)
			})
		},
	})
	p.AddCommand(&cobra.Command{
		Use:   "switch <player-id>",
		Short: "Make another configured player the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				if err := e.SwitchPlayer(ctx, args[0], viper.GetString("actor-id")); err != nil {
					return err
				}
				player, _ := e.CurrentPlayer()
				return printJSONOrLine(map[string]any{"player_id": player}, "active player: "+player)
			})
		},
	})
	return p
}

func saveCmd() *cobra.Command {
	s := &cobra.Command{Use: "save", Short: "Manage save slots"}
	s.AddCommand(saveCreateCmd())
	s.AddCommand(saveLoadCmd())
	s.AddCommand(saveListCmd())
	s.AddCommand(saveDeleteCmd())
	return s
}

func saveCreateCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "create [save-id]",
		Short: "Save the session to a slot (a new id is generated when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var saveID string
			if len(args) == 1 {
				saveID = args[0]
			}
			return withSession(cmd.Context(), false, func(ctx context.Context, e engine.Engine) error {
				md, err := e.SaveGame(ctx, saveID, label, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printSaves([]domain.MainData{md})
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "human readable label")
	return cmd
}

func saveLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <save-id>",
		Short: "Replace the session with a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				md, err := e.LoadGame(ctx, args[0], viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printSaves([]domain.MainData{md})
			})
		},
	}
}

func saveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListSaves(ctx, e.Config.Game.ID)
				if err != nil {
					return err
				}
				return printSaves(items)
			})
		},
	}
}

func saveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <save-id>",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == engine.AutosaveID {
				return fmt.Errorf("the %s slot is managed by ql; start over with ql init", engine.AutosaveID)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.Repo.DeleteSave(ctx, e.Config.Game.ID, args[0])
			})
		},
	}
}

func actionCmd() *cobra.Command {
	a := &cobra.Command{Use: "action", Short: "Run configured action lists"}
	a.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured action lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				names := make([]string, 0, len(e.Config.ActionLists))
				for name := range e.Config.ActionLists {
					names = append(names, name)
				}
				sort.Strings(names)
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"List", "#", "Action", "Objective"})
				summary := map[string][]string{}
				for _, name := range names {
					list, err := actions.FromConfig(name, e.Config.ActionLists[name])
					if err != nil {
						return err
					}
					for i, act := range list.Actions {
						label := act.Label(e.Catalog)
						summary[name] = append(summary[name], label)
						tw.AppendRow(table.Row{name, i, fmt.Sprintf("%T", act), label})
					}
				}
				if viper.GetBool("json") {
					return printJSON(summary)
				}
				tw.Render()
				return nil
			})
		},
	})
	a.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run an action list against the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), true, func(ctx context.Context, e engine.Engine) error {
				if err := e.RunActionList(ctx, args[0], viper.GetString("actor-id")); err != nil {
					return err
				}
				return printObjectives(e.Objectives(engine.ObjectiveFilter{}))
			})
		},
	})
	return a
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect game config",
		Long:  "Config is the game rulebook stored in the DB: game id, player settings, the objective catalog, action lists and webhooks. Import from questline.yml if desired.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	cfg.AddCommand(configImportCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return printJSON(e.Config)
			})
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate stored config and action lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.Config.Validate(); err != nil {
					return err
				}
				for name, entries := range e.Config.ActionLists {
					list, err := actions.FromConfig(name, entries)
					if err != nil {
						return err
					}
					if err := list.Validate(e.Catalog); err != nil {
						return err
					}
				}
				return nil
			})
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func configImportCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import game config from YAML into the DB",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if filePath == "" {
				cfg, err = config.Load(viper.GetString("workspace"))
			} else {
				cfg, err = config.FromFile(filePath)
			}
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if err := r.UpsertGameConfig(ctx, cfg.Game.ID, cfg); err != nil {
					return err
				}
				return printJSON(cfg)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to YAML config (defaults to questline.yml in the workspace)")
	return cmd
}

func logCmd() *cobra.Command {
	l := &cobra.Command{Use: "log", Short: "Inspect the event log"}
	l.AddCommand(logTailCmd())
	return l
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				evts, err := e.Repo.LatestEvents(ctx, n, e.Config.Game.ID, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "TS", "Type", "Entity", "Actor", "Payload"})
				for _, evt := range evts {
					tw.AppendRow(table.Row{evt.ID, evt.TS, evt.Type, evt.EntityKind + ":" + evt.EntityID, evt.ActorID, evt.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func tokenCmd() *cobra.Command {
	var perms []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token for --actor-id (needs QUESTLINE_JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := viper.GetString("jwt-secret")
			if secret == "" {
				return fmt.Errorf("QUESTLINE_JWT_SECRET is required")
			}
			token, err := server.SignToken(secret, viper.GetString("actor-id"), perms, ttl)
			if err != nil {
				return err
			}
			return printJSONOrLine(map[string]string{"token": token}, token)
		},
	}
	cmd.Flags().StringSliceVar(&perms, "permission", []string{server.PermAll}, "permissions to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var devLogin bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if _, err := e.Resume(ctx); err != nil {
					return err
				}
				authCfg := server.AuthConfig{
					JWTSecret:              viper.GetString("jwt-secret"),
					AllowLegacyActorHeader: viper.GetBool("allow-legacy-actor"),
					EnableDevLogin:         devLogin,
				}
				if authCfg.JWTSecret == "" {
					return fmt.Errorf("QUESTLINE_JWT_SECRET is required for bearer auth")
				}
				handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
				if err != nil {
					return err
				}
				server.StartWebhookDispatcher(ctx, e, log.Default())
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving Questline API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				// keep the session for the next CLI call
				return e.Checkpoint(context.Background(), viper.GetString("actor-id"))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&devLogin, "dev-login", false, "expose POST /auth/dev/login (DEV ONLY)")
	cmd.Flags().Bool("allow-legacy-actor", false, "accept the unauthenticated X-Actor-Id header")
	_ = viper.BindPFlag("allow-legacy-actor", cmd.Flags().Lookup("allow-legacy-actor"))
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.MigrateContext(ctx, conn); err != nil {
		return err
	}
	r := repo.Repo{DB: conn}
	_, cfg, err := app.ResolveGameAndConfig(ctx, workspace, viper.GetString("game"), r)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

// withSession resumes the autosave slot, runs fn and, when mutate is set,
// writes the session back so the next invocation sees the change.
func withSession(ctx context.Context, mutate bool, fn func(context.Context, engine.Engine) error) error {
	return withEngine(ctx, func(ctx context.Context, e engine.Engine) error {
		if _, err := e.Resume(ctx); err != nil {
			return err
		}
		if err := fn(ctx, e); err != nil {
			return err
		}
		if !mutate {
			return nil
		}
		return e.Checkpoint(ctx, viper.GetString("actor-id"))
	})
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.MigrateContext(ctx, conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func parseID(s, what string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func printObjectives(items []domain.ObjectiveStatus) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Scope", "State", "Label", "Type", "Selected"})
	for _, st := range items {
		label, typ := "?", ""
		if st.CurrentState != nil {
			label, typ = st.CurrentState.Label, string(st.CurrentState.Type)
		}
		sel := ""
		if st.Selected {
			sel = "*"
		}
		tw.AppendRow(table.Row{st.ObjectiveID, st.Title, st.Scope, st.CurrentStateID, label, typ, sel})
	}
	tw.Render()
	return nil
}

func printSelection(st domain.ObjectiveStatus, ok bool) error {
	if !ok {
		return printJSONOrLine(map[string]any{"selected": false}, "no objective selected")
	}
	return printObjectives([]domain.ObjectiveStatus{st})
}

func printSaves(items []domain.MainData) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Save", "Label", "Player", "Global objectives", "Selected", "Updated"})
	for _, md := range items {
		sel := "-"
		if md.SelectedObjectiveID >= 0 {
			sel = strconv.Itoa(md.SelectedObjectiveID)
		}
		tw.AppendRow(table.Row{md.SaveID, md.Label, md.CurrentPlayerID, md.GlobalObjectives, sel, md.UpdatedAt})
	}
	tw.Render()
	return nil
}

func printJSONOrLine(v any, line string) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	fmt.Println(line)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
