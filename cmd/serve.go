package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FintorAI/LG-RackandStack/internal/model"
	"github.com/FintorAI/LG-RackandStack/internal/store"
	"github.com/FintorAI/LG-RackandStack/internal/workflow"
	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

var servePort int

// serveEnv holds the long-lived dependencies shared by all requests.
type serveEnv struct {
	client esfuse.Client
	table  *model.FieldTable
	st     store.Store
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client, err := initESFuse()
		if err != nil {
			return err
		}

		table, err := loadFieldTable()
		if err != nil {
			return err
		}

		env := &serveEnv{client: client, table: table, st: st}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownServer(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownGrace bounds how long in-flight requests may drain on shutdown.
const shutdownGrace = 15 * time.Second

// shutdownServer drains the server on a fresh context; the signal context
// is already cancelled by the time shutdown starts.
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newRouter builds the HTTP API: health, synchronous workflow invocation,
// and run-history lookups.
func newRouter(env *serveEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/workflow/run", env.handleRun)

	r.Get("/runs", env.handleListRuns)
	r.Get("/runs/{id}", env.handleGetRun)

	return r
}

func (env *serveEnv) handleRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	in, err := model.ParseRunInput(body)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	run, err := env.st.CreateRun(ctx, *in)
	if err != nil {
		zap.L().Error("create run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create run failed")
		return
	}

	runner := workflow.NewRunner(env.client, env.table, workflow.Options{
		RunID:          run.ID,
		DocConcurrency: cfg.Workflow.DocConcurrency,
		ArtifactDir:    cfg.Workflow.ArtifactDir,
		SubmissionType: cfg.Submission.Type,
		AutoLock:       cfg.Submission.AutoLock,
	})

	report, err := runner.Run(ctx, in)
	if err != nil {
		zap.L().Error("workflow run failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		if failErr := env.st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Error("mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		writeError(w, http.StatusInternalServerError, "workflow run failed")
		return
	}

	if err := env.st.CompleteRun(ctx, run.ID, report); err != nil {
		zap.L().Error("store run report failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, struct {
		RunID  string        `json:"run_id"`
		Report *model.Report `json:"report"`
	}{RunID: run.ID, Report: report})
}

func (env *serveEnv) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := env.st.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (env *serveEnv) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
		LoanID: r.URL.Query().Get("loan_id"),
		Limit:  50,
	}
	runs, err := env.st.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
