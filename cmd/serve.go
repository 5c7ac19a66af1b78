package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/charity-prospector/internal/model"
	"github.com/sells-group/charity-prospector/internal/pipeline"
	"github.com/sells-group/charity-prospector/internal/report"
	"github.com/sells-group/charity-prospector/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		pipe := initPipeline(st, pipeline.LogObserver{})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, pipe),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(st store.Store, pipe *pipeline.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), store.RunFilter{
			Status: model.RunStatus(req.URL.Query().Get("status")),
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	r.Get("/api/runs/{id}/report", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		if run.Result == nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "run has no result yet"})
			return
		}

		wb := report.NewWorkbook(run.Result.Qualified, run.Result.Contacts, run.Params)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Filename()))
		if err := wb.Write(w); err != nil {
			zap.L().Error("report download failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	})

	r.Post("/api/search", func(w http.ResponseWriter, req *http.Request) {
		params := cfg.Search.Params()
		if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		run, err := st.CreateRun(req.Context(), params)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run failed"})
			return
		}

		// Runs are long (hundreds of rate-limited fetches); execute in the
		// background and let clients poll /api/runs/{id}.
		go executeRun(st, pipe, run.ID, params)

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "accepted",
			"run_id": run.ID,
		})
	})

	return r
}

func executeRun(st store.Store, pipe *pipeline.Pipeline, runID string, params model.SearchParams) {
	ctx := context.Background()

	if err := st.UpdateRunStatus(ctx, runID, model.RunStatusSearching); err != nil {
		zap.L().Error("run status update failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	result, err := pipe.Run(ctx, params)
	if err != nil {
		zap.L().Error("background run failed", zap.String("run_id", runID), zap.Error(err))
		_ = st.UpdateRunStatus(ctx, runID, model.RunStatusFailed)
		return
	}

	if len(result.Qualified) > 0 {
		_ = st.UpdateRunStatus(ctx, runID, model.RunStatusContacts)
		contacts, err := pipe.Contacts(ctx, result.Qualified)
		if err != nil {
			zap.L().Error("background contacts pass failed", zap.String("run_id", runID), zap.Error(err))
			_ = st.UpdateRunStatus(ctx, runID, model.RunStatusFailed)
			return
		}
		result.Contacts = contacts
	}

	if err := st.UpdateRunResult(ctx, runID, result); err != nil {
		zap.L().Error("run result update failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	zap.L().Info("background run complete",
		zap.String("run_id", runID),
		zap.Int("qualified", len(result.Qualified)),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
