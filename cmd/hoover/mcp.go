package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/mcp"
)

func newMcpCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the journal-query tool contract over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}
			store := mcp.New(cfg.Output.JournalDir)

			router := mux.NewRouter()
			router.HandleFunc("/tools/list_dates", jsonHandler(func(r *http.Request) (any, error) {
				return store.ListDates()
			}))
			router.HandleFunc("/tools/get_day", jsonHandler(func(r *http.Request) (any, error) {
				return store.GetDay(r.URL.Query().Get("date"))
			}))
			router.HandleFunc("/tools/get_date_range", jsonHandler(func(r *http.Request) (any, error) {
				return store.GetDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
			}))
			router.HandleFunc("/tools/search_transcriptions", jsonHandler(func(r *http.Request) (any, error) {
				q := r.URL.Query()
				return store.SearchTranscriptions(q.Get("query"), q.Get("from"), q.Get("to"))
			}))
			router.HandleFunc("/tools/get_speakers", jsonHandler(func(r *http.Request) (any, error) {
				return store.GetSpeakers()
			}))
			router.HandleFunc("/tools/get_summary", jsonHandler(func(r *http.Request) (any, error) {
				return store.GetSummary()
			}))

			srv := &http.Server{Addr: addr, Handler: router}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				<-ctx.Done()
				shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
				defer c()
				srv.Shutdown(shutdownCtx)
			}()
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8766", "address to serve the tool contract on")
	return cmd
}

func jsonHandler(fn func(*http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fn(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
