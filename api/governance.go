package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/status"
	"github.com/rony4d/go-bridge-relay/voting"
)

// Voter casts governance votes. Each call ends in a definite outcome.
type Voter interface {
	StartVoting(ctx context.Context) voting.Outcome
	StartKeygen(ctx context.Context) voting.Outcome
	CancelKeygen(ctx context.Context) voting.Outcome
	AddValidator(ctx context.Context, validator string) voting.Outcome
	RemoveValidator(ctx context.Context, validator string) voting.Outcome
	ChangeThreshold(ctx context.Context, threshold string) voting.Outcome
}

// Snapshotter assembles the /info document.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*status.Info, error)
}

type Governance struct {
	voter   Voter
	status  Snapshotter
	metrics http.Handler
	origins []string
	log     logrus.FieldLogger
}

// NewGovernance builds the governance surface. metrics may be nil, in
// which case /metrics is not served. An empty origins list allows any
// origin.
func NewGovernance(v Voter, s Snapshotter, metrics http.Handler, origins []string, log logrus.FieldLogger) *Governance {
	return &Governance{
		voter:   v,
		status:  s,
		metrics: metrics,
		origins: origins,
		log:     log,
	}
}

// Handler routes the governance surface behind CORS.
func (g *Governance) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(g.log))

	vote := r.PathPrefix("/vote").Methods(http.MethodGet).Subrouter()
	vote.HandleFunc("/startVoting", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.StartVoting(r.Context())
	}))
	vote.HandleFunc("/startKeygen", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.StartKeygen(r.Context())
	}))
	vote.HandleFunc("/cancelKeygen", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.CancelKeygen(r.Context())
	}))
	vote.HandleFunc("/addValidator/{validator}", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.AddValidator(r.Context(), mux.Vars(r)["validator"])
	}))
	vote.HandleFunc("/removeValidator/{validator}", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.RemoveValidator(r.Context(), mux.Vars(r)["validator"])
	}))
	vote.HandleFunc("/changeThreshold/{threshold}", g.outcome(func(r *http.Request) voting.Outcome {
		return g.voter.ChangeThreshold(r.Context(), mux.Vars(r)["threshold"])
	}))

	r.HandleFunc("/info", g.info).Methods(http.MethodGet)
	if g.metrics != nil {
		r.Handle("/metrics", g.metrics).Methods(http.MethodGet)
	}

	origins := g.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// outcome writes "Voted\n" or "Failed\n", always with status 200.
func (g *Governance) outcome(vote func(r *http.Request) voting.Outcome) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := vote(r)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, res.String())
	}
}

func (g *Governance) info(w http.ResponseWriter, r *http.Request) {
	info, err := g.status.Snapshot(r.Context())
	if err != nil {
		writeError(w, g.log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
