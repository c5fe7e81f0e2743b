package httpapi

import "net/http"

// NewMux wires every route. Handler builds the full middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	admin := AdminOnly(d.AdminToken)

	// Health
	hh := HealthHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Results
	rh := ResultsHandler{Matcher: d.Matcher}
	mux.HandleFunc("/grants/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Grants,
	}))
	mux.HandleFunc("/vcs/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.VCs,
	}))
	mux.HandleFunc("/mentors/results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Mentors,
	}))

	// Tags
	th := TagsHandler{Tags: d.Tags}
	mux.HandleFunc("/tags", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.List,
	}))

	// Submissions
	sh := SubmissionsHandler{Store: d.Submissions, Hub: d.Hub}
	mux.HandleFunc("/submissions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(http.HandlerFunc(sh.List)).ServeHTTP,
	}))
	mux.HandleFunc("/submissions/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.CreateByPath, // expects /submissions/{kind}
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Apply:       d.Apply,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: admin(http.HandlerFunc(ch.Put)).ServeHTTP,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// Handler is the mux wrapped in the standard middleware chain. CORS origins
// come from the live config.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d),
		RequestID,
		Recover,
		AccessLog,
		Cors(d.corsOrigins),
		RateLimit(d.Limiter),
	)
}
