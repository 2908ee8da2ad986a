package handlers

import "net/http"

// Router groups the handlers mounted by the API server
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Playback   *PlaybackHandler
	Progress   *ProgressHandler
	Health     *HealthHandler
}

// Handler registers every route on a new mux and wraps it with request
// logging
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	m := rt.Middleware

	mux.HandleFunc("GET /healthz", rt.Health.Healthz)

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/password-reset", m.RateLimit(rt.Auth.RequestPasswordReset))
	mux.HandleFunc("POST /api/auth/password-reset/confirm", m.RateLimit(rt.Auth.ResetPassword))
	mux.HandleFunc("POST /api/auth/logout", m.RequireAuth(rt.Auth.Logout))

	// Account routes
	mux.HandleFunc("GET /api/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("PUT /api/me", m.RequireAuth(rt.Auth.UpdateProfile))
	mux.HandleFunc("POST /api/me/email", m.RateLimit(m.RequireAuth(rt.Auth.ChangeEmail)))
	mux.HandleFunc("POST /api/me/password", m.RateLimit(m.RequireAuth(rt.Auth.ChangePassword)))

	// Catalog routes
	mux.HandleFunc("GET /api/categories", m.RequireAuth(rt.Catalog.Categories))
	mux.HandleFunc("GET /api/categories/{id}/videos", m.RequireAuth(rt.Catalog.CategoryVideos))
	mux.HandleFunc("GET /api/videos/{id}", m.RequireAuth(rt.Catalog.Video))
	mux.HandleFunc("GET /api/videos/{id}/check", m.RequireAuth(rt.Catalog.CheckVideo))

	// Playback routes
	mux.HandleFunc("POST /api/playback/{videoId}/start", m.RequireAuth(rt.Playback.Start))
	mux.HandleFunc("POST /api/playback/{videoId}/ready", m.RequireAuth(rt.Playback.Ready))
	mux.HandleFunc("POST /api/playback/{videoId}/position", m.RequireAuth(rt.Playback.Position))
	mux.HandleFunc("POST /api/playback/{videoId}/pause", m.RequireAuth(rt.Playback.Pause))
	mux.HandleFunc("POST /api/playback/{videoId}/complete", m.RequireAuth(rt.Playback.Complete))
	mux.HandleFunc("DELETE /api/playback/{videoId}", m.RequireAuth(rt.Playback.Stop))
	mux.HandleFunc("GET /api/playback/{videoId}", m.RequireAuth(rt.Playback.State))

	// Progress routes
	mux.HandleFunc("GET /api/progress", m.RequireAuth(rt.Progress.Progress))
	mux.HandleFunc("GET /api/stats", m.RequireAuth(rt.Progress.Stats))
	mux.HandleFunc("GET /api/assessments", m.RequireAuth(rt.Progress.Assessments))
	mux.HandleFunc("POST /api/assessments", m.RequireAuth(rt.Progress.AddAssessment))

	return Logging(mux)
}
