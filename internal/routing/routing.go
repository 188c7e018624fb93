package routing

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"

	"devloop/internal/config"
	"devloop/internal/metrics"
	"devloop/pkg/authsession"
	"devloop/pkg/availability"
	"devloop/pkg/booking"
	"devloop/pkg/chat"
	"devloop/pkg/handlers"
	"devloop/pkg/middleware"
	"devloop/pkg/review"
	"devloop/pkg/user"
)

func InitRoutes(r *mux.Router, db *sql.DB, mongoDB *mongo.Database, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) {

	sessionRepo := authsession.NewSQLRepo(db, cfg.TokenTTL)
	userRepo := user.NewSQLRepo(db)
	directory := user.NewDirectory(userRepo)

	userService := user.NewService(userRepo, sessionRepo)
	userHandler := handlers.NewUserHandler(userService, handlers.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), logger)

	windows := availability.NewSQLRepo(db)
	availabilityHandler := handlers.NewAvailabilityHandler(availability.NewService(windows, directory, logger), logger)

	engine := booking.NewEngine(windows, booking.NewSQLStore(db), directory, logger)
	engine.Observer = m
	sessionHandler := handlers.NewSessionHandler(engine, logger)

	reviewHandler := handlers.NewReviewHandler(review.NewService(review.NewMongoRepo(mongoDB), engine), logger)

	hub := chat.NewHub(logger)
	chatHandler := handlers.NewChatHandler(chat.NewService(chat.NewMongoRepo(mongoDB), engine, hub), hub, logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	requestLog := middleware.RequestLog(logger, m)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	limiter.TrustedProxies = cfg.TrustedProxies
	checkJWT := middleware.CheckJWT(cfg.JWTSecret, sessionRepo, logger)
	mentorOnly := middleware.RequireRole(user.RoleMentor)
	menteeOnly := middleware.RequireRole(user.RoleMentee)

	r.Use(middleware.Panic(logger), requestLog, limiter.Middleware)
	r.NotFoundHandler = requestLog(jsonStatus(http.StatusNotFound, "not found", logger))
	r.MethodNotAllowedHandler = requestLog(jsonStatus(http.StatusMethodNotAllowed, "method not allowed", logger))

	r.Handle("/metrics", m.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(checkJWT)

	/* auth routers */
	api.HandleFunc("/register", userHandler.Register).Methods("POST").Name("register")
	api.HandleFunc("/login", userHandler.Login).Methods("POST").Name("login")
	api.HandleFunc("/logout", userHandler.Logout).Methods("POST").Name("logout")

	/* user routers */
	api.HandleFunc("/users", userHandler.List).Methods("GET")
	api.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.GetByID).Methods("GET")
	api.HandleFunc("/users/{id}/profile", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/{id}/password", userHandler.UpdatePassword).Methods("PUT")
	api.HandleFunc("/users/{id}/profile-image", userHandler.UpdateProfileImage).Methods("PUT")
	api.HandleFunc("/users/{id}", userHandler.Delete).Methods("DELETE")

	/* availability routers */
	api.HandleFunc("/availabilities", availabilityHandler.List).Methods("GET")
	api.Handle("/availabilities", mentorOnly(http.HandlerFunc(availabilityHandler.Publish))).Methods("POST")
	api.Handle("/availabilities/{id}", mentorOnly(http.HandlerFunc(availabilityHandler.Update))).Methods("PUT")
	api.Handle("/availabilities/{id}", mentorOnly(http.HandlerFunc(availabilityHandler.Delete))).Methods("DELETE")

	/* review routers */
	api.HandleFunc("/reviews", reviewHandler.Create).Methods("POST")
	api.HandleFunc("/reviews/{sessionId}", reviewHandler.ListBySession).Methods("GET")
	api.HandleFunc("/reviews/{id}", reviewHandler.Update).Methods("PUT")
	api.HandleFunc("/reviews/{id}", reviewHandler.Delete).Methods("DELETE")

	/* chat routers */
	api.HandleFunc("/sessions/{id}/messages", chatHandler.History).Methods("GET")
	api.HandleFunc("/sessions/{id}/messages", chatHandler.Send).Methods("POST")
	api.HandleFunc("/sessions/{id}/chat", chatHandler.Stream).Methods("GET")

	/* session routers, served both with and without the /api prefix */
	rootSessions := r.PathPrefix("/sessions").Subrouter()
	rootSessions.Use(checkJWT)
	for _, sr := range []*mux.Router{api.PathPrefix("/sessions").Subrouter(), rootSessions} {
		sr.Handle("", menteeOnly(http.HandlerFunc(sessionHandler.Book))).Methods("POST")
		sr.HandleFunc("", sessionHandler.GetAll).Methods("GET")
		sr.HandleFunc("/{id}", sessionHandler.GetByID).Methods("GET")
		sr.HandleFunc("/{id}", sessionHandler.Update).Methods("PUT")
		sr.HandleFunc("/{id}", sessionHandler.Delete).Methods("DELETE")
	}
}

func jsonStatus(status int, msg string, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(map[string]string{"message": msg}); err != nil {
			logger.Error("failed to write fallback JSON", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
	})
}
