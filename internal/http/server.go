package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"hirejacks/server/internal/ai"
	"hirejacks/server/internal/auth"
	"hirejacks/server/internal/config"
	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
	"hirejacks/server/internal/seed"
	"hirejacks/server/internal/service"
)

type Server struct {
	cfg     config.Config
	svc     *service.Service
	ai      *ai.Service
	limiter *RedisLimiter
}

func NewServer(cfg config.Config, svc *service.Service, aiSvc *ai.Service, redisClient *redis.Client) *Server {
	return &Server{
		cfg:     cfg,
		svc:     svc,
		ai:      aiSvc,
		limiter: NewRedisLimiter(redisClient),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/session", s.handleSession)

	r.With(s.authMiddleware).Get("/jobs", s.handleGetJobs)
	r.With(s.authMiddleware, s.requireAdmin).Post("/jobs", s.handleAddJob)
	r.With(s.authMiddleware, s.requireAdmin).Patch("/jobs/{jobID}", s.handleUpdateJob)
	r.With(s.authMiddleware, s.requireAdmin).Delete("/jobs/{jobID}", s.handleDeleteJob)
	r.With(s.authMiddleware, s.requireStudent).Post("/jobs/{jobID}/apply", s.handleApply)

	r.With(s.authMiddleware).Get("/companies", s.handleGetCompanies)
	r.With(s.authMiddleware, s.requireAdmin).Post("/companies", s.handleAddCompany)
	r.With(s.authMiddleware, s.requireAdmin).Patch("/companies/{companyID}", s.handleUpdateCompany)

	r.With(s.authMiddleware).Get("/events", s.handleGetEvents)
	r.With(s.authMiddleware).Get("/news", s.handleGetNews)
	r.With(s.authMiddleware).Get("/notifications", s.handleGetNotifications)
	r.With(s.authMiddleware, s.requireAdmin).Post("/notifications", s.handleAddNotification)
	r.With(s.authMiddleware, s.requireAdmin).Get("/applications", s.handleGetApplications)

	r.With(s.authMiddleware).Get("/profile", s.handleGetProfile)
	r.With(s.authMiddleware).Patch("/profile", s.handleUpdateProfile)

	r.Route("/ai", func(r chi.Router) {
		r.Use(s.authMiddleware, s.aiRateLimitMiddleware)
		r.Post("/resume-refactor", s.handleResumeRefactor)
		r.Post("/cover-letter", s.handleCoverLetter)
		r.Post("/job-recommendations", s.handleJobRecommendations)
		r.Post("/assistant", s.handleAssistant)
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireRole(next, string(model.RoleAdmin))
}

func (s *Server) requireStudent(next http.Handler) http.Handler {
	return s.requireRole(next, string(model.RoleStudent))
}

func (s *Server) requireRole(next http.Handler, role string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		if claims.Role != role {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) aiRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		key := ""
		if claims != nil {
			key = "ai:" + claims.UID
		}
		if !s.limiter.Allow(key, s.cfg.AIRateLimit, s.cfg.AIRateWindow) {
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Session

type sessionRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
	Designation string `json:"designation"`
}

type sessionResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.UID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "uid_and_email_required")
		return
	}
	user, err := s.svc.GetOrCreateUser(r.Context(), service.Identity{
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	}, service.SignupExtra{
		PhoneNumber: req.PhoneNumber,
		CompanyName: req.CompanyName,
		Designation: req.Designation,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, user.UID, string(user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, AccessToken: token})
}

// Jobs

func (s *Server) handleGetJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.svc.GetJobs(r.Context())
	if err != nil {
		if errors.Is(err, seed.ErrSeedFailed) {
			writeError(w, http.StatusServiceUnavailable, "seed_failed")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	var req service.NewJob
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Title == "" || req.Company == "" {
		writeError(w, http.StatusBadRequest, "title_and_company_required")
		return
	}
	job, err := s.svc.AddJob(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while adding the job."})
		return
	}
	writeJSON(w, http.StatusCreated, jobResultResponse{
		resultResponse: resultResponse{Success: true, Message: "Job added successfully!"},
		Job:            job,
	})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var req service.JobUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	err := s.svc.UpdateJob(r.Context(), chi.URLParam(r, "jobID"), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Job updated successfully!"})
	case errors.Is(err, service.ErrJobNotFound):
		writeJSON(w, http.StatusNotFound, resultResponse{Message: "Job not found."})
	default:
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while updating the job."})
	}
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteJob(r.Context(), chi.URLParam(r, "jobID")); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while deleting the job."})
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Job deleted successfully!"})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	result, err := s.svc.ApplyForJob(r.Context(), chi.URLParam(r, "jobID"), claims.UID)
	writeJSON(w, applyStatus(err), result)
}

func applyStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrAlreadyApplied):
		return http.StatusConflict
	case errors.Is(err, service.ErrJobNotFound), errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// Companies, events, news

func (s *Server) handleGetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.svc.GetCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *Server) handleAddCompany(w http.ResponseWriter, r *http.Request) {
	var req service.NewCompany
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	company, err := s.svc.AddCompany(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while adding the company."})
		return
	}
	writeJSON(w, http.StatusCreated, companyResultResponse{
		resultResponse: resultResponse{Success: true, Message: "Company added successfully!"},
		Company:        company,
	})
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req service.CompanyUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	err := s.svc.UpdateCompany(r.Context(), chi.URLParam(r, "companyID"), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Company updated successfully!"})
	case errors.Is(err, docstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, resultResponse{Message: "Company not found."})
	default:
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while updating the company."})
	}
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	events, _ := s.svc.GetUpcomingEvents(r.Context())
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	items, _ := s.svc.GetNewsItems(r.Context())
	writeJSON(w, http.StatusOK, items)
}

// Notifications and applications

func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, _ := s.svc.GetNotifications(r.Context())
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleAddNotification(w http.ResponseWriter, r *http.Request) {
	var req service.NewNotification
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title_and_message_required")
		return
	}
	if _, err := s.svc.AddNotification(r.Context(), req); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "An unexpected error occurred while sending the notification."})
		return
	}
	writeJSON(w, http.StatusCreated, resultResponse{Success: true, Message: "Notification sent successfully!"})
}

func (s *Server) handleGetApplications(w http.ResponseWriter, r *http.Request) {
	applications, _ := s.svc.GetApplications(r.Context())
	writeJSON(w, http.StatusOK, applications)
}

// Profile

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := s.svc.GetUserProfile(r.Context(), claims.UID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req service.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	err := s.svc.UpdateUserProfile(r.Context(), claims.UID, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Profile updated successfully!"})
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, resultResponse{Message: "User not found."})
	default:
		writeJSON(w, http.StatusServiceUnavailable, resultResponse{Message: "Could not update profile. Please try again."})
	}
}

// AI flows

func (s *Server) handleResumeRefactor(w http.ResponseWriter, r *http.Request) {
	var req ai.ResumeRefactorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	out, err := s.ai.ResumeRefactor(r.Context(), req)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req ai.CoverLetterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	out, err := s.ai.CoverLetter(r.Context(), req)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJobRecommendations(w http.ResponseWriter, r *http.Request) {
	var req ai.JobRecommendationsInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	out, err := s.ai.JobRecommendations(r.Context(), req)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req ai.AssistantInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	out, err := s.ai.Assistant(r.Context(), req)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, ai.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "ai_unavailable")
	default:
		writeError(w, http.StatusBadGateway, "ai_error")
	}
}

// Helpers

type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type jobResultResponse struct {
	resultResponse
	Job *model.Job `json:"job"`
}

type companyResultResponse struct {
	resultResponse
	Company *model.Company `json:"company"`
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
