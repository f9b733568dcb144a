package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"hirepath/api-gateway/config"
	"hirepath/api-gateway/handlers"
	"hirepath/api-gateway/internal/authclient"
	"hirepath/api-gateway/internal/eventqueue"
	"hirepath/api-gateway/internal/lifecycle"
	"hirepath/api-gateway/internal/storageclient"
	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/internal/uploader"
	"hirepath/api-gateway/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.InitLogger(cfg)

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	stores := store.NewStores(db)

	queue := eventqueue.New(cfg)
	defer queue.Close()
	if err := queue.Ping(context.Background()); err != nil {
		// The queue is best effort; a cold Redis at boot only costs the
		// scoring triggers, not the write path.
		config.Log.WithField("error", err.Error()).Warn("Event queue unreachable at startup")
	}

	auth := authclient.New(cfg.AuthServer, cfg.ExternalTimeout)
	storage := storageclient.New(cfg.ServerURL, cfg.ExternalTimeout)
	up := uploader.New(storage, stores.Uploads)

	lc := lifecycle.NewService(stores.Jobs, stores.Applications, stores.Uploads,
		up, storage, queue, config.Log)

	h := handlers.NewHandler(lc, stores, up, config.Log, cfg.IsDevelopment())

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: cfg.CORSAllowedOrigins != "*",
	}))
	app.Use(middleware.RequestLogger())

	authenticated := middleware.Authenticate(auth)
	recruiterOnly := middleware.RequireRecruiter()

	api := app.Group("/api/jobs")

	// Public routes
	api.Get("/ping", handlers.Ping)
	api.Get("/list-jobs", h.ListJobs)
	api.Get("/job-details", h.JobDetails)

	// Pipeline callbacks: requirements results belong to a recruiter-owned
	// job, skill gap results arrive machine-to-machine with no session.
	api.Post("/pipeline_result/requirements", authenticated, recruiterOnly, h.RequirementsResult)
	api.Post("/pipeline_result/skill_gap", h.SkillGapResult)

	// Candidate routes
	api.Post("/apply", authenticated, h.Apply)
	user := api.Group("/user", authenticated)
	user.Get("/profile", h.Profile)
	user.Get("/resume-list", h.ResumeList)
	user.Post("/upload-resume", h.UploadResume)

	// Recruiter routes
	recruiter := api.Group("/recruiter", authenticated, recruiterOnly)
	recruiter.Post("/create", h.CreateJob)
	recruiter.Get("/recruiter-jobs", h.RecruiterJobs)
	recruiter.Put("/update-job-status", h.UpdateJobStatus)
	recruiter.Put("/update-job", h.UpdateJob)
	recruiter.Get("/applications", h.RecruiterApplications)
	recruiter.Get("/application-by-id", h.ApplicationByID)
	recruiter.Get("/job-by-id", h.JobByID)
	recruiter.Post("/shortlist-candidates", h.ShortlistCandidates)

	config.Log.Infof("Starting API gateway on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
