package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/wastesortbackend/classifier"
	"github.com/camden-git/wastesortbackend/config"
	"github.com/camden-git/wastesortbackend/database"
	"github.com/camden-git/wastesortbackend/handlers"
	"github.com/camden-git/wastesortbackend/media"
	"github.com/camden-git/wastesortbackend/repository"
	"github.com/camden-git/wastesortbackend/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.UploadsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}

	// provision the record table once at startup, so request handling never
	// has to probe for it
	if err := database.EnsureRecordTable(db); err != nil {
		log.Fatalf("FATAL: Failed to provision record table: %v", err)
	}

	uploadsSubDir := filepath.Base(cfg.UploadsPath)
	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeUpload: uploadsSubDir,
	}
	artifactStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize artifact store: %v", err)
	}

	imageClassifier := classifier.NewRemote(cfg.ClassifierURL, cfg.ClassifierTimeout)
	recordRepo := repository.NewImageRecordRepository(db, cfg.StoreOpTimeout)

	ingestionService := services.NewIngestionService(imageClassifier, artifactStore, recordRepo)
	feedbackService := services.NewFeedbackService(recordRepo)
	orphanService := services.NewOrphanService(db, artifactStore, uploadsSubDir)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing uploads in: %s", cfg.UploadsPath)
	log.Printf("Classifier endpoint: %s", cfg.ClassifierURL)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"}, // the labeling frontend is served from anywhere
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	predictHandler := &handlers.PredictHandler{Ingestion: ingestionService}
	feedbackHandler := &handlers.FeedbackHandler{Feedback: feedbackService}
	recordHandler := &handlers.RecordHandler{Records: recordRepo, Orphans: orphanService}

	r.Post("/predict", predictHandler.Predict)
	r.Post("/save-feedback", feedbackHandler.SaveFeedback)
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordHandler.QueryRecordsByClass)
			r.Route("/{image_name}", func(r chi.Router) {
				r.Get("/", recordHandler.GetRecord)
				r.Delete("/", recordHandler.DeleteRecord)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orphans", recordHandler.ListOrphans)
			r.Delete("/store", recordHandler.DropStore)
		})

		r.Get(fmt.Sprintf("/%s/*", uploadsSubDir), handlers.AssetServer(cfg.MediaStoragePath, uploadsSubDir))
		log.Printf("Registered upload server at /%s/*", uploadsSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
