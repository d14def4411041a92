package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"paws-and-claws/internal/adapters/auth/token"
	sessmem "paws-and-claws/internal/adapters/session/memory"
	mem "paws-and-claws/internal/adapters/storage/memory"
	pg "paws-and-claws/internal/adapters/storage/postgres"
	"paws-and-claws/internal/adapters/uploads"
	"paws-and-claws/internal/domain/adoptions"
	"paws-and-claws/internal/domain/pets"
	"paws-and-claws/internal/domain/registration"
	"paws-and-claws/internal/domain/users"
	"paws-and-claws/internal/middleware"
	"paws-and-claws/internal/platform/config"
	"paws-and-claws/internal/platform/flash"
	"paws-and-claws/internal/platform/logger"
	"paws-and-claws/internal/platform/metrics"
)

type Options struct {
	Config config.Config
	Logger logger.Logger

	// Optional: inject an open DB. Otherwise Config.DatabaseDSN decides, and an
	// empty DSN means in-memory repositories.
	DB *sql.DB

	// Optional: override the upload store (tests use the memory one).
	Uploads uploads.Store
}

func New(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	cfg := opts.Config

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	m := metrics.New()
	r.Use(m.Middleware)
	r.Use(middleware.SessionID)

	codec := token.New(cfg.SessionSecret)
	r.Use(middleware.AuthContext(codec))

	// Repositories
	db := opts.DB
	if db == nil && cfg.DatabaseDSN != "" {
		opened, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("postgres unavailable, falling back to in-memory repositories", map[string]any{"error": err.Error()})
		} else if err := pg.RunMigrations(context.Background(), opened); err != nil {
			log.Error("migrations failed, falling back to in-memory repositories", map[string]any{"error": err.Error()})
			_ = opened.Close()
		} else {
			db = opened
		}
	}

	var (
		usersRepo users.Repository
		petsRepo  pets.Repository
		appsRepo  adoptions.Repository
	)
	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		petsRepo = pg.NewPetsRepo(db)
		appsRepo = pg.NewApplicationsRepo(db)
	} else {
		usersRepo = mem.NewUsersRepo()
		petsRepo = mem.NewPetsRepo()
		appsRepo = mem.NewApplicationsRepo()
	}

	// Transient session state: wizard drafts and flash messages
	sessions := sessmem.NewStore(cfg.WizardTTL)
	fl := flash.New(sessions)

	// Uploads
	ups := opts.Uploads
	var uploadsRoot string
	if ups == nil {
		switch cfg.UploadsDriver {
		case "s3":
			s3Store, err := uploads.NewS3(context.Background(), uploads.S3Config{
				Bucket:   cfg.S3Bucket,
				Region:   cfg.S3Region,
				Endpoint: cfg.S3Endpoint,
			})
			if err != nil {
				log.Error("s3 uploads unavailable, using memory store", map[string]any{"error": err.Error()})
				ups = uploads.NewMemory()
			} else {
				ups = s3Store
			}
		case "memory":
			ups = uploads.NewMemory()
		default:
			fsStore, err := uploads.NewFilesystem(cfg.UploadsDir)
			if err != nil {
				log.Error("filesystem uploads unavailable, using memory store", map[string]any{"error": err.Error()})
				ups = uploads.NewMemory()
			} else {
				ups = fsStore
				uploadsRoot = fsStore.Root()
			}
		}
	}

	// Services
	usersSvc := users.NewService(usersRepo)
	petsSvc := pets.NewService(petsRepo)
	adoptionsSvc := adoptions.NewService(appsRepo, petsRepo)
	wizard := registration.NewWizard(sessions, usersSvc)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"app":"paws-and-claws"}`))
	})

	// one-shot messages queued by the last redirect
	r.Get("/flash", func(w http.ResponseWriter, req *http.Request) {
		sid := middleware.GetSessionID(req.Context())
		success, errMsg := fl.Pop(req.Context(), sid)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"success": success,
			"error":   errMsg,
		})
	})

	if uploadsRoot != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsRoot))))
	}

	// Routes per module
	users.RegisterRoutes(r, users.HandlerDeps{
		Svc:        usersSvc,
		Codec:      codec,
		SessionTTL: cfg.SessionTTL,
		Uploads:    ups,
		Flash:      fl,
	})
	pets.RegisterRoutes(r, pets.HandlerDeps{
		Svc:     petsSvc,
		Uploads: ups,
		Flash:   fl,
	})
	adoptions.RegisterRoutes(r, adoptions.HandlerDeps{
		Svc:      adoptionsSvc,
		PetsSvc:  petsSvc,
		UsersSvc: usersSvc,
		Flash:    fl,
	})
	registration.RegisterRoutes(r, registration.HandlerDeps{
		Wizard:     wizard,
		Codec:      codec,
		SessionTTL: cfg.SessionTTL,
		Flash:      fl,
	})

	return r
}
