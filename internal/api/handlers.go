package api

import (
	"regexp"
	"time"

	"github.com/halcyon-labs/dermatrack/internal/classifier"
	"github.com/halcyon-labs/dermatrack/internal/db"
	"github.com/halcyon-labs/dermatrack/internal/monitor"
	"github.com/halcyon-labs/dermatrack/internal/services"
	"github.com/halcyon-labs/dermatrack/internal/storage"
	"gorm.io/gorm"
)

var passwordLengthRegex = regexp.MustCompile(`^.{8,}$`)
var passwordUpperRegex = regexp.MustCompile(`\p{Lu}`)
var passwordLowerRegex = regexp.MustCompile(`\p{Ll}`)
var passwordDigitRegex = regexp.MustCompile(`\d`)

const (
	authCookieName       = "dermatrack_auth"
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

const maxUploadBytes = 10 << 20

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	cookieSecure bool

	repositories *db.Repositories
	authService  *services.AuthService
	classifier   *classifier.Client
	blobs        storage.BlobStore
	coordinator  *monitor.Coordinator
}

func NewHandler(database *gorm.DB, secret string, cookieSecure bool, classifierClient *classifier.Client, blobs storage.BlobStore, coordinator *monitor.Coordinator) *Handler {
	handler := &Handler{
		db:           database,
		secretKey:    []byte(secret),
		cookieSecure: cookieSecure,
		classifier:   classifierClient,
		blobs:        blobs,
		coordinator:  coordinator,
	}
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	return handler
}
