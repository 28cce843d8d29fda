package handlers

import (
	"github.com/jmoiron/sqlx"

	"bidmarket/internal/config"
	applog "bidmarket/internal/log"
	"bidmarket/internal/repos"
	"bidmarket/internal/services"
)

// Deps is everything the routes need, built once at startup and passed
// explicitly to NewApp.
type Deps struct {
	DB             *sqlx.DB
	Auth           *services.AuthService
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ProductHandler *ProductHandler
	BidHandler     *BidHandler
}

// NewDeps wires repositories, services and handlers over db. A nil revoked
// store falls back to the SQL revoked_tokens table.
func NewDeps(db *sqlx.DB, cfg config.Config, revoked services.RevocationStore) (*Deps, error) {
	if cfg.JWTSecret == "" {
		applog.Logger().Warn().Str("action", "config.jwt_secret").
			Msg("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}
	tokens, err := services.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	if revoked == nil {
		revoked = repos.NewTokenRepo(db)
	}

	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	bidRepo := repos.NewBidRepo(db)
	store := repos.NewStore(db)

	authSvc := services.NewAuthService(userRepo, tokens, revoked, cfg.BcryptCost)
	userSvc := services.NewUserService(userRepo, store, cfg.BcryptCost)
	catalogSvc := services.NewCatalogService(prodRepo, store)
	bidSvc := services.NewBidService(prodRepo, bidRepo, store)

	return &Deps{
		DB:             db,
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc},
		UserHandler:    &UserHandler{Auth: authSvc, Users: userSvc},
		ProductHandler: &ProductHandler{Auth: authSvc, Catalog: catalogSvc},
		BidHandler:     &BidHandler{Auth: authSvc, Bids: bidSvc},
	}, nil
}
