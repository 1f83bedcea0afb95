// Package gateway exposes the share-object engine over HTTP: open read
// routes for object, stage, token, and voting state, and JWT-protected
// operator routes for every mutating operation.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brickshare/gateway/middleware"
	"brickshare/native/factory"
	"brickshare/native/object"
	"brickshare/native/vaults"
)

type objectLister interface {
	ListObjectIDs() ([]uint64, error)
}

// Options carries the collaborators the server exposes.
type Options struct {
	Engine    *object.Engine
	Factory   *factory.Factory
	Pool      *vaults.EarningsPool
	Program   *vaults.ReferralProgram
	Fund      *vaults.BuyBackFund
	Lister    objectLister
	JWTSecret string
	RateLimit int
	Logger    *slog.Logger
}

// Server is the HTTP surface over the engine and its vault collaborators.
type Server struct {
	engine  *object.Engine
	factory *factory.Factory
	pool    *vaults.EarningsPool
	program *vaults.ReferralProgram
	fund    *vaults.BuyBackFund
	lister  objectLister
	auth    *middleware.Authenticator
	obs     *middleware.Observability
	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

// NewServer wires the gateway. All collaborators are required except the
// vaults, which disable their routes when absent.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  opts.Engine,
		factory: opts.Factory,
		pool:    opts.Pool,
		program: opts.Program,
		fund:    opts.Fund,
		lister:  opts.Lister,
		auth:    middleware.NewAuthenticator(opts.JWTSecret),
		obs:     middleware.NewObservability(logger),
		limiter: middleware.NewRateLimiter(opts.RateLimit),
		logger:  logger,
	}
}

// Auth exposes the authenticator for operator token issuance.
func (s *Server) Auth() *middleware.Authenticator { return s.auth }

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limiter.Middleware)

	r.With(s.obs.Middleware("healthz")).Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.obs.MetricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.With(s.obs.Middleware("objects")).Get("/objects", s.handleListObjects)
		r.With(s.auth.Middleware, s.obs.Middleware("operator")).Post("/objects", s.handleCreateObject)

		r.Route("/objects/{objectID}", func(r chi.Router) {
			r.With(s.obs.Middleware("object")).Get("/", s.handleGetObject)
			r.With(s.obs.Middleware("object_price")).Get("/price", s.handleGetPrice)
			r.With(s.obs.Middleware("object_stage")).Get("/stages/{stageID}", s.handleGetStage)
			r.With(s.obs.Middleware("object_token")).Get("/tokens/{tokenID}", s.handleGetToken)
			r.With(s.obs.Middleware("object_voting")).Get("/votings/{votingID}", s.handleGetVoting)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Use(s.obs.Middleware("operator"))

				r.Post("/buy", s.handleBuyShares)
				r.Post("/close-sale", s.handleCloseSale)
				r.Post("/sell", s.handleSellObject)
				r.Post("/stages", s.handleCreateStage)
				r.Post("/stages/{stageID}/close", s.handleCloseStage)
				r.Post("/stages/{stageID}/price", s.handleSetStagePrice)
				r.Post("/stages/{stageID}/sale-stop", s.handleSetSaleStop)
				r.Post("/earnings/add", s.handleAddEarnings)
				r.Post("/earnings/sub", s.handleSubEarnings)
				r.Post("/earnings/boost", s.handleBoostEarnings)
				r.Post("/company/buy", s.handleCompanyBuy)
				r.Post("/company/withdraw", s.handleCompanyWithdraw)
				r.Post("/referral/enable", s.handleEnableReferral)
				r.Post("/referral/disable", s.handleDisableReferral)
				r.Post("/votings", s.handleCreateVoting)
				r.Post("/votings/{votingID}/vote", s.handleVote)
				r.Post("/votings/{votingID}/close", s.handleCloseVoting)
				r.Post("/tokens/merge", s.handleMergeTokens)
				r.Post("/tokens/{tokenID}/split", s.handleSplitToken)
				r.Post("/tokens/{tokenID}/exit", s.handleExit)
				r.Post("/tokens/{tokenID}/transfer", s.handleTransferToken)
				if s.pool != nil {
					r.Post("/tokens/{tokenID}/claim", s.handleClaimEarnings)
				}
				if s.fund != nil {
					r.Post("/tokens/{tokenID}/buyback", s.handleBuyback)
				}
			})
		})

		if s.program != nil {
			r.With(s.obs.Middleware("referral_rewards")).Get("/referral/rewards/{address}", s.handleReferralRewards)
			r.With(s.auth.Middleware, s.obs.Middleware("operator")).Post("/referral/claim", s.handleClaimReferral)
		}
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) caller(r *http.Request) ([20]byte, error) {
	raw, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		return [20]byte{}, err
	}
	return parseAddress(raw)
}
