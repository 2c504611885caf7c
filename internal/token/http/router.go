package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/slogx"

	_ "github.com/nordstack/tokend/api/tokend" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	Engine       *service.Engine
	Introspector *service.Introspector
	Policy       service.AudiencePolicy

	// BulkRevokeLimit caps one bulk revocation request.
	BulkRevokeLimit int
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerIntrospection()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			tokend Token Service API
//	@version		0.1.0
//	@description	Token lifecycle and revocation engine: mints RS256-signed JWTs, tracks every
//	@description	token in an append-only metadata ledger, and answers validation and RFC 7662
//	@description	introspection queries against a durable denylist.
//
//	@contact.name	Nordstack Team
//	@contact.url	https://github.com/nordstack/tokend
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	// POST /v1/tokens/generate - strict rate limit (minting is expensive and
	// privileged)
	generateHandler := &GenerateHandler{Engine: r.Engine, Policy: r.Policy}
	r.Mux.Handle("POST /v1/tokens/generate",
		httpx.Chain(generateHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/tokens/validate and /validate/boolean - validation is the hot
	// path, public limit
	validateHandler := &ValidateHandler{Engine: r.Engine}
	r.Mux.Handle("POST /v1/tokens/validate",
		httpx.Chain(http.HandlerFunc(validateHandler.HandleFull),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/tokens/validate/boolean",
		httpx.Chain(http.HandlerFunc(validateHandler.HandleBoolean),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// POST /v1/tokens/extend - strict rate limit (writes two rows per call)
	extendHandler := &ExtendHandler{Engine: r.Engine}
	r.Mux.Handle("POST /v1/tokens/extend",
		httpx.Chain(extendHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/tokens/revoke and /revoke/bulk - moderate rate limit
	revokeHandler := &RevokeHandler{Engine: r.Engine, BulkLimit: r.BulkRevokeLimit}
	r.Mux.Handle("POST /v1/tokens/revoke",
		httpx.Chain(http.HandlerFunc(revokeHandler.HandleSingle),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/tokens/revoke/bulk",
		httpx.Chain(http.HandlerFunc(revokeHandler.HandleBulk),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/tokens/list - moderate rate limit (operator queries)
	listHandler := &ListHandler{Engine: r.Engine}
	r.Mux.Handle("POST /v1/tokens/list",
		httpx.Chain(listHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /.well-known/jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerIntrospection() {
	// Introspection endpoint (RFC 7662) - hot path for resource servers
	introspectHandler := &IntrospectHandler{Introspector: r.Introspector}
	r.Mux.Handle("POST /v1/introspect",
		httpx.Chain(introspectHandler,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
