package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"bookproxy/pkg/cache"
	"bookproxy/pkg/chain"
	"bookproxy/pkg/providers"
	"bookproxy/pkg/proxy"
	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/ratelimit"
	"bookproxy/pkg/telemetry/logging"
	"bookproxy/pkg/telemetry/tracing"
)

// DefaultCacheWriteTimeout bounds the cache write after a chain resolve.
const DefaultCacheWriteTimeout = 2 * time.Second

// LookupOptions configures a LookupHandler.
type LookupOptions struct {
	Cache    Cache
	Resolver Resolver

	// Limiter may be nil to disable rate limiting.
	Limiter Limiter

	SearchTTL time.Duration
	ISBNTTL   time.Duration

	// TrustForwardedHeaders makes the rate limiter key on X-Forwarded-For.
	TrustForwardedHeaders bool

	CacheWriteTimeout time.Duration

	Tracer *tracing.Tracer
	Logger *slog.Logger
}

// LookupHandler serves GET /search and GET /isbn:
//
//	validate -> rate limit -> cache get -> chain resolve -> cache put -> respond
//
// Concurrent misses for the same cache key share one chain run.
type LookupHandler struct {
	cache    Cache
	resolver Resolver
	limiter  Limiter

	searchTTL         time.Duration
	isbnTTL           time.Duration
	trustForwarded    bool
	cacheWriteTimeout time.Duration

	tracer *tracing.Tracer
	logger *slog.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewLookupHandler creates the lookup handler.
func NewLookupHandler(opts LookupOptions) *LookupHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CacheWriteTimeout <= 0 {
		opts.CacheWriteTimeout = DefaultCacheWriteTimeout
	}

	return &LookupHandler{
		cache:             opts.Cache,
		resolver:          opts.Resolver,
		limiter:           opts.Limiter,
		searchTTL:         opts.SearchTTL,
		isbnTTL:           opts.ISBNTTL,
		trustForwarded:    opts.TrustForwardedHeaders,
		cacheWriteTimeout: opts.CacheWriteTimeout,
		tracer:            opts.Tracer,
		logger:            logger.With("component", "lookup"),
		now:               time.Now,
	}
}

// Search returns the GET /search handler.
func (h *LookupHandler) Search() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}

		q, err := proxy.ParseSearchRequest(r)
		if err != nil {
			_ = proxy.WriteErrorResponse(w, r, proxy.HandleError(err))
			return
		}

		h.lookup(w, r, lookup{
			kind: "search",
			key:  cache.SearchKey(q),
			req:  providers.SearchRequest(q),
			ttl:  h.searchTTL,
			render: func(result *providers.Result, cached bool, requestID string) any {
				return types.NewSearchResponse(result, cached, requestID)
			},
		})
	})
}

// ISBN returns the GET /isbn handler.
func (h *LookupHandler) ISBN() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}

		isbn, err := proxy.ParseISBNRequest(r)
		if err != nil {
			_ = proxy.WriteErrorResponse(w, r, proxy.HandleError(err))
			return
		}

		h.lookup(w, r, lookup{
			kind: "isbn",
			key:  cache.ISBNKey(isbn),
			req:  providers.ISBNRequest(isbn),
			ttl:  h.isbnTTL,
			render: func(result *providers.Result, cached bool, requestID string) any {
				return types.NewVolumeResponse(result, cached, requestID)
			},
		})
	})
}

// lookup is one validated request on its way through the flow.
type lookup struct {
	kind   string
	key    string
	req    providers.Request
	ttl    time.Duration
	render func(result *providers.Result, cached bool, requestID string) any
}

func (h *LookupHandler) lookup(w http.ResponseWriter, r *http.Request, l lookup) {
	ctx, span := h.tracer.Start(r.Context(), "lookup."+l.kind)
	defer span.End()

	requestID := logging.GetRequestID(ctx)
	tracing.SetRequestAttributes(span, requestID, l.kind)
	ctx = logging.WithCacheKey(ctx, l.key)

	if h.limiter != nil {
		client := proxy.ExtractClient(r, h.trustForwarded)
		ctx = logging.WithFingerprint(ctx, ratelimit.Fingerprint(client))

		decision, err := h.limiter.Allow(ctx, client)
		if err != nil {
			h.fail(ctx, w, r, err)
			return
		}
		setRateLimitHeaders(w, decision)
		tracing.SetRateLimitAttributes(span, string(decision.Tier), decision.Remaining)

		if !decision.Allowed {
			h.fail(ctx, w, r, &proxy.RateLimitedError{RetryAfter: decision.RetryAfter})
			return
		}
	}

	if entry, err := h.cache.Get(ctx, l.key); err == nil && !entry.Result.Empty() {
		cacheStatus := types.CacheHitHot
		if entry.Tier == cache.TierCold {
			cacheStatus = types.CacheHitCold
		}
		w.Header().Set(types.HeaderCache, cacheStatus)
		w.Header().Set(types.HeaderCacheAge, strconv.FormatInt(int64(entry.Age(h.now())/time.Second), 10))
		w.Header().Set(types.HeaderProvider, entry.Result.Provider)

		_ = proxy.WriteJSONResponse(w, http.StatusOK, l.render(entry.Result, true, requestID))
		return
	} else if err != nil && !errors.Is(err, cache.ErrMiss) {
		h.logger.WarnContext(ctx, "cache lookup failed", "error", err)
	}

	w.Header().Set(types.HeaderCache, types.CacheMiss)

	result, err := h.resolve(ctx, l)
	if err != nil {
		h.fail(ctx, w, r, err)
		return
	}
	if result.Empty() {
		h.fail(ctx, w, r, &chain.NotFoundError{})
		return
	}

	w.Header().Set(types.HeaderProvider, result.Provider)
	_ = proxy.WriteJSONResponse(w, http.StatusOK, l.render(result, false, requestID))
}

// resolve runs the chain once per key no matter how many requests miss on
// it concurrently. The run and its cache write use the first caller's
// context; later callers stop waiting when their own context ends. A
// caller whose context is still live when the shared run ended on the
// leader's cancellation or deadline runs the chain again on its own.
func (h *LookupHandler) resolve(ctx context.Context, l lookup) (*providers.Result, error) {
	ch := h.group.DoChan(l.key, func() (any, error) {
		result, err := h.resolver.Resolve(ctx, l.req)
		if err != nil {
			return nil, err
		}
		h.store(ctx, l.key, result, l.ttl)
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if res.Shared && isContextErr(res.Err) && ctx.Err() == nil {
				// The leading caller went away or ran out of time.
				return h.resolve(ctx, l)
			}
			return nil, res.Err
		}
		if res.Shared {
			h.logger.DebugContext(ctx, "coalesced concurrent lookup")
		}
		return res.Val.(*providers.Result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// store writes a resolved result to the cache. A write failure is logged
// and never fails the request.
func (h *LookupHandler) store(ctx context.Context, key string, result *providers.Result, ttl time.Duration) {
	if result.Empty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.cacheWriteTimeout)
	defer cancel()

	if err := h.cache.Put(ctx, key, result, ttl); err != nil {
		h.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}

func (h *LookupHandler) fail(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	errResp := proxy.HandleError(err)
	if errResp.HTTPStatusCode() >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "lookup failed", "status", errResp.HTTPStatusCode(), "error", err)
	} else {
		h.logger.DebugContext(ctx, "lookup rejected", "status", errResp.HTTPStatusCode(), "error", err)
	}
	tracing.SetError(tracing.SpanFromContext(ctx), err)
	_ = proxy.WriteErrorResponse(w, r, errResp)
}

func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set(types.HeaderRateLimitLimit, strconv.Itoa(d.Limit))
	w.Header().Set(types.HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	w.Header().Set(types.HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// allowGet answers preflight and rejects methods other than GET.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodOptions:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return false
	default:
		proxy.MethodNotAllowed(w, r, http.MethodGet, http.MethodHead, http.MethodOptions)
		return false
	}
}
