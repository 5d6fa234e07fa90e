package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/genuinity/internal/cache"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/util"
	"github.com/ppiankov/genuinity/internal/worker"
	"github.com/rs/zerolog/log"
)

const openAIDefaultURL = "https://api.openai.com/v1"

// Options carries the shared collaborators of an engine stack
type Options struct {
	Cache    cache.Cache   // nil disables caching
	CacheTTL time.Duration // 0 uses the cache default
	Limiter  *worker.Limiter
	OnHit    func()
	OnMiss   func()
}

// NewEngine builds the engine described by cfg.
// Remote engines are rate limited, then guarded by a circuit breaker; the
// cache sits outermost so hits cost neither a token nor a breaker slot.
func NewEngine(cfg model.EmbeddingConfig, opts Options) (Engine, error) {
	provider := strings.ToLower(cfg.Provider)

	var (
		base   Engine
		remote string
		err    error
	)

	switch provider {
	case "hash":
		log.Warn().
			Int("dimensions", cfg.Dimensions).
			Msg("Hash embeddings measure word overlap, not meaning; contradiction scores are approximate")
		base, err = NewHashEngine(cfg.Dimensions)

	case "openai":
		client := util.NewHTTPClient(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
		client.Timeout = cfg.Timeout
		base, err = NewOpenAIEngine(cfg.APIKey, cfg.BaseURL, cfg.ModelName(), client)
		remote = cfg.BaseURL
		if remote == "" {
			remote = openAIDefaultURL
		}

	case "ollama":
		client := util.NewHTTPClient(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
		client.Timeout = cfg.Timeout
		var oe *OllamaEngine
		oe, err = NewOllamaEngine(cfg.BaseURL, cfg.ModelName(), client)
		if err == nil {
			base, remote = oe, oe.BaseURL()
		}

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama, hash)", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s embedding engine: %w", provider, err)
	}

	engine := base
	if remote != "" {
		key, err := worker.EndpointKey(remote)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding base url %q: %w", remote, err)
		}
		limiter := opts.Limiter
		if limiter == nil {
			limiter = worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
		} else {
			// A shared limiter still applies this endpoint's configured rate
			limiter.SetRate(key, cfg.RequestsPerSecond, cfg.Burst)
		}
		engine = NewLimitedEngine(engine, limiter, key)
		engine = NewBreakerEngine(engine, cfg.BreakerFailures, cfg.BreakerTimeout)
	}

	engine = NewCachedEngine(engine, opts.Cache, opts.CacheTTL)
	if ce, ok := engine.(*CachedEngine); ok {
		ce.OnHit = opts.OnHit
		ce.OnMiss = opts.OnMiss
	}

	log.Info().
		Str("provider", provider).
		Str("engine", engine.Name()).
		Bool("cached", opts.Cache != nil).
		Msg("Embedding engine ready")

	return engine, nil
}
