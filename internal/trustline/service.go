// Package trustline validates, admits, mutates, and observes trust
// relationships on the ledger. It enforces the network's reserve economics
// before submitting anything and keeps a short-lived cache of line state.
//
// Consistency: the ledger owns the authoritative copy of every line. Reads
// served from cache may be up to DefaultCacheTTL stale with respect to
// mutations made by other processes; mutations made through this service
// update or evict their cache entry synchronously.
package trustline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/go-backend/internal/ledger"
	"ledgerline/go-backend/internal/platform/metrics"
	"ledgerline/go-backend/internal/platform/ratelimiter"
	"ledgerline/go-backend/pkg/models"
)

// CreateRequest asks for a new trustline from the signer's account.
type CreateRequest struct {
	Currency   string
	Issuer     string
	Limit      string
	QualityIn  uint32
	QualityOut uint32
	Memo       string
}

// ModifyRequest changes only the limit of an existing line.
type ModifyRequest struct {
	Currency string
	Issuer   string
	NewLimit string
}

// RemoveRequest deletes an emptied line by submitting a zero limit.
type RemoveRequest struct {
	Currency string
	Issuer   string
}

// Filter narrows List output.
type Filter struct {
	Currency string
	Issuer   string
}

// Service is the trust-relationship lifecycle manager.
type Service struct {
	client   ledger.Client
	reserves Reserves
	cache    *lineCache
	locks    *keyedLocks
	limiter  *ratelimiter.SubmitLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// Option tweaks Service construction.
type Option func(*options)

type options struct {
	ttl     time.Duration
	now     func() time.Time
	limiter *ratelimiter.SubmitLimiter
}

// WithCacheTTL overrides the line cache time-to-live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSubmitLimiter caps submissions per account. A nil limiter allows all.
func WithSubmitLimiter(l *ratelimiter.SubmitLimiter) Option {
	return func(o *options) { o.limiter = l }
}

func NewService(client ledger.Client, reserves Reserves, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{ttl: DefaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		client:   client,
		reserves: reserves,
		cache:    newLineCache(o.ttl, o.now),
		locks:    newKeyedLocks(),
		limiter:  o.limiter,
		logger:   logger,
		now:      o.now,
	}
}

// Create validates the request, checks the account's reserve headroom, and
// submits the new line. Validation failures never reach the network.
func (s *Service) Create(ctx context.Context, signer ledger.Signer, req CreateRequest) (models.Receipt, error) {
	limit, err := s.validateRequest(req.Currency, req.Issuer, req.Limit)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "rejected").Inc()
		return models.Receipt{}, err
	}

	account := signer.Address()
	key := cacheKey(account, req.Currency, req.Issuer)
	release := s.locks.acquire(key)
	defer release()

	existing, err := s.fetchLine(ctx, account, req.Currency, req.Issuer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "error").Inc()
		return models.Receipt{}, err
	}
	if existing != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "rejected").Inc()
		return models.Receipt{}, fmt.Errorf("%w: %s/%s", ErrDuplicateTrustline, req.Currency, req.Issuer)
	}

	info, err := s.accountInfo(ctx, account)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "error").Inc()
		return models.Receipt{}, err
	}
	available := ledger.DropsToXRP(info.BalanceDrops)
	required := s.reserves.Required(info.OwnerCount + 1)
	if available.Cmp(required) < 0 {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "rejected").Inc()
		return models.Receipt{}, &InsufficientReserveError{
			Required:  required,
			Available: available,
			Shortfall: required.Sub(available),
		}
	}

	result, err := s.submit(ctx, ledger.TrustSet{
		Account:    account,
		Currency:   req.Currency,
		Issuer:     req.Issuer,
		Limit:      limit.String(),
		QualityIn:  req.QualityIn,
		QualityOut: req.QualityOut,
		Memo:       req.Memo,
	}, signer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("create", "error").Inc()
		return models.Receipt{}, err
	}

	line := ledger.Line{Currency: req.Currency, Issuer: req.Issuer, Balance: "0", Limit: limit.String()}
	s.cache.put(key, line, true)
	metrics.TrustlineOpsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.Info("trustline created", "account", account, "currency", req.Currency, "issuer", req.Issuer, "hash", result.Hash)
	return s.receipt(account, line, result), nil
}

// Modify changes the line's limit. The new limit must cover the balance
// currently held; otherwise the request fails without submitting anything.
func (s *Service) Modify(ctx context.Context, signer ledger.Signer, req ModifyRequest) (models.Receipt, error) {
	limit, err := s.validateRequest(req.Currency, req.Issuer, req.NewLimit)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("modify", "rejected").Inc()
		return models.Receipt{}, err
	}

	account := signer.Address()
	key := cacheKey(account, req.Currency, req.Issuer)
	release := s.locks.acquire(key)
	defer release()

	existing, err := s.fetchLine(ctx, account, req.Currency, req.Issuer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("modify", "error").Inc()
		return models.Receipt{}, err
	}
	if existing == nil {
		metrics.TrustlineOpsTotal.WithLabelValues("modify", "rejected").Inc()
		return models.Receipt{}, fmt.Errorf("%w: %s/%s", ErrTrustlineNotFound, req.Currency, req.Issuer)
	}

	balance, err := ledger.ParseBalance(existing.Balance)
	if err != nil {
		return models.Receipt{}, err
	}
	if limit.Cmp(balance.Abs()) < 0 {
		metrics.TrustlineOpsTotal.WithLabelValues("modify", "rejected").Inc()
		return models.Receipt{}, &LimitBelowBalanceError{RequestedLimit: limit, Balance: balance}
	}

	result, err := s.submit(ctx, ledger.TrustSet{
		Account:  account,
		Currency: req.Currency,
		Issuer:   req.Issuer,
		Limit:    limit.String(),
	}, signer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("modify", "error").Inc()
		return models.Receipt{}, err
	}

	line := ledger.Line{Currency: req.Currency, Issuer: req.Issuer, Balance: existing.Balance, Limit: limit.String()}
	s.cache.put(key, line, true)
	metrics.TrustlineOpsTotal.WithLabelValues("modify", "ok").Inc()
	s.logger.Info("trustline modified", "account", account, "currency", req.Currency, "issuer", req.Issuer, "hash", result.Hash)
	return s.receipt(account, line, result), nil
}

// Remove deletes an existing line by submitting a zero limit. The balance
// must already be zero.
func (s *Service) Remove(ctx context.Context, signer ledger.Signer, req RemoveRequest) (models.Receipt, error) {
	if err := validateCurrency(req.Currency); err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "rejected").Inc()
		return models.Receipt{}, err
	}
	if err := validateIssuer(req.Issuer); err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "rejected").Inc()
		return models.Receipt{}, err
	}

	account := signer.Address()
	key := cacheKey(account, req.Currency, req.Issuer)
	release := s.locks.acquire(key)
	defer release()

	existing, err := s.fetchLine(ctx, account, req.Currency, req.Issuer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "error").Inc()
		return models.Receipt{}, err
	}
	if existing == nil {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "rejected").Inc()
		return models.Receipt{}, fmt.Errorf("%w: %s/%s", ErrTrustlineNotFound, req.Currency, req.Issuer)
	}

	balance, err := ledger.ParseBalance(existing.Balance)
	if err != nil {
		return models.Receipt{}, err
	}
	if !balance.IsZero() {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "rejected").Inc()
		return models.Receipt{}, fmt.Errorf("%w: balance is %s", ErrNonZeroBalance, existing.Balance)
	}

	result, err := s.submit(ctx, ledger.TrustSet{
		Account:  account,
		Currency: req.Currency,
		Issuer:   req.Issuer,
		Limit:    "0",
	}, signer)
	if err != nil {
		metrics.TrustlineOpsTotal.WithLabelValues("remove", "error").Inc()
		return models.Receipt{}, err
	}

	s.cache.evict(key)
	metrics.TrustlineOpsTotal.WithLabelValues("remove", "ok").Inc()
	s.logger.Info("trustline removed", "account", account, "currency", req.Currency, "issuer", req.Issuer, "hash", result.Hash)
	return s.receipt(account, ledger.Line{Currency: req.Currency, Issuer: req.Issuer, Balance: "0", Limit: "0"}, result), nil
}

// Get is the cache-first read path. The returned bool reports whether the
// line exists on ledger; a cached "does not exist" answer counts as a hit.
func (s *Service) Get(ctx context.Context, account, currency, issuer string) (models.Trustline, bool, error) {
	key := cacheKey(account, currency, issuer)
	if line, exists, ok := s.cache.get(key); ok {
		metrics.TrustlineCacheLookups.WithLabelValues("hit").Inc()
		if !exists {
			return models.Trustline{}, false, nil
		}
		return s.toModel(account, line), true, nil
	}
	metrics.TrustlineCacheLookups.WithLabelValues("miss").Inc()

	line, err := s.lookupLine(ctx, account, currency, issuer)
	if err != nil {
		return models.Trustline{}, false, err
	}
	if line == nil {
		s.cache.put(key, ledger.Line{}, false)
		return models.Trustline{}, false, nil
	}
	s.cache.put(key, *line, true)
	return s.toModel(account, *line), true, nil
}

// List fetches every line for the account, applies the filter, and enriches
// each entry with balance/limit derived fields.
func (s *Service) List(ctx context.Context, account string, filter Filter) ([]models.TrustlineInfo, error) {
	lines, err := s.accountLines(ctx, account)
	if err != nil {
		return nil, err
	}
	out := make([]models.TrustlineInfo, 0, len(lines))
	for _, line := range lines {
		if filter.Currency != "" && line.Currency != filter.Currency {
			continue
		}
		if filter.Issuer != "" && line.Issuer != filter.Issuer {
			continue
		}
		info, err := enrich(account, line)
		if err != nil {
			s.logger.Warn("skipping unparseable ledger line", "account", account, "currency", line.Currency)
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// CheckCapacity reports whether the account can afford one more trustline
// right now, and the exact shortfall if not.
func (s *Service) CheckCapacity(ctx context.Context, account string) (models.CapacityReport, error) {
	info, err := s.accountInfo(ctx, account)
	if err != nil {
		return models.CapacityReport{}, err
	}
	return s.reserves.capacity(info), nil
}

func (s *Service) validateRequest(currency, issuer, limit string) (decimal.Decimal, error) {
	if err := validateCurrency(currency); err != nil {
		return decimal.Decimal{}, err
	}
	if err := validateIssuer(issuer); err != nil {
		return decimal.Decimal{}, err
	}
	return validateLimit(limit)
}

// fetchLine is the cache-aware lookup used by the mutation paths.
func (s *Service) fetchLine(ctx context.Context, account, currency, issuer string) (*ledger.Line, error) {
	key := cacheKey(account, currency, issuer)
	if line, exists, ok := s.cache.get(key); ok {
		metrics.TrustlineCacheLookups.WithLabelValues("hit").Inc()
		if !exists {
			return nil, nil
		}
		return &line, nil
	}
	metrics.TrustlineCacheLookups.WithLabelValues("miss").Inc()
	line, err := s.lookupLine(ctx, account, currency, issuer)
	if err != nil {
		return nil, err
	}
	if line == nil {
		s.cache.put(key, ledger.Line{}, false)
	} else {
		s.cache.put(key, *line, true)
	}
	return line, nil
}

func (s *Service) lookupLine(ctx context.Context, account, currency, issuer string) (*ledger.Line, error) {
	lines, err := s.accountLines(ctx, account)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].Currency == currency && lines[i].Issuer == issuer {
			return &lines[i], nil
		}
	}
	return nil, nil
}

func (s *Service) accountLines(ctx context.Context, account string) ([]ledger.Line, error) {
	start := s.now()
	lines, err := s.client.AccountLines(ctx, account)
	metrics.LedgerCallDuration.WithLabelValues("account_lines").Observe(s.now().Sub(start).Seconds())
	return lines, err
}

func (s *Service) accountInfo(ctx context.Context, account string) (ledger.AccountInfo, error) {
	start := s.now()
	info, err := s.client.AccountInfo(ctx, account)
	metrics.LedgerCallDuration.WithLabelValues("account_info").Observe(s.now().Sub(start).Seconds())
	return info, err
}

func (s *Service) submit(ctx context.Context, tx ledger.TrustSet, signer ledger.Signer) (ledger.SubmitResult, error) {
	if !s.limiter.Allow(tx.Account, s.now()) {
		return ledger.SubmitResult{}, fmt.Errorf("%w: account %s", ErrSubmitThrottled, tx.Account)
	}
	start := s.now()
	result, err := s.client.SubmitAndWait(ctx, tx, signer)
	metrics.LedgerCallDuration.WithLabelValues("submit").Observe(s.now().Sub(start).Seconds())
	return result, err
}

func (s *Service) toModel(account string, line ledger.Line) models.Trustline {
	return models.Trustline{
		Account:  account,
		Currency: line.Currency,
		Issuer:   line.Issuer,
		Limit:    line.Limit,
		Balance:  line.Balance,
	}
}

func (s *Service) receipt(account string, line ledger.Line, result ledger.SubmitResult) models.Receipt {
	return models.Receipt{
		Hash:      result.Hash,
		Validated: result.Validated,
		Line:      s.toModel(account, line),
	}
}
