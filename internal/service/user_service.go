package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/identity-core/internal/config"
	"github.com/sandeepkv93/identity-core/internal/domain"
	"github.com/sandeepkv93/identity-core/internal/idgen"
	"github.com/sandeepkv93/identity-core/internal/observability"
	"github.com/sandeepkv93/identity-core/internal/repository"
	"github.com/sandeepkv93/identity-core/internal/security"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// maxLockDays bounds LockUser so the lock expiry cannot overflow int64 milliseconds.
const maxLockDays = 100 * 365

type UserServiceConfig struct {
	CacheNamespace     string
	DefaultImageURL    string
	SaltLength         int
	FederatedProviders []domain.AuthProvider
}

func NewUserServiceConfig(cfg *config.Config) UserServiceConfig {
	providers := make([]domain.AuthProvider, 0, len(cfg.IdentityFederatedProviders))
	for _, p := range cfg.IdentityFederatedProviders {
		providers = append(providers, domain.AuthProvider(p))
	}
	return UserServiceConfig{
		CacheNamespace:     cfg.UserCacheNamespace,
		DefaultImageURL:    cfg.IdentityDefaultImageURL,
		SaltLength:         cfg.IdentitySaltLength,
		FederatedProviders: providers,
	}
}

// UserService owns user records and their local and federated credentials. The store is the
// source of truth; the cache is consulted on reads and invalidated after every field update.
type UserService struct {
	store  repository.Store
	cache  UserCacheStore
	ids    idgen.Generator
	hasher security.PasswordHasher
	random security.RandomService
	logger *slog.Logger
	now    func() time.Time

	namespace       string
	defaultImageURL string
	saltLength      int
	federated       map[domain.AuthProvider]bool

	loads singleflight.Group
}

func NewUserService(
	store repository.Store,
	cache UserCacheStore,
	ids idgen.Generator,
	hasher security.PasswordHasher,
	random security.RandomService,
	cfg UserServiceConfig,
	logger *slog.Logger,
) *UserService {
	if cache == nil {
		cache = NewNoopUserCacheStore()
	}
	if cfg.CacheNamespace == "" {
		cfg.CacheNamespace = "_users"
	}
	if cfg.SaltLength <= 0 {
		cfg.SaltLength = 64
	}
	federated := make(map[domain.AuthProvider]bool, len(cfg.FederatedProviders))
	for _, p := range cfg.FederatedProviders {
		if p.SupportsFederated() {
			federated[p] = true
		}
	}
	return &UserService{
		store:           store,
		cache:           cache,
		ids:             ids,
		hasher:          hasher,
		random:          random,
		logger:          observability.Component(logger, "user_service"),
		now:             time.Now,
		namespace:       cfg.CacheNamespace,
		defaultImageURL: cfg.DefaultImageURL,
		saltLength:      cfg.SaltLength,
		federated:       federated,
	}
}

// GetUser returns the user with the given id, reading through the cache.
func (s *UserService) GetUser(ctx context.Context, id string) (_ *domain.User, err error) {
	ctx, span, done := s.begin(ctx, "get_user", attribute.String("user.id", id))
	defer func() { done(err) }()

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if u, ok := s.cacheGet(ctx, id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return u, nil
	}

	// The load is shared with concurrent callers, so one caller's cancellation must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := s.loads.Do(id, func() (any, error) {
		u, err := s.store.Users().FindByID(loadCtx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		s.cacheSet(loadCtx, u)
		return u, nil
	})
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Bool("load.shared", shared))
	if err != nil {
		return nil, err
	}
	u := *v.(*domain.User)
	return &u, nil
}

// GetUsers resolves every id it can. Ids that exist in neither the cache nor the store are
// absent from the result; blank and repeated ids are ignored.
func (s *UserService) GetUsers(ctx context.Context, ids ...string) (_ map[string]*domain.User, err error) {
	ctx, span, done := s.begin(ctx, "get_users", attribute.Int("user.count", len(ids)))
	defer func() { done(err) }()

	wanted := uniqueIDs(ids)
	out := make(map[string]*domain.User, len(wanted))
	if len(wanted) == 0 {
		return out, nil
	}

	cached, cacheErr := s.cache.BatchGet(ctx, s.namespace, wanted)
	if cacheErr != nil {
		s.cacheFailure(ctx, "batch_get", "", cacheErr)
		cached = nil
	}
	var misses []string
	for _, id := range wanted {
		payload, ok := cached[id]
		if !ok {
			observability.RecordUserCacheEvent(ctx, "batch_get", "miss")
			misses = append(misses, id)
			continue
		}
		u, decodeErr := decodeCachedUser(payload)
		if decodeErr != nil {
			observability.RecordUserCacheEvent(ctx, "batch_get", "stale")
			misses = append(misses, id)
			continue
		}
		observability.RecordUserCacheEvent(ctx, "batch_get", "hit")
		out[id] = u
	}
	span.SetAttributes(attribute.Int("cache.misses", len(misses)))
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := s.store.Users().FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for i := range loaded {
		u := &loaded[i]
		out[u.ID] = u
		s.cacheSet(ctx, u)
	}
	return out, nil
}

// ListUsersPage lists users newest id first, optionally restricted to one role.
func (s *UserService) ListUsersPage(ctx context.Context, req repository.PageRequest) (_ repository.PageResult[domain.User], err error) {
	ctx, _, done := s.begin(ctx, "list_users_page", attribute.String("filter.role", string(req.Role)))
	defer func() { done(err) }()
	page, err := s.store.Users().ListPaged(ctx, req)
	if errors.Is(err, repository.ErrInvalidPageFilter) {
		return page, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	return page, err
}

// FetchUserByEmail returns nil without error when no user has the address.
func (s *UserService) FetchUserByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	ctx, _, done := s.begin(ctx, "fetch_user_by_email")
	defer func() { done(err) }()

	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, nil
	}
	u, err := s.store.Users().FindByEmail(ctx, normalized)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

// CreateLocalUser inserts a subscriber and its password credential in one transaction.
func (s *UserService) CreateLocalUser(ctx context.Context, email, password, name, imageURL string) (_ *domain.User, err error) {
	ctx, _, done := s.begin(ctx, "create_local_user")
	defer func() { done(err) }()

	u, err := s.newUser(email, name, imageURL)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	credID, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	salt, err := s.random.String(s.saltLength)
	if err != nil {
		return nil, err
	}
	cred := &domain.LocalCredential{
		ID:     credID,
		UserID: u.ID,
		Salt:   salt,
		Passwd: s.hasher.Digest(password, salt),
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		return tx.LocalCredentials().Create(ctx, cred)
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, u.Email)
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "local user created", "user_id", u.ID)
	return u, nil
}

var errRetryMissedCredential = errors.New("federated credential missing after conflict")

// ResolveFederatedLogin returns the credential for (provider, assertion.AuthID), creating the
// user and credential on first login. The token and expiry are refreshed on every call.
func (s *UserService) ResolveFederatedLogin(ctx context.Context, provider domain.AuthProvider, assertion FederatedAssertion) (_ *domain.FederatedCredential, err error) {
	ctx, span, done := s.begin(ctx, "resolve_federated_login",
		attribute.String("auth.provider", string(provider)),
	)
	defer func() { done(err) }()

	if !provider.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if err := assertion.validate(); err != nil {
		return nil, err
	}

	cred, err := s.resolveFederated(ctx, provider, assertion, true)
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return cred, err
	}

	// A concurrent login created the same credential between our lookup and insert. The
	// failed transaction is gone, so look again in a fresh one.
	span.AddEvent("federated.conflict_retry")
	s.logger.InfoContext(ctx, "federated credential conflict, retrying lookup",
		"provider", provider, "auth_id", assertion.AuthID)
	cred, err = s.resolveFederated(ctx, provider, assertion, false)
	switch {
	case err == nil:
		observability.RecordFederatedConflictRetry(ctx, "resolved")
		return cred, nil
	case errors.Is(err, errRetryMissedCredential), errors.Is(err, repository.ErrDuplicateKey):
		observability.RecordFederatedConflictRetry(ctx, "failed")
		return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateCredential, provider, assertion.AuthID)
	default:
		observability.RecordFederatedConflictRetry(ctx, "error")
		return nil, err
	}
}

func (s *UserService) resolveFederated(ctx context.Context, provider domain.AuthProvider, assertion FederatedAssertion, allowCreate bool) (*domain.FederatedCredential, error) {
	expiresAt := s.now().Add(assertion.Lifetime).UnixMilli()
	var out *domain.FederatedCredential
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		existing, err := tx.FederatedCredentials().FindByProvider(ctx, provider, assertion.AuthID)
		if err == nil {
			if err := tx.FederatedCredentials().UpdateToken(ctx, existing.ID, assertion.Token, expiresAt); err != nil {
				return err
			}
			existing.AuthToken = assertion.Token
			existing.ExpiresAt = expiresAt
			out = existing
			return nil
		}
		if !errors.Is(err, repository.ErrFederatedCredentialNotFound) {
			return err
		}
		if !allowCreate {
			return errRetryMissedCredential
		}
		if !s.federated[provider] {
			return fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
		}

		u, err := s.newFederatedUser(provider, assertion)
		if err != nil {
			return err
		}
		credID, err := s.ids.NewID()
		if err != nil {
			return err
		}
		cred := &domain.FederatedCredential{
			ID:               credID,
			UserID:           u.ID,
			AuthProviderType: provider,
			AuthID:           assertion.AuthID,
			AuthToken:        assertion.Token,
			ExpiresAt:        expiresAt,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		if err := tx.FederatedCredentials().Create(ctx, cred); err != nil {
			return err
		}
		out = cred
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchFederatedCredential returns nil without error when no credential matches.
func (s *UserService) FetchFederatedCredential(ctx context.Context, provider domain.AuthProvider, authID string) (_ *domain.FederatedCredential, err error) {
	ctx, _, done := s.begin(ctx, "fetch_federated_credential")
	defer func() { done(err) }()

	cred, err := s.store.FederatedCredentials().FindByProvider(ctx, provider, authID)
	if errors.Is(err, repository.ErrFederatedCredentialNotFound) {
		return nil, nil
	}
	return cred, err
}

// FetchLocalCredentialByID returns nil without error when no credential matches.
func (s *UserService) FetchLocalCredentialByID(ctx context.Context, id string) (_ *domain.LocalCredential, err error) {
	ctx, _, done := s.begin(ctx, "fetch_local_credential_by_id")
	defer func() { done(err) }()

	cred, err := s.store.LocalCredentials().FindByID(ctx, id)
	if errors.Is(err, repository.ErrLocalCredentialNotFound) {
		return nil, nil
	}
	return cred, err
}

func (s *UserService) FetchLocalCredentialByUserID(ctx context.Context, userID string) (_ *domain.LocalCredential, err error) {
	ctx, _, done := s.begin(ctx, "fetch_local_credential_by_user_id")
	defer func() { done(err) }()

	cred, err := s.store.LocalCredentials().FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrLocalCredentialNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrLocalCredentialNotFound, userID)
	}
	return cred, err
}

// AuthenticateLocal checks a password against the user's local credential. Unknown emails,
// federated-only accounts and wrong passwords are indistinguishable to the caller.
func (s *UserService) AuthenticateLocal(ctx context.Context, email, password string) (_ *domain.User, err error) {
	ctx, _, done := s.begin(ctx, "authenticate_local")
	defer func() { done(err) }()

	u, err := s.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		observability.RecordLocalAuthEvent(ctx, "unknown_email")
		return nil, ErrInvalidCredentials
	}
	cred, err := s.FetchLocalCredentialByUserID(ctx, u.ID)
	if errors.Is(err, ErrLocalCredentialNotFound) {
		observability.RecordLocalAuthEvent(ctx, "no_local_credential")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, cred.Salt, cred.Passwd) {
		observability.RecordLocalAuthEvent(ctx, "invalid_password")
		return nil, ErrInvalidCredentials
	}
	if u.IsLocked(s.now()) {
		observability.RecordLocalAuthEvent(ctx, "locked")
		return nil, fmt.Errorf("%w until %s", ErrUserLocked, time.UnixMilli(u.LockedUntil).UTC().Format(time.RFC3339))
	}
	observability.RecordLocalAuthEvent(ctx, "success")
	return u, nil
}

// SetRole persists only the role column and evicts the cached user before returning.
func (s *UserService) SetRole(ctx context.Context, user *domain.User, role domain.Role) (err error) {
	ctx, _, done := s.begin(ctx, "set_role", attribute.String("user.role", string(role)))
	defer func() { done(err) }()

	if user == nil || user.ID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	previous := user.Role
	user.Role = role
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		return tx.Users().UpdateRole(ctx, user.ID, role)
	})
	if err != nil {
		user.Role = previous
		return translateUserErr(err)
	}
	s.evict(ctx, user.ID)
	return nil
}

// LockUser locks the account for the given number of days. Non-positive days leave the user
// untouched; more than maxLockDays is rejected with ErrInvalidInput.
func (s *UserService) LockUser(ctx context.Context, user *domain.User, days int) (err error) {
	ctx, _, done := s.begin(ctx, "lock_user", attribute.Int("lock.days", days))
	defer func() { done(err) }()

	if user == nil || user.ID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	if days <= 0 {
		return nil
	}
	if days > maxLockDays {
		return fmt.Errorf("%w: lock of %d days exceeds %d", ErrInvalidInput, days, maxLockDays)
	}
	previous := user.LockedUntil
	user.LockedUntil = s.now().UnixMilli() + int64(days)*millisPerDay
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		return tx.Users().UpdateLockedUntil(ctx, user.ID, user.LockedUntil)
	})
	if err != nil {
		user.LockedUntil = previous
		return translateUserErr(err)
	}
	s.evict(ctx, user.ID)
	return nil
}

// InvalidateUser removes the cached copy of a user. Unlike the internal eviction after
// updates, cache failures are returned.
func (s *UserService) InvalidateUser(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.namespace, id); err != nil {
		observability.RecordUserCacheEvent(ctx, "delete", "error")
		return err
	}
	observability.RecordUserCacheEvent(ctx, "delete", "evict")
	return nil
}

func (s *UserService) newUser(email, name, imageURL string) (*domain.User, error) {
	normalized, err := checkEmail(email)
	if err != nil {
		return nil, err
	}
	checkedName, err := checkName(name)
	if err != nil {
		return nil, err
	}
	image, err := checkImageURL(imageURL, s.defaultImageURL)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       id,
		Email:    normalized,
		Name:     checkedName,
		ImageURL: image,
		Role:     domain.DefaultRole,
	}, nil
}

// newFederatedUser derives a placeholder address "<id>@<provider>" since providers do not
// reliably share one. The id keeps its case; only the provider name is lowercased.
func (s *UserService) newFederatedUser(provider domain.AuthProvider, assertion FederatedAssertion) (*domain.User, error) {
	checkedName, err := checkName(assertion.Name)
	if err != nil {
		return nil, err
	}
	image, err := checkImageURL(assertion.ImageURL, s.defaultImageURL)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       id,
		Email:    id + "@" + strings.ToLower(string(provider)),
		Name:     checkedName,
		ImageURL: image,
		Role:     domain.DefaultRole,
	}, nil
}

func (s *UserService) cacheGet(ctx context.Context, id string) (*domain.User, bool) {
	payload, ok, err := s.cache.Get(ctx, s.namespace, id)
	if err != nil {
		s.cacheFailure(ctx, "get", id, err)
		return nil, false
	}
	if !ok {
		observability.RecordUserCacheEvent(ctx, "get", "miss")
		return nil, false
	}
	u, err := decodeCachedUser(payload)
	if err != nil {
		observability.RecordUserCacheEvent(ctx, "get", "stale")
		s.logger.DebugContext(ctx, "discarding unreadable user cache entry", "user_id", id, "error", err)
		return nil, false
	}
	observability.RecordUserCacheEvent(ctx, "get", "hit")
	return u, true
}

func (s *UserService) cacheSet(ctx context.Context, u *domain.User) {
	payload, err := encodeCachedUser(u)
	if err != nil {
		s.cacheFailure(ctx, "set", u.ID, err)
		return
	}
	if err := s.cache.Set(ctx, s.namespace, u.ID, payload); err != nil {
		s.cacheFailure(ctx, "set", u.ID, err)
		return
	}
	observability.RecordUserCacheEvent(ctx, "set", "write")
}

func (s *UserService) evict(ctx context.Context, id string) {
	if err := s.InvalidateUser(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "user cache eviction failed", "user_id", id, "error", err)
	}
}

func (s *UserService) cacheFailure(ctx context.Context, op, id string, err error) {
	observability.RecordUserCacheEvent(ctx, op, "error")
	s.logger.WarnContext(ctx, "user cache unavailable", "operation", op, "user_id", id, "error", err)
}

// begin opens a span for an operation and returns a func that records its outcome.
func (s *UserService) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "identity."+op)
	span.SetAttributes(attrs...)
	return ctx, span, func(err error) {
		observability.RecordIdentityOperationDuration(ctx, op, operationOutcome(err), time.Since(start))
		observability.EndSpan(span, err)
	}
}

func operationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrLocalCredentialNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateCredential):
		return "conflict"
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserLocked):
		return "rejected"
	default:
		return "error"
	}
}

func translateUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
