package identity

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"forge-server-go/internal/domain/eventbus"
	"forge-server-go/internal/domain/identity/model"
	"forge-server-go/internal/docstore"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Exported aliases so transport code can stay inside this package's surface.
type (
	Identity  = model.Identity
	Principal = model.Principal
	Role      = model.Role
)

const versionBumpAttempts = 5

// defaultAdminName is the bootstrap account created on first start, matching
// the stock credentials shipped with the original deployment.
const defaultAdminName = "Admin"

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Store  docstore.Store
	Tokens *TokenCodec
	Logger model.Logger
}

// Service is the session authority: it owns identities, issues credentials
// and enforces version-based revocation.
type Service struct {
	repo   *Repository
	tokens *TokenCodec
	logger model.Logger
}

// NewService wires a Service using the supplied options.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "identity.new", "identity service requires a store")
	}
	if opts.Tokens == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "identity.new", "identity service requires a token codec")
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "identity.new", "identity service requires a logger")
	}
	return &Service{
		repo:   NewRepository(opts.Store),
		tokens: opts.Tokens,
		logger: opts.Logger,
	}, nil
}

// LoginResult carries the issued credential. NeedPasswordChange flags the
// stock admin account still running on its shipped password.
type LoginResult struct {
	Token              string `json:"token"`
	NeedPasswordChange bool   `json:"need_password_change,omitempty"`
}

// UpdateRequest describes a partial identity update; empty fields are left
// untouched.
type UpdateRequest struct {
	TargetUsername string
	NewUsername    string
	NewPassword    string
	NewRole        string
}

// Register creates an identity. Creating an admin account requires a valid
// admin credential in issuerToken; ordinary accounts register freely.
func (s *Service) Register(ctx context.Context, issuerToken, username, password, role string) (model.Identity, error) {
	if username == "" || password == "" {
		return model.Identity{}, platformerrors.New(
			platformerrors.KindInvalid, "identity.register", "username and password are required")
	}
	if role == "" {
		role = string(model.RoleUser)
	}
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return model.Identity{}, err
	}

	if parsedRole == model.RoleAdmin {
		if issuerToken == "" {
			return model.Identity{}, platformerrors.New(
				platformerrors.KindInvalid, "identity.register", "missing issuer token")
		}
		principal, err := s.Authorize(ctx, issuerToken)
		if err != nil {
			return model.Identity{}, err
		}
		if !principal.IsAdmin() {
			return model.Identity{}, platformerrors.New(
				platformerrors.KindForbidden, "identity.register", "only admins can create admin accounts")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Identity{}, platformerrors.Wrap(
			platformerrors.KindAuth, "identity.register", "password hash failed", err)
	}

	identity := model.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         parsedRole,
		TokenVersion: 0,
	}
	if err := s.repo.Insert(ctx, identity); err != nil {
		if platformerrors.IsKind(err, platformerrors.KindConflict) {
			return model.Identity{}, platformerrors.New(
				platformerrors.KindInvalid, "identity.register", "user already exists")
		}
		return model.Identity{}, err
	}

	s.logger.Info("registered identity %s with role %s", username, parsedRole)
	return identity, nil
}

// Login verifies credentials, advances the token version so every earlier
// credential dies, and issues a token embedding the new version.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	identity, _, err := s.repo.Get(ctx, username)
	if err != nil {
		return LoginResult{}, invalidCredentialsError()
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, invalidCredentialsError()
	}

	bumped, err := s.bumpTokenVersion(ctx, username)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(bumped.Username, bumped.Role, bumped.TokenVersion)
	if err != nil {
		return LoginResult{}, err
	}

	eventbus.PublishAsync(eventbus.EventIdentityLogin, eventbus.IdentityEventData{
		Username:     bumped.Username,
		Role:         string(bumped.Role),
		TokenVersion: bumped.TokenVersion,
	})

	return LoginResult{
		Token:              token,
		NeedPasswordChange: username == defaultAdminName && password == defaultAdminName,
	}, nil
}

// Logout revokes every outstanding credential for the caller by advancing
// the stored token version.
func (s *Service) Logout(ctx context.Context, token string) error {
	principal, err := s.Authorize(ctx, token)
	if err != nil {
		return err
	}
	bumped, err := s.bumpTokenVersion(ctx, principal.Username)
	if err != nil {
		return err
	}
	eventbus.PublishAsync(eventbus.EventIdentityRevoked, eventbus.IdentityEventData{
		Username:     bumped.Username,
		Role:         string(bumped.Role),
		TokenVersion: bumped.TokenVersion,
	})
	return nil
}

// Authorize performs the two-step credential check: stateless signature and
// expiry verification, then a stateful comparison of the embedded token
// version against the stored identity. A missing identity and a stale
// version are indistinguishable from a bad token.
func (s *Service) Authorize(ctx context.Context, token string) (model.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return model.Principal{}, err
	}
	identity, _, err := s.repo.Get(ctx, claims.Username)
	if err != nil || identity.TokenVersion != claims.TokenVersion {
		return model.Principal{}, invalidTokenError()
	}
	return model.Principal{
		Username:     identity.Username,
		Role:         identity.Role,
		TokenVersion: identity.TokenVersion,
	}, nil
}

// Get returns the identity record for a username.
func (s *Service) Get(ctx context.Context, username string) (model.Identity, error) {
	identity, _, err := s.repo.Get(ctx, username)
	return identity, err
}

// Update applies a partial update. Callers may update themselves; only
// admins may update others or change roles. Password and role changes
// revoke all outstanding credentials of the target.
func (s *Service) Update(ctx context.Context, token string, req UpdateRequest) (model.Identity, error) {
	principal, err := s.Authorize(ctx, token)
	if err != nil {
		return model.Identity{}, err
	}

	target, rev, err := s.repo.Get(ctx, req.TargetUsername)
	if err != nil {
		return model.Identity{}, err
	}
	if !principal.IsAdmin() && principal.Username != target.Username {
		return model.Identity{}, platformerrors.New(
			platformerrors.KindForbidden, "identity.update", "cannot update another user")
	}

	revoke := false

	if req.NewRole != "" {
		if !principal.IsAdmin() {
			return model.Identity{}, platformerrors.New(
				platformerrors.KindForbidden, "identity.update", "only admins can change roles")
		}
		newRole, err := model.ParseRole(req.NewRole)
		if err != nil {
			return model.Identity{}, err
		}
		if newRole != target.Role {
			target.Role = newRole
			revoke = true
		}
	}

	if req.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return model.Identity{}, platformerrors.Wrap(
				platformerrors.KindAuth, "identity.update", "password hash failed", err)
		}
		target.PasswordHash = string(hash)
		revoke = true
	}

	if revoke {
		target.TokenVersion++
	}

	oldUsername := target.Username
	if req.NewUsername != "" && req.NewUsername != target.Username {
		target.Username = req.NewUsername
		if err := s.repo.Rename(ctx, oldUsername, target); err != nil {
			return model.Identity{}, err
		}
	} else {
		if _, err := s.repo.Replace(ctx, target, rev); err != nil {
			return model.Identity{}, err
		}
	}

	if revoke {
		eventbus.PublishAsync(eventbus.EventIdentityRevoked, eventbus.IdentityEventData{
			Username:     target.Username,
			Role:         string(target.Role),
			TokenVersion: target.TokenVersion,
		})
	}

	s.logger.Info("identity %s updated by %s", oldUsername, principal.Username)
	return target, nil
}

// Delete removes an identity; users may delete themselves, admins anyone.
func (s *Service) Delete(ctx context.Context, token, username string) error {
	principal, err := s.Authorize(ctx, token)
	if err != nil {
		return err
	}
	if principal.Username != username && !principal.IsAdmin() {
		return platformerrors.New(
			platformerrors.KindForbidden, "identity.delete", "cannot delete another user")
	}

	existed, err := s.repo.Delete(ctx, username)
	if err != nil {
		return err
	}
	if !existed {
		return platformerrors.New(
			platformerrors.KindNotFound, "identity.delete", "user not found")
	}
	s.logger.Info("identity %s deleted by %s", username, principal.Username)
	return nil
}

// SeedDefaultAdmin creates the bootstrap admin account when no identity with
// that name exists yet.
func (s *Service) SeedDefaultAdmin(ctx context.Context) error {
	if _, _, err := s.repo.Get(ctx, defaultAdminName); err == nil {
		return nil
	} else if !platformerrors.IsKind(err, platformerrors.KindNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminName), bcrypt.DefaultCost)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindBootstrap, "identity.seed", "password hash failed", err)
	}
	admin := model.Identity{
		ID:           uuid.NewString(),
		Username:     defaultAdminName,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		TokenVersion: 0,
	}
	if err := s.repo.Insert(ctx, admin); err != nil {
		return err
	}
	s.logger.Warn("seeded default admin account; change its password immediately")
	return nil
}

// bumpTokenVersion advances the stored version with a bounded CAS retry so
// concurrent logins against the same identity cannot lose an increment.
func (s *Service) bumpTokenVersion(ctx context.Context, username string) (model.Identity, error) {
	for attempt := 0; attempt < versionBumpAttempts; attempt++ {
		identity, rev, err := s.repo.Get(ctx, username)
		if err != nil {
			return model.Identity{}, err
		}
		identity.TokenVersion++
		if _, err := s.repo.Replace(ctx, identity, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return model.Identity{}, err
		}
		return identity, nil
	}
	return model.Identity{}, platformerrors.New(
		platformerrors.KindConflict, "identity.bump_version", "too much contention on identity")
}

func invalidCredentialsError() error {
	return platformerrors.New(
		platformerrors.KindAuth, "identity.login", "invalid credentials")
}
