package identity

import (
	"context"
	"testing"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/identity/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Options{
		Store:  docstore.NewMemory(),
		Tokens: NewTokenCodec("service-test-secret"),
		Logger: nopLogger{},
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	identity, err := svc.Register(ctx, "", "alice", "pw", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if identity.Role != model.RoleUser {
		t.Errorf("expected default User role, got %s", identity.Role)
	}
	if identity.TokenVersion != 0 {
		t.Errorf("expected initial version 0, got %d", identity.TokenVersion)
	}

	if _, err := svc.Register(ctx, "", "alice", "pw2", ""); !platformerrors.IsKind(err, platformerrors.KindInvalid) {
		t.Fatalf("expected invalid on duplicate username, got %v", err)
	}

	res, err := svc.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.NeedPasswordChange {
		t.Error("unexpected password change flag")
	}

	// Issued token must embed the post-increment version.
	stored, err := svc.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if stored.TokenVersion != 1 {
		t.Fatalf("expected version 1 after login, got %d", stored.TokenVersion)
	}
	principal, err := svc.Authorize(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if principal.TokenVersion != stored.TokenVersion {
		t.Errorf("token version %d != stored %d", principal.TokenVersion, stored.TokenVersion)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "pw"); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("expected auth failure for unknown user, got %v", err)
	}
}

func TestLoginRevokesEarlierTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "", "bob", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	first, err := svc.Login(ctx, "bob", "pw")
	if err != nil {
		t.Fatalf("first Login error: %v", err)
	}
	if _, err := svc.Authorize(ctx, first.Token); err != nil {
		t.Fatalf("first token should authorize: %v", err)
	}

	second, err := svc.Login(ctx, "bob", "pw")
	if err != nil {
		t.Fatalf("second Login error: %v", err)
	}

	if _, err := svc.Authorize(ctx, first.Token); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("stale token must fail authorization, got %v", err)
	}
	if _, err := svc.Authorize(ctx, second.Token); err != nil {
		t.Fatalf("fresh token should authorize: %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "", "carol", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	res, err := svc.Login(ctx, "carol", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, err := svc.Authorize(ctx, res.Token); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("token must be dead after logout, got %v", err)
	}
}

func TestRegisterAdminRequiresAdminIssuer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "", "eve", "pw", "Admin"); !platformerrors.IsKind(err, platformerrors.KindInvalid) {
		t.Fatalf("expected invalid without issuer token, got %v", err)
	}

	if _, err := svc.Register(ctx, "", "user1", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	userLogin, err := svc.Login(ctx, "user1", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if _, err := svc.Register(ctx, userLogin.Token, "eve", "pw", "Admin"); !platformerrors.IsKind(err, platformerrors.KindForbidden) {
		t.Fatalf("expected forbidden for non-admin issuer, got %v", err)
	}

	if err := svc.SeedDefaultAdmin(ctx); err != nil {
		t.Fatalf("SeedDefaultAdmin error: %v", err)
	}
	adminLogin, err := svc.Login(ctx, "Admin", "Admin")
	if err != nil {
		t.Fatalf("admin Login error: %v", err)
	}
	if !adminLogin.NeedPasswordChange {
		t.Error("expected password change flag for stock admin credentials")
	}
	if _, err := svc.Register(ctx, adminLogin.Token, "eve", "pw", "Admin"); err != nil {
		t.Fatalf("admin issuer should create admin: %v", err)
	}

	if _, err := svc.Register(ctx, "", "mallory", "pw", "Superuser"); !platformerrors.IsKind(err, platformerrors.KindInvalid) {
		t.Fatalf("expected invalid role rejection, got %v", err)
	}
}

func TestUpdateRevocationAndAuthorization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.SeedDefaultAdmin(ctx); err != nil {
		t.Fatalf("SeedDefaultAdmin error: %v", err)
	}
	if _, err := svc.Register(ctx, "", "dave", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := svc.Register(ctx, "", "frank", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	daveLogin, err := svc.Login(ctx, "dave", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	// Ordinary users cannot touch other accounts or roles.
	if _, err := svc.Update(ctx, daveLogin.Token, UpdateRequest{TargetUsername: "frank", NewPassword: "x"}); !platformerrors.IsKind(err, platformerrors.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, daveLogin.Token, UpdateRequest{TargetUsername: "dave", NewRole: "Admin"}); !platformerrors.IsKind(err, platformerrors.KindForbidden) {
		t.Fatalf("expected forbidden role change, got %v", err)
	}

	// Self password change revokes the session that performed it.
	if _, err := svc.Update(ctx, daveLogin.Token, UpdateRequest{TargetUsername: "dave", NewPassword: "newpw"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if _, err := svc.Authorize(ctx, daveLogin.Token); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("token must die after password change, got %v", err)
	}
	if _, err := svc.Login(ctx, "dave", "newpw"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// Admin role change also revokes.
	adminLogin, err := svc.Login(ctx, "Admin", "Admin")
	if err != nil {
		t.Fatalf("admin Login error: %v", err)
	}
	frankLogin, err := svc.Login(ctx, "frank", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	updated, err := svc.Update(ctx, adminLogin.Token, UpdateRequest{TargetUsername: "frank", NewRole: "Admin"})
	if err != nil {
		t.Fatalf("admin Update error: %v", err)
	}
	if updated.Role != model.RoleAdmin {
		t.Errorf("expected Admin role, got %s", updated.Role)
	}
	if _, err := svc.Authorize(ctx, frankLogin.Token); !platformerrors.IsKind(err, platformerrors.KindAuth) {
		t.Fatalf("token must die after role change, got %v", err)
	}

	if _, err := svc.Update(ctx, adminLogin.Token, UpdateRequest{TargetUsername: "ghost"}); !platformerrors.IsKind(err, platformerrors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "", "gone", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := svc.Register(ctx, "", "other", "pw", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	login, err := svc.Login(ctx, "gone", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := svc.Delete(ctx, login.Token, "other"); !platformerrors.IsKind(err, platformerrors.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, login.Token, "gone"); err != nil {
		t.Fatalf("self delete error: %v", err)
	}
	if _, err := svc.Get(ctx, "gone"); !platformerrors.IsKind(err, platformerrors.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
