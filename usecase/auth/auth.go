package auth

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/validate"
	"github.com/fastygo/storefront/usecase/session"
)

// Navigator performs page navigation for the caller.
type Navigator interface {
	Redirect(target string)
	Reload()
}

// LoginFunc authenticates credentials against the remote API.
type LoginFunc func(ctx context.Context, email, password string) (domain.User, error)

// Surface describes one side of the site guarded by a gate.
type Surface struct {
	Namespace domain.Namespace
	LoginPath string
	HomePath  string
}

var (
	AdminSurface = Surface{Namespace: domain.NamespaceAdmin, LoginPath: "/admin/login.html", HomePath: "/admin/index.html"}
	UserSurface  = Surface{Namespace: domain.NamespaceUser, LoginPath: "/login.html", HomePath: "/index.html"}
)

type Credentials struct {
	Email    string
	Password string
}

// LoginObserver is notified of every login attempt.
type LoginObserver interface {
	Login(ns domain.Namespace, outcome string)
}

// UseCase bridges session state to page behaviour for one surface.
type UseCase struct {
	surface  Surface
	login    LoginFunc
	observer LoginObserver
	logger   *zap.Logger

	// expired maps profile IDs to the target recorded by Expired.
	mu      sync.Mutex
	expired map[string]string
}

func New(surface Surface, login LoginFunc, observer LoginObserver, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		surface:  surface,
		login:    login,
		observer: observer,
		logger:   logger.With(zap.String("surface", surface.Namespace.String())),
		expired:  make(map[string]string),
	}
}

func (uc *UseCase) Surface() Surface {
	return uc.surface
}

// RequireAuth guards a protected page. Without a valid session it clears
// leftovers and redirects to the login page exactly once.
func (uc *UseCase) RequireAuth(ctx context.Context, store *session.Store, nav Navigator) bool {
	if !store.IsSessionValid(ctx) {
		store.ClearSession(ctx)
		nav.Redirect(uc.surface.LoginPath)
		return false
	}
	store.UpdateActivity(ctx)
	return true
}

// Login authenticates, persists the session and navigates home.
// Nothing navigates unless the session was saved.
func (uc *UseCase) Login(ctx context.Context, store *session.Store, nav Navigator, creds Credentials) (domain.User, error) {
	if err := uc.checkStore(store); err != nil {
		return nil, err
	}
	errs := validate.Errors{}.
		Check("email", validate.Email(creds.Email)).
		Check("password", validate.Required(creds.Password, "Password"))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := uc.login(ctx, creds.Email, creds.Password)
	if err != nil {
		uc.record("failed")
		return nil, err
	}

	if !store.SaveSession(ctx, user) {
		uc.record("not_persisted")
		uc.logger.Error("login succeeded but session was not persisted")
		return nil, domain.ErrSessionNotPersisted
	}
	uc.record("success")
	nav.Redirect(uc.surface.HomePath)
	return user, nil
}

// Logout clears the session and hard-navigates: admins go to the login
// page, storefront visitors reload the current page.
func (uc *UseCase) Logout(ctx context.Context, store *session.Store, nav Navigator) {
	store.ClearSession(ctx)
	if uc.surface.Namespace == domain.NamespaceAdmin {
		nav.Redirect(uc.surface.LoginPath)
		return
	}
	nav.Reload()
}

// CurrentUser returns the signed-in user for personalisation, or nil.
func (uc *UseCase) CurrentUser(ctx context.Context, store *session.Store) domain.User {
	return store.GetCurrentUser(ctx)
}

// HandleExpired reacts to a session force-expired by the activity sweep.
// It returns where the owning page should go; "" means update in place.
func (uc *UseCase) HandleExpired(ns domain.Namespace) string {
	uc.logger.Info("session expired by inactivity sweep", zap.String("namespace", ns.String()))
	if ns == domain.NamespaceAdmin {
		return AdminSurface.LoginPath
	}
	return ""
}

// Expired records that the sweep force-expired profileID's session on this
// surface and returns the navigation target from HandleExpired. The notice
// stays pending until TakeExpiry.
func (uc *UseCase) Expired(profileID string) string {
	target := uc.HandleExpired(uc.surface.Namespace)
	uc.mu.Lock()
	uc.expired[profileID] = target
	uc.mu.Unlock()
	return target
}

// TakeExpiry returns and clears the pending expiry notice for profileID.
func (uc *UseCase) TakeExpiry(profileID string) (string, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	target, ok := uc.expired[profileID]
	delete(uc.expired, profileID)
	return target, ok
}

func (uc *UseCase) checkStore(store *session.Store) error {
	if store == nil || store.Namespace() != uc.surface.Namespace {
		return domain.WrapError(domain.ErrCodeInternal, "session store does not match surface",
			fmt.Errorf("surface %s", uc.surface.Namespace))
	}
	return nil
}

func (uc *UseCase) record(outcome string) {
	if uc.observer != nil {
		uc.observer.Login(uc.surface.Namespace, outcome)
	}
}
