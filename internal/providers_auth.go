package internal

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hash"
)

// AuthConfig is the "auth" config section.
type AuthConfig struct {
	Cookie        string        `mapstructure:"cookie"`
	Lifetime      time.Duration `mapstructure:"lifetime"`
	TokenLifetime time.Duration `mapstructure:"csrf_lifetime"`
	CSRFExcept    []string      `mapstructure:"csrf_except"`
	Domain        string        `mapstructure:"domain"`
	Secure        bool          `mapstructure:"secure"`
	SameSite      string        `mapstructure:"same_site"`
	GuestRedirect string        `mapstructure:"guest_redirect"`
}

// AuthServiceProvider binds the cookie guard and the CSRF token issuer, and
// aliases the "auth", "guest" and "csrf" middleware.
type AuthServiceProvider struct {
	// Users loads signed-in users. Without it the guard resolves an
	// auth.UserProvider from the container and otherwise knows no users.
	Users auth.UserProvider
}

const serviceCookies = "cookies"

func (p *AuthServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, serviceCookies, func(container.Resolver) (*auth.CookieJar, error) {
		key, err := appKey(app)
		if err != nil {
			return nil, err
		}
		cfg, err := authConfig(app)
		if err != nil {
			return nil, err
		}
		return auth.NewCookieJar(key,
			auth.WithCookieDomain(cfg.Domain),
			auth.WithSecureCookies(cfg.Secure),
			auth.WithSameSite(sameSite(cfg.SameSite)),
		)
	})

	container.ProvideNamed(app.Container, ServiceAuth, func(r container.Resolver) (*auth.Guard, error) {
		jar, err := container.MakeNamed[*auth.CookieJar](r, serviceCookies)
		if err != nil {
			return nil, err
		}
		cfg, err := authConfig(app)
		if err != nil {
			return nil, err
		}

		opts := []auth.GuardOption{auth.WithLogger(app.Logger())}
		if cfg.Cookie != "" {
			opts = append(opts, auth.WithCookieName(cfg.Cookie))
		}
		if cfg.Lifetime > 0 {
			opts = append(opts, auth.WithLifetime(cfg.Lifetime))
		}
		if h, err := container.MakeNamed[*hash.Hasher](r, ServiceHash); err == nil {
			opts = append(opts, auth.WithPasswordChecker(h))
		}
		return auth.NewGuard(jar, p.users(r), opts...), nil
	})

	container.ProvideNamed(app.Container, ServiceCSRF, func(r container.Resolver) (*auth.CSRF, error) {
		key, err := appKey(app)
		if err != nil {
			return nil, err
		}
		jar, err := container.MakeNamed[*auth.CookieJar](r, serviceCookies)
		if err != nil {
			return nil, err
		}
		guard, err := container.MakeNamed[*auth.Guard](r, ServiceAuth)
		if err != nil {
			return nil, err
		}
		cfg, err := authConfig(app)
		if err != nil {
			return nil, err
		}
		return auth.NewCSRF(key, jar, auth.WithGuard(guard), auth.WithTokenLifetime(cfg.TokenLifetime))
	})
	return nil
}

func (p *AuthServiceProvider) Boot(app *Application) error {
	guard, err := container.MakeNamed[*auth.Guard](app, ServiceAuth)
	if err != nil {
		return err
	}
	csrf, err := container.MakeNamed[*auth.CSRF](app, ServiceCSRF)
	if err != nil {
		return err
	}
	cfg, err := authConfig(app)
	if err != nil {
		return err
	}
	redirect := cfg.GuestRedirect
	if redirect == "" {
		redirect = app.URL().Home()
	}

	for _, router := range routers(app) {
		router.OnRequest(guard.Install)
		router.AliasMiddleware("auth", middlewares.Authenticate(guard))
		router.AliasMiddleware("guest", middlewares.Guest(guard, redirect))
		router.AliasMiddleware("csrf", middlewares.VerifyCsrfToken(csrf, cfg.CSRFExcept...))
	}
	return nil
}

func (p *AuthServiceProvider) users(r container.Resolver) auth.UserProvider {
	if p.Users != nil {
		return p.Users
	}
	if u, err := container.Make[auth.UserProvider](r); err == nil {
		return u
	}
	return noUsers{}
}

type noUsers struct{}

func (noUsers) RetrieveByID(context.Context, string) (auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func authConfig(app *Application) (AuthConfig, error) {
	var cfg AuthConfig
	err := app.Config().Unmarshal("auth", &cfg)
	return cfg, err
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
