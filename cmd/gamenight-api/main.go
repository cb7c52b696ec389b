// gamenight-api is a dependent service on the shared root domain. It
// never mints credentials; it trusts the session cookie issued by the
// auth service, verifying it locally with the shared secret.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

	"github.com/benloe/artanis/pkg/client"
	"github.com/benloe/artanis/pkg/config"
)

type Config struct {
	AuthServiceUrl string `env:"AUTH_SERVICE_URL" env-default:"http://localhost:3000"`
	AppConfig      app.AppConfig
	JWTConfig      config.JWTConfig
	CookieConfig   config.CookieConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	validatorOpts := []client.ValidatorOption{client.WithIssuer(cfg.JWTConfig.Issuer)}
	if cfg.JWTConfig.PreviousSecret != "" {
		validatorOpts = append(validatorOpts, client.WithPreviousSecret(cfg.JWTConfig.PreviousSecret))
	}

	adapter := client.NewRemoteAuthAdapter(
		client.NewValidator(cfg.JWTConfig.Secret, validatorOpts...),
		client.NewProfileClient(cfg.AuthServiceUrl, client.WithCookieName(cfg.CookieConfig.Name)),
		client.WithAdapterCookieName(cfg.CookieConfig.Name),
	)

	// Browser-facing routes trust the shared session cookie
	server.R.Group(func(r chi.Router) {
		r.Use(adapter.Middleware)

		r.Get("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
			authCtx := client.GetAuthContext(r)
			if !authCtx.IsAuthenticated {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Unauthorized"})
				return
			}

			resp := map[string]any{"userId": authCtx.Identity.UserID}
			if authCtx.Profile != nil {
				resp["email"] = authCtx.Profile.Email
				resp["name"] = authCtx.Profile.Name
				resp["timezone"] = authCtx.Profile.Timezone
			}
			render.JSON(w, r, resp)
		})

		r.With(client.RequireAuth).Get("/api/private", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]bool{"ok": true})
		})
	})

	// Service-to-service routes take the credential as a bearer token.
	// This group verifies only the current secret: during a
	// JWT_PREVIOUS_SECRET rotation window bearer callers must re-mint,
	// while cookie callers keep working through the validator above.
	// Bearer callers that need the rotation window can send the same
	// credential to the adapter-guarded routes instead.
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTConfig.Secret), nil)
	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))

		r.Get("/api/service/ping", func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			render.JSON(w, r, map[string]any{"ok": true, "sub": claims["sub"]})
		})
	})

	slog.Info("Gamenight API configured", "authServiceUrl", cfg.AuthServiceUrl)

	server.Run()
}
