package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/models"
)

const (
	// SteamLoginRoute is the path on this front that the Steam button points at
	SteamLoginRoute = "/auth/login/steam"

	// VKLogoURL is the externally hosted VK logo shown on the VK button
	VKLogoURL = "https://upload.wikimedia.org/wikipedia/commons/2/21/VK.com-logo.svg"

	ProviderSteam = "steam"
	ProviderVK    = "vk"
)

// LoginManager hands login attempts over to the auth backend.
// It never authenticates anyone itself.
type LoginManager struct {
	steamLoginURL string
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewLoginManager creates a login manager redirecting Steam logins to steamLoginURL
func NewLoginManager(steamLoginURL string, logger *zap.Logger, m *metrics.Metrics) *LoginManager {
	return &LoginManager{
		steamLoginURL: steamLoginURL,
		logger:        logger.Named("login"),
		metrics:       m,
	}
}

// SteamLoginURL returns the backend URL Steam logins are sent to
func (lm *LoginManager) SteamLoginURL() string {
	return lm.steamLoginURL
}

// HandleSteamLogin navigates the browser to the backend Steam endpoint.
// The backend owns the OpenID exchange, so nothing is stored here.
func (lm *LoginManager) HandleSteamLogin(w http.ResponseWriter, r *http.Request) {
	lm.metrics.LoginRedirects.WithLabelValues(ProviderSteam).Inc()
	lm.logger.Debug("redirecting to steam login", zap.String("target", lm.steamLoginURL))

	http.Redirect(w, r, lm.steamLoginURL, http.StatusFound)
}

// PageData returns the content of the auth page
func (lm *LoginManager) PageData() *models.AuthPageData {
	return &models.AuthPageData{
		Title:       "Авторизация",
		Description: "Войдите через Steam или VK для доступа к торговой площадке",
		Providers: []models.LoginProvider{
			{
				Name:      ProviderSteam,
				Label:     "Войти через Steam",
				LoginPath: SteamLoginRoute,
				Variant:   "outline",
			},
			{
				// No VK flow on the backend yet, so the button stays inert
				Name:     ProviderVK,
				Label:    "Войти через VK",
				IconURL:  VKLogoURL,
				IconAlt:  "VK Logo",
				IconSize: 24,
				Variant:  "vk",
			},
		},
		Disclaimer: "Авторизуясь, вы соглашаетесь с правилами использования сервиса",
	}
}
