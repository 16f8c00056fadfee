package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nfrund/neuralfeed/internal/config"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

// Profile is the identity a provider reports for the signed-in account.
type Profile struct {
	Email string
	Name  string
	Image string
}

// ProviderInfo describes a configured provider for rendering sign-in buttons.
type ProviderInfo struct {
	Name        string
	DisplayName string
}

// Provider is a configured OAuth 2.0 identity provider.
type Provider struct {
	name        string
	displayName string
	oauth       *oauth2.Config
	profile     func(ctx context.Context, client *http.Client) (Profile, error)
}

// NewProviders builds the providers named in cfgs. Unknown provider names
// are an error.
func NewProviders(cfgs []config.OAuthProvider) (map[string]*Provider, error) {
	providers := make(map[string]*Provider, len(cfgs))
	for _, cfg := range cfgs {
		var p *Provider
		switch cfg.Name {
		case "google":
			p = newGoogleProvider(cfg, google.Endpoint, googleUserInfoURL)
		case "github":
			p = newGitHubProvider(cfg, github.Endpoint, githubUserURL, githubEmailsURL)
		default:
			return nil, fmt.Errorf("%q: %w", cfg.Name, errUnsupportedProvider)
		}
		providers[p.name] = p
	}
	return providers, nil
}

var errUnsupportedProvider = errors.New("unsupported oauth provider")

func newOAuthConfig(cfg config.OAuthProvider, endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     endpoint,
	}
}

func newGoogleProvider(cfg config.OAuthProvider, endpoint oauth2.Endpoint, userInfoURL string) *Provider {
	return &Provider{
		name:        cfg.Name,
		displayName: displayName(cfg.Name),
		oauth:       newOAuthConfig(cfg, endpoint),
		profile: func(ctx context.Context, client *http.Client) (Profile, error) {
			var payload struct {
				Sub           string `json:"sub"`
				Name          string `json:"name"`
				Email         string `json:"email"`
				EmailVerified bool   `json:"email_verified"`
				Picture       string `json:"picture"`
			}
			if err := getJSON(ctx, client, userInfoURL, &payload); err != nil {
				return Profile{}, err
			}
			if !payload.EmailVerified {
				return Profile{}, errors.New("google account email is not verified")
			}
			return Profile{
				Email: payload.Email,
				Name:  firstNonEmpty(payload.Name, payload.Email),
				Image: payload.Picture,
			}, nil
		},
	}
}

func newGitHubProvider(cfg config.OAuthProvider, endpoint oauth2.Endpoint, userURL, emailsURL string) *Provider {
	return &Provider{
		name:        cfg.Name,
		displayName: displayName(cfg.Name),
		oauth:       newOAuthConfig(cfg, endpoint),
		profile: func(ctx context.Context, client *http.Client) (Profile, error) {
			var user struct {
				Login     string `json:"login"`
				Name      string `json:"name"`
				Email     string `json:"email"`
				AvatarURL string `json:"avatar_url"`
			}
			if err := getJSON(ctx, client, userURL, &user); err != nil {
				return Profile{}, err
			}

			email := user.Email
			if email == "" {
				// Private addresses are only listed by the emails endpoint.
				var emails []struct {
					Email    string `json:"email"`
					Primary  bool   `json:"primary"`
					Verified bool   `json:"verified"`
				}
				if err := getJSON(ctx, client, emailsURL, &emails); err != nil {
					return Profile{}, err
				}
				for _, e := range emails {
					if e.Primary && e.Verified {
						email = e.Email
						break
					}
				}
			}
			return Profile{
				Email: email,
				Name:  firstNonEmpty(user.Name, user.Login, email),
				Image: user.AvatarURL,
			}, nil
		},
	}
}

// Name returns the provider's identifier, e.g. "github".
func (p *Provider) Name() string { return p.name }

// DisplayName returns the provider's human-readable name.
func (p *Provider) DisplayName() string { return p.displayName }

// AuthCodeURL returns the provider's consent page URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the account's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to exchange %s code: %w", p.name, err)
	}
	profile, err := p.profile(ctx, p.oauth.Client(ctx, token))
	if err != nil {
		return Profile{}, fmt.Errorf("failed to fetch %s profile: %w", p.name, err)
	}
	if profile.Email == "" {
		return Profile{}, fmt.Errorf("%s did not return an email address", p.name)
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var knownDisplayNames = map[string]string{"github": "GitHub"}

func displayName(name string) string {
	if dn, ok := knownDisplayNames[name]; ok {
		return dn
	}
	return cases.Title(language.English).String(name)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func sortedInfo(providers map[string]*Provider) []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, ProviderInfo{Name: p.name, DisplayName: p.displayName})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
