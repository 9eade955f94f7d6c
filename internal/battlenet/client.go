package battlenet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Battle.net OAuth hosts per region. All regions except CN share the
// global OAuth host.
var oauthBaseURLs = map[string]string{
	"us": "https://oauth.battle.net",
	"eu": "https://oauth.battle.net",
	"kr": "https://oauth.battle.net",
	"tw": "https://oauth.battle.net",
	"cn": "https://oauth.battlenet.com.cn",
}

// Battle.net Game Data API hosts per region.
var apiBaseURLs = map[string]string{
	"us": "https://us.api.blizzard.com",
	"eu": "https://eu.api.blizzard.com",
	"kr": "https://kr.api.blizzard.com",
	"tw": "https://tw.api.blizzard.com",
	"cn": "https://gateway.battlenet.com.cn",
}

const defaultTimeout = 15 * time.Second

// UpstreamError is a non-2xx response from Battle.net on an essential
// call (token grants, user info, character list).
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("battle.net returned status %d: %s", e.StatusCode, e.Body)
}

// Config holds the Battle.net application credentials. OAuthBaseURL
// and APIBaseURL override the region defaults, used by tests.
type Config struct {
	Region       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Locale       string
	OAuthBaseURL string
	APIBaseURL   string
	Timeout      time.Duration
}

// Client is a typed client for the Battle.net OAuth and WoW profile
// endpoints. Profile endpoints return (nil, nil) on any non-2xx since
// absent data is expected for characters without history.
type Client struct {
	region    string
	locale    string
	oauthBase string
	apiBase   string
	oauth     *oauth2.Config
	http      *http.Client
}

// NewClient creates a Battle.net client for the configured region.
func NewClient(cfg Config) *Client {
	oauthBase := cfg.OAuthBaseURL
	if oauthBase == "" {
		oauthBase = oauthBaseURLs[cfg.Region]
	}
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = apiBaseURLs[cfg.Region]
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	locale := cfg.Locale
	if locale == "" {
		locale = "en_US"
	}

	return &Client{
		region:    cfg.Region,
		locale:    locale,
		oauthBase: oauthBase,
		apiBase:   apiBase,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"wow.profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   oauthBase + "/authorize",
				TokenURL:  oauthBase + "/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		http: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL builds the authorization URL carrying the CSRF state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange performs the authorization-code grant.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, wrapOAuthError("code exchange failed", err)
	}

	return &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// Refresh performs the refresh-token grant. The previous refresh token
// is preserved when the response does not issue a new one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, wrapOAuthError("token refresh failed", err)
	}

	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

// UserInfo fetches the Battle.net id and battletag for a token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var info UserInfo
	if _, err := c.getJSON(ctx, c.oauthBase+"/userinfo", accessToken, &info); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &info, nil
}

// wowAccountsResponse wraps the account-wide character list.
type wowAccountsResponse struct {
	WowAccounts []struct {
		Characters []CharacterSummary `json:"characters"`
	} `json:"wow_accounts"`
}

// ListCharacters fetches the caller's characters, flattened across
// all WoW game accounts the Battle.net identity owns.
func (c *Client) ListCharacters(ctx context.Context, accessToken string) ([]CharacterSummary, error) {
	var resp wowAccountsResponse
	if _, err := c.getJSON(ctx, c.profileURL("/profile/user/wow"), accessToken, &resp); err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	var characters []CharacterSummary
	for _, account := range resp.WowAccounts {
		characters = append(characters, account.Characters...)
	}
	return characters, nil
}

// CharacterProfile fetches the detailed profile, or nil if Battle.net
// has no data for the character.
func (c *Client) CharacterProfile(ctx context.Context, accessToken, realmSlug, name string) (*CharacterProfile, error) {
	var profile CharacterProfile
	ok, err := c.getOptionalJSON(ctx, c.characterURL(realmSlug, name, ""), accessToken, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// CharacterMedia fetches avatar/render assets, or nil on any non-2xx.
func (c *Client) CharacterMedia(ctx context.Context, accessToken, realmSlug, name string) (*CharacterMedia, error) {
	var media CharacterMedia
	ok, err := c.getOptionalJSON(ctx, c.characterURL(realmSlug, name, "/character-media"), accessToken, &media)
	if err != nil || !ok {
		return nil, err
	}
	return &media, nil
}

// CharacterEquipment fetches equipped items, or nil on any non-2xx.
func (c *Client) CharacterEquipment(ctx context.Context, accessToken, realmSlug, name string) (*CharacterEquipment, error) {
	var equipment CharacterEquipment
	ok, err := c.getOptionalJSON(ctx, c.characterURL(realmSlug, name, "/equipment"), accessToken, &equipment)
	if err != nil || !ok {
		return nil, err
	}
	return &equipment, nil
}

// MythicKeystoneProfile fetches the current mythic+ period, or nil on
// any non-2xx. The raw payload is attached for snapshotting.
func (c *Client) MythicKeystoneProfile(ctx context.Context, accessToken, realmSlug, name string) (*MythicKeystoneProfile, error) {
	var profile MythicKeystoneProfile
	ok, err := c.getOptionalJSONRaw(ctx, c.characterURL(realmSlug, name, "/mythic-keystone-profile"), accessToken, &profile, &profile.Raw)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// RaidProgress fetches raid encounter progress, or nil on any non-2xx.
func (c *Client) RaidProgress(ctx context.Context, accessToken, realmSlug, name string) (*RaidProgress, error) {
	var progress RaidProgress
	ok, err := c.getOptionalJSONRaw(ctx, c.characterURL(realmSlug, name, "/encounters/raids"), accessToken, &progress, &progress.Raw)
	if err != nil || !ok {
		return nil, err
	}
	return &progress, nil
}

// PvPSummary fetches the PvP season summary, or nil on any non-2xx.
func (c *Client) PvPSummary(ctx context.Context, accessToken, realmSlug, name string) (*PvPSummary, error) {
	var summary PvPSummary
	ok, err := c.getOptionalJSONRaw(ctx, c.characterURL(realmSlug, name, "/pvp-summary"), accessToken, &summary, &summary.Raw)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

// profileURL appends the profile namespace and locale parameters.
func (c *Client) profileURL(path string) string {
	return fmt.Sprintf("%s%s?namespace=profile-%s&locale=%s", c.apiBase, path, c.region, c.locale)
}

// characterURL builds a character-scoped profile URL. Character names
// are lowercased per the API's URL convention.
func (c *Client) characterURL(realmSlug, name, suffix string) string {
	path := fmt.Sprintf("/profile/wow/character/%s/%s%s",
		url.PathEscape(realmSlug), url.PathEscape(strings.ToLower(name)), suffix)
	return c.profileURL(path)
}

// getJSON performs a bearer-authenticated GET and decodes the body.
// Non-2xx responses surface as *UpstreamError.
func (c *Client) getJSON(ctx context.Context, rawURL, accessToken string, dst interface{}) ([]byte, error) {
	body, status, err := c.get(ctx, rawURL, accessToken)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &UpstreamError{StatusCode: status, Body: string(body)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body, nil
}

// getOptionalJSON is getJSON for the "no data yet" endpoints: non-2xx
// responses report ok=false instead of an error.
func (c *Client) getOptionalJSON(ctx context.Context, rawURL, accessToken string, dst interface{}) (bool, error) {
	body, status, err := c.get(ctx, rawURL, accessToken)
	if err != nil {
		return false, err
	}
	if status < 200 || status >= 300 {
		return false, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}

// getOptionalJSONRaw additionally keeps the undecoded body.
func (c *Client) getOptionalJSONRaw(ctx context.Context, rawURL, accessToken string, dst interface{}, raw *json.RawMessage) (bool, error) {
	body, status, err := c.get(ctx, rawURL, accessToken)
	if err != nil {
		return false, err
	}
	if status < 200 || status >= 300 {
		return false, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	*raw = json.RawMessage(body)
	return true, nil
}

func (c *Client) get(ctx context.Context, rawURL, accessToken string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// wrapOAuthError converts oauth2 retrieval failures into UpstreamError
// so token material never leaks through error chains.
func wrapOAuthError(msg string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return fmt.Errorf("%s: %w", msg, &UpstreamError{StatusCode: status, Body: string(rErr.Body)})
	}
	return fmt.Errorf("%s: %w", msg, err)
}
