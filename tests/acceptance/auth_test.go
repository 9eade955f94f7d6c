package acceptance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sturmfeder/guild-portal/internal/dto"
)

func (s *Suite) TestLogin_RedirectsToBattleNet() {
	client := noRedirectClient()

	resp, err := client.Get(s.BaseURL + "/api/v1/auth/battlenet")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)

	location := resp.Header.Get("Location")
	s.True(strings.HasPrefix(location, "https://oauth.battle.net/authorize?"), "unexpected Location: %s", location)
	s.Contains(location, "client_id=test-client-id")
	s.Contains(location, "scope=wow.profile")
	s.Contains(location, "state=")

	keys, err := s.Redis.Client.Keys(context.Background(), "oauth:state:*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1, "login must persist exactly one pending state")
}

func (s *Suite) TestCallback_MissingParameters() {
	client := noRedirectClient()

	resp, err := client.Get(s.BaseURL + "/api/v1/auth/battlenet/callback")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/member/login?error=missing_parameters", resp.Header.Get("Location"))
}

func (s *Suite) TestCallback_UnknownState() {
	client := noRedirectClient()

	resp, err := client.Get(s.BaseURL + "/api/v1/auth/battlenet/callback?code=some-code&state=forged-state")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/member/login?error=invalid_state", resp.Header.Get("Location"))
}

func (s *Suite) TestCallback_ProviderDenied() {
	client := noRedirectClient()

	resp, err := client.Get(s.BaseURL + "/api/v1/auth/battlenet/callback?error=access_denied")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/member/login?error=access_denied", resp.Header.Get("Location"))
}

func (s *Suite) TestGetMe_WithoutSession() {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/me")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_WithSession() {
	account, cookie := s.seedAccount()

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var accountResp dto.AccountResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&accountResp))

	s.Equal(account.ID, accountResp.ID)
	s.Equal(int64(555), accountResp.BattleNetID)
	s.Equal("Foo#1234", accountResp.BattleTag)
	s.Equal("eu", accountResp.Region)
}

func (s *Suite) TestGetMe_GarbageToken() {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "member_token", Value: "not-a-token"})

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_ClearsSessionCookie() {
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var cleared *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "member_token" {
			cleared = cookie
		}
	}
	s.Require().NotNil(cleared, "logout must reset the session cookie")
	s.Empty(cleared.Value)
	s.Negative(cleared.MaxAge)
}
