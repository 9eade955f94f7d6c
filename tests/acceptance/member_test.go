package acceptance

import (
	"encoding/json"
	"net/http"

	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/dto"
)

func (s *Suite) memberRequest(method, path string, cookie *http.Cookie) *http.Response {
	req, err := http.NewRequest(method, s.BaseURL+path, nil)
	s.Require().NoError(err)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestListCharacters_WithoutSession() {
	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestListCharacters() {
	account, cookie := s.seedAccount()
	character := s.seedCharacter(account.ID)

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var listResp dto.CharacterListResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&listResp))

	s.Equal(1, listResp.Count)
	s.Require().Len(listResp.Characters, 1)
	s.Equal(character.Name, listResp.Characters[0].Name)
	s.Equal("blackrock", listResp.Characters[0].RealmSlug)
}

func (s *Suite) TestListCharacters_EmptyRoster() {
	_, cookie := s.seedAccount()

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var listResp dto.CharacterListResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&listResp))
	s.Zero(listResp.Count)
}

func (s *Suite) TestSetMain() {
	account, cookie := s.seedAccount()
	character := s.seedCharacter(account.ID)

	resp := s.memberRequest(http.MethodPost, "/api/v1/member/characters/"+character.ID+"/set-main", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	listResp := s.memberRequest(http.MethodGet, "/api/v1/member/characters", cookie)
	defer listResp.Body.Close()

	var list dto.CharacterListResponse
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&list))
	s.Require().Len(list.Characters, 1)
	s.True(list.Characters[0].IsMain)
}

func (s *Suite) TestSetMain_UnknownCharacter() {
	_, cookie := s.seedAccount()

	resp := s.memberRequest(http.MethodPost, "/api/v1/member/characters/7b9c0a1e-0000-0000-0000-00000000dead/set-main", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestWeeklyActivity_NoSnapshotYet() {
	account, cookie := s.seedAccount()
	character := s.seedCharacter(account.ID)

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters/"+character.ID+"/weekly-activity", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var activity domain.WeeklyActivity
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&activity))

	s.Equal(character.ID, activity.CharacterID)
	s.Zero(activity.MythicPlusRuns)
	s.Zero(activity.VaultMythicPlusTier)
}

func (s *Suite) TestWeeklyActivity_UnknownCharacter() {
	_, cookie := s.seedAccount()

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters/7b9c0a1e-0000-0000-0000-00000000dead/weekly-activity", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestWeeklyOverview_Empty() {
	_, cookie := s.seedAccount()

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/weekly-overview", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var overview dto.OverviewResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&overview))
	s.Zero(overview.Count)
	s.NotEmpty(overview.WeekStart)
	s.NotEmpty(overview.WeekEnd)
}

func (s *Suite) TestEquipment_EmptyForNewCharacter() {
	account, cookie := s.seedAccount()
	character := s.seedCharacter(account.ID)

	resp := s.memberRequest(http.MethodGet, "/api/v1/member/characters/"+character.ID+"/equipment", cookie)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var equipment dto.EquipmentResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&equipment))
	s.Zero(equipment.Count)
}
