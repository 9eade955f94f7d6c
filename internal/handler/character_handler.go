package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/dto"
	"github.com/sturmfeder/guild-portal/internal/service"
)

// CharacterHandler handles roster requests of the logged-in member
type CharacterHandler struct {
	characters service.CharacterService
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characters service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// List returns the member's stored roster
// @Summary List characters
// @Tags member
// @Produce json
// @Success 200 {object} dto.CharacterListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /member/characters [get]
func (h *CharacterHandler) List(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	characters, err := h.characters.List(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CharacterListResponse{
		Characters: characters,
		Count:      len(characters),
	})
}

// Sync pulls the full roster from Battle.net and stores it
// @Summary Sync characters from Battle.net
// @Tags member
// @Produce json
// @Success 200 {object} dto.CharacterListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /member/characters/sync [post]
func (h *CharacterHandler) Sync(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	characters, err := h.characters.SyncAll(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CharacterListResponse{
		Characters: characters,
		Count:      len(characters),
	})
}

// Refresh re-fetches one character's profile, media and equipment
// @Summary Refresh a single character
// @Tags member
// @Produce json
// @Success 200 {object} domain.Character
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /member/characters/{id}/refresh [post]
func (h *CharacterHandler) Refresh(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	character, err := h.characters.RefreshOne(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, character)
}

// SetMain designates one character as the member's main
// @Summary Set main character
// @Tags member
// @Produce json
// @Success 200 {object} domain.Character
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /member/characters/{id}/set-main [post]
func (h *CharacterHandler) SetMain(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	character, err := h.characters.SetMain(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, character)
}

// Equipment returns the stored equipment of one character
// @Summary Get character equipment
// @Tags member
// @Produce json
// @Success 200 {object} dto.EquipmentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /member/characters/{id}/equipment [get]
func (h *CharacterHandler) Equipment(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	items, err := h.characters.Equipment(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EquipmentResponse{
		Items: items,
		Count: len(items),
	})
}
