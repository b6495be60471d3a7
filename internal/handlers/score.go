package handlers

import (
	"confia/internal/services/score"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ScoreHandler exposes the caller's composite trust score.
type ScoreHandler struct {
	scoreService score.Service
}

func NewScoreHandler(scoreService score.Service) *ScoreHandler {
	return &ScoreHandler{
		scoreService: scoreService,
	}
}

func (h *ScoreHandler) GetScore(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cs, err := h.scoreService.GetScore(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to get score")
	}

	return utils.Success(c, fiber.Map{
		"score": cs,
	})
}
