package controller

import (
	"admissions-be/internal/apperror"
	"admissions-be/internal/dto"
	"admissions-be/internal/pkg/serverutils"
	"admissions-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRankingController interface {
	RegisterRoutes(r fiber.Router)
	Apply(ctx *fiber.Ctx) error
}

type rankingController struct {
	rankingService service.IRankingService
}

func NewRankingController(rankingService service.IRankingService) IRankingController {
	return &rankingController{
		rankingService: rankingService,
	}
}

func (c *rankingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ranking/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("apply", c.Apply)
}

func (c *rankingController) Apply(ctx *fiber.Ctx) error {
	userId, institutionId, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.RankingApplyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewValidation("body", "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.rankingService.Apply(ctx.Context(), userId, institutionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Ranking run completed", res))
}
