package handlers

import (
	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	listController "pitwall/internal/controllers/lists"

	"github.com/gofiber/fiber/v2"
)

type ListHandler struct {
	Handler
	listController listController.ListControllerInterface
}

func NewListHandler(app app.App, router fiber.Router) *ListHandler {
	log := logger.New("handlers").File("list_handler")
	return &ListHandler{
		listController: app.Controllers.List,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ListHandler) Register() {
	lists := h.router.Group("/lists")
	lists.Post("", h.middleware.RequireAuth(), h.createList)

	lists.Get("/:id", h.middleware.OptionalAuth(), h.getList)
	lists.Get("/:id/races", h.middleware.OptionalAuth(), h.getListRaces)

	lists.Patch("/:id", h.middleware.RequireAuth(), h.updateList)
	lists.Delete("/:id", h.middleware.RequireAuth(), h.deleteList)
	lists.Post("/:id/races", h.middleware.RequireAuth(), h.addRace)
	lists.Put("/:id/races/order", h.middleware.RequireAuth(), h.reorderRaces)
	lists.Delete("/:id/races/:raceId", h.middleware.RequireAuth(), h.removeRace)
}

func (h *ListHandler) createList(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	list, err := h.listController.CreateList(c.UserContext(), user, req)
	if err != nil {
		return writeError(c, h.log.Function("createList"), err, "Failed to create list")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"list": list})
}

func (h *ListHandler) getList(c *fiber.Ctx) error {
	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	list, err := h.listController.GetList(c.UserContext(), middleware.GetUser(c), listID)
	if err != nil {
		return writeError(c, h.log.Function("getList"), err, "Failed to load list")
	}

	return c.JSON(fiber.Map{"list": list})
}

func (h *ListHandler) getListRaces(c *fiber.Ctx) error {
	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	races, err := h.listController.GetListRaces(c.UserContext(), middleware.GetUser(c), listID)
	if err != nil {
		return writeError(c, h.log.Function("getListRaces"), err, "Failed to load list races")
	}

	return c.JSON(fiber.Map{"races": races})
}

func (h *ListHandler) updateList(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	var req UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	list, err := h.listController.UpdateList(c.UserContext(), user, listID, req)
	if err != nil {
		return writeError(c, h.log.Function("updateList"), err, "Failed to update list")
	}

	return c.JSON(fiber.Map{"list": list})
}

func (h *ListHandler) deleteList(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	if err := h.listController.DeleteList(c.UserContext(), user, listID); err != nil {
		return writeError(c, h.log.Function("deleteList"), err, "Failed to delete list")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ListHandler) addRace(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	var req ListRaceRequest
	if err := c.BodyParser(&req); err != nil || req.RaceID <= 0 {
		return badRequest(c, "Invalid request body")
	}

	if err := h.listController.AddRace(c.UserContext(), user, listID, req.RaceID); err != nil {
		return writeError(c, h.log.Function("addRace"), err, "Failed to add race")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"raceId": req.RaceID})
}

func (h *ListHandler) removeRace(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}
	raceID, ok := intParam(c, "raceId")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	if err := h.listController.RemoveRace(c.UserContext(), user, listID, raceID); err != nil {
		return writeError(c, h.log.Function("removeRace"), err, "Failed to remove race")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ListHandler) reorderRaces(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	listID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid list ID")
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.listController.ReorderRaces(c.UserContext(), user, listID, req.RaceIDs); err != nil {
		return writeError(c, h.log.Function("reorderRaces"), err, "Failed to reorder races")
	}

	return c.JSON(fiber.Map{"raceIds": req.RaceIDs})
}
