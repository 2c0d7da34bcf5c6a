package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"blogeditor/internal/model"
	"blogeditor/internal/service"
)

// blogID copies the route id out of fiber's reused request buffer; the service
// keeps it on spans that outlive the request.
func blogID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

const (
	msgPromoted = "Blog status updated to published"
	msgDeleted  = "Blog deleted successfully"
)

// ListBlogs godoc
// @Summary List blogs
// @Description Returns drafts and published blogs together in store order.
// @Tags blogs
// @Produce json
// @Success 200 {array} model.Document
// @Failure 500 {object} errorPayload
// @Router /api/blogs [get]
func ListBlogs(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(docs)
	}
}

// GetBlog godoc
// @Summary Get a blog
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /api/blogs/{id} [get]
func GetBlog(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), blogID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// SaveDraft godoc
// @Summary Save a new draft
// @Tags blogs
// @Accept json
// @Produce json
// @Param blog body model.DocumentFields true "Draft fields"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/blogs/savedraft [post]
func SaveDraft(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields model.DocumentFields
		if err := c.BodyParser(&fields); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		doc, err := svc.CreateDraft(c.UserContext(), fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// PublishBlog godoc
// @Summary Publish a new blog
// @Description Creates a blog directly in the published state.
// @Tags blogs
// @Accept json
// @Produce json
// @Param blog body model.DocumentFields true "Blog fields"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/blogs/publish [post]
func PublishBlog(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields model.DocumentFields
		if err := c.BodyParser(&fields); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		doc, err := svc.CreatePublished(c.UserContext(), fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// PromoteBlog godoc
// @Summary Promote a draft
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} messagePayload
// @Failure 404 {object} errorPayload
// @Router /api/blogs/{id}/publish [post]
func PromoteBlog(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := svc.Promote(c.UserContext(), blogID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: msgPromoted})
	}
}

// DeleteBlog godoc
// @Summary Delete a blog
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} messagePayload
// @Failure 404 {object} errorPayload
// @Router /api/blogs/{id} [delete]
func DeleteBlog(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Remove(c.UserContext(), blogID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: msgDeleted})
	}
}
