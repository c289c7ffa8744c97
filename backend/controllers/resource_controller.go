package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
	"progresstracker/backend/utils"
)

type ResourceController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Hierarchy repository.HierarchyStore
}

func NewResourceController(db *gorm.DB, cfg *config.Config, hierarchy repository.HierarchyStore) *ResourceController {
	return &ResourceController{DB: db, Cfg: cfg, Hierarchy: hierarchy}
}

type resourceInput struct {
	ResourceType string `json:"resource_type"` // LINK, NOTE, FILE
	Content      string `json:"content"`
}

func validResourceType(t string) bool {
	switch t {
	case "LINK", "NOTE", "FILE":
		return true
	}
	return false
}

// CreateResource godoc
// @Summary Attach a resource to a hierarchy item
// @Tags resources
// @Security ApiKeyAuth
// @Router /resources/{itemType}/{itemId} [post]
func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	itemType := models.ItemType(strings.ToUpper(c.Params("itemType")))
	if !itemType.Valid() {
		return utils.BadRequest(c, "item type must be SUBJECT, TOPIC or SUBTOPIC")
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}

	syllabus, err := syllabusForItem(rc.Hierarchy, itemType, itemID)
	if err != nil {
		return utils.NotFound(c, "Item not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to attach resources to this item")
	}

	var input resourceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !validResourceType(input.ResourceType) {
		return utils.BadRequest(c, "resource_type must be LINK, NOTE or FILE")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "Content is required")
	}

	resource := models.Resource{
		ItemType:     itemType,
		ItemID:       itemID,
		ResourceType: input.ResourceType,
		Content:      input.Content,
	}
	if err := rc.DB.Create(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not create resource")
	}

	return utils.Created(c, resourceResponse(&resource))
}

// GetResource godoc
// @Summary Get a resource by id
// @Tags resources
// @Security ApiKeyAuth
// @Router /resources/{id} [get]
func (rc *ResourceController) GetResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	syllabus, err := syllabusForItem(rc.Hierarchy, resource.ItemType, resource.ItemID)
	if err != nil {
		return utils.NotFound(c, "Resource not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this resource")
	}

	return utils.Success(c, fiber.StatusOK, resourceResponse(&resource))
}

// GetResourcesByItem godoc
// @Summary List resources attached to an item
// @Tags resources
// @Security ApiKeyAuth
// @Router /resources/item/{itemType}/{itemId} [get]
func (rc *ResourceController) GetResourcesByItem(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	itemType := models.ItemType(strings.ToUpper(c.Params("itemType")))
	if !itemType.Valid() {
		return utils.BadRequest(c, "item type must be SUBJECT, TOPIC or SUBTOPIC")
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return utils.BadRequest(c, "Invalid item ID")
	}

	syllabus, err := syllabusForItem(rc.Hierarchy, itemType, itemID)
	if err != nil {
		return utils.NotFound(c, "Item not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this item")
	}

	var resources []models.Resource
	if err := rc.DB.Where("item_type = ? AND item_id = ?", itemType, itemID).
		Order("created_at").
		Find(&resources).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch resources")
	}

	result := make([]fiber.Map, 0, len(resources))
	for i := range resources {
		result = append(result, resourceResponse(&resources[i]))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// UpdateResource godoc
// @Summary Update a resource
// @Tags resources
// @Security ApiKeyAuth
// @Router /resources/{id} [put]
func (rc *ResourceController) UpdateResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	syllabus, err := syllabusForItem(rc.Hierarchy, resource.ItemType, resource.ItemID)
	if err != nil {
		return utils.NotFound(c, "Resource not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this resource")
	}

	var input resourceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if !validResourceType(input.ResourceType) {
		return utils.BadRequest(c, "resource_type must be LINK, NOTE or FILE")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "Content is required")
	}

	resource.ResourceType = input.ResourceType
	resource.Content = input.Content
	if err := rc.DB.Save(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not update resource")
	}

	return utils.Success(c, fiber.StatusOK, resourceResponse(&resource))
}

// DeleteResource godoc
// @Summary Delete a resource
// @Tags resources
// @Security ApiKeyAuth
// @Router /resources/{id} [delete]
func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, id).Error; err != nil {
		return utils.NotFound(c, "Resource not found")
	}

	syllabus, err := syllabusForItem(rc.Hierarchy, resource.ItemType, resource.ItemID)
	if err != nil {
		return utils.NotFound(c, "Resource not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this resource")
	}

	if err := rc.DB.Delete(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete resource")
	}

	return utils.NoContent(c)
}

func resourceResponse(resource *models.Resource) fiber.Map {
	return fiber.Map{
		"id":            resource.ID,
		"item_type":     resource.ItemType,
		"item_id":       resource.ItemID,
		"resource_type": resource.ResourceType,
		"content":       resource.Content,
		"created_at":    resource.CreatedAt,
	}
}
