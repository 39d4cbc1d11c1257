package webapi

import (
	"net/http"
	"strconv"

	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type ResourceController struct {
	resourceStor stor.ResourceStor
}

func NewResourceController(resourceStor stor.ResourceStor) *ResourceController {
	return &ResourceController{resourceStor: resourceStor}
}

// IndexResources lists the requester's resources; admins see everyone's.
func (c *ResourceController) IndexResources(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		resources, err := c.resourceStor.ListResources()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resources)
	}

	resources, err := c.resourceStor.GetResourcesForUser(user.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resources)
}

// GetResource returns one resource. A resource that doesn't exist and a
// resource belonging to someone else look the same to a non-admin: 404.
func (c *ResourceController) GetResource(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	resourceID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}

	resource, err := c.resourceStor.GetResourceByID(resourceID)
	if err != nil {
		return echo.ErrNotFound
	}

	if resource.OwnerID != user.ID && !user.IsAdmin {
		return echo.ErrNotFound
	}

	return ctx.JSON(http.StatusOK, resource)
}
