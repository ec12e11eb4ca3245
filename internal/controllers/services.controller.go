package controllers

import (
	"ixadmin/internal/models"
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// ServiceController serves the product catalog under /api/services.
type ServiceController struct {
	catalog *services.CatalogService
}

func NewServiceController(catalog *services.CatalogService) *ServiceController {
	return &ServiceController{catalog: catalog}
}

func (sc *ServiceController) List(c *gin.Context) {
	list, err := sc.catalog.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.Fail(c, err, "Failed to get services")
		return
	}
	response.OK(c, list)
}

func (sc *ServiceController) Get(c *gin.Context) {
	svc, err := sc.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err, "Failed to get service")
		return
	}
	response.OK(c, svc)
}

func (sc *ServiceController) Create(c *gin.Context) {
	var req services.CreateServiceRequest
	if !bind(c, &req) {
		return
	}

	svc, err := sc.catalog.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err, "Failed to create service")
		return
	}
	response.Created(c, svc, "Service created successfully")
}

func (sc *ServiceController) Update(c *gin.Context) {
	var patch services.ServicePatch
	if !bind(c, &patch) {
		return
	}

	svc, err := sc.catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update service")
		return
	}
	response.OKWithMessage(c, svc, "Service updated successfully")
}

func (sc *ServiceController) Delete(c *gin.Context) {
	if err := sc.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err, "Failed to delete service")
		return
	}
	response.Message(c, "Service deleted successfully")
}

func (sc *ServiceController) AddItem(c *gin.Context) {
	var item models.ServiceItem
	if !bind(c, &item) {
		return
	}

	svc, err := sc.catalog.AddItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		response.Fail(c, err, "Failed to add service item")
		return
	}
	response.Created(c, svc.Items, "Service item added successfully")
}

// Items are addressed by position; a non-numeric index cannot exist.
func (sc *ServiceController) UpdateItem(c *gin.Context) {
	index, ok := intParam(c, "itemIndex")
	if !ok {
		response.NotFound(c, "Service item not found")
		return
	}
	var patch services.ServiceItemPatch
	if !bind(c, &patch) {
		return
	}

	svc, err := sc.catalog.UpdateItem(c.Request.Context(), c.Param("id"), index, patch)
	if err != nil {
		response.Fail(c, err, "Failed to update service item")
		return
	}
	response.OKWithMessage(c, svc.Items, "Service item updated successfully")
}

func (sc *ServiceController) DeleteItem(c *gin.Context) {
	index, ok := intParam(c, "itemIndex")
	if !ok {
		response.NotFound(c, "Service item not found")
		return
	}

	svc, err := sc.catalog.DeleteItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		response.Fail(c, err, "Failed to delete service item")
		return
	}
	response.OKWithMessage(c, svc.Items, "Service item deleted successfully")
}
