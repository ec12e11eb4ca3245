package controllers

import (
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

// ContactController serves department contact details keyed by
// (department, locationId).
type ContactController struct {
	contacts *services.ContactService
}

func NewContactController(contacts *services.ContactService) *ContactController {
	return &ContactController{contacts: contacts}
}

func (cc *ContactController) List(c *gin.Context) {
	var filter services.ContactFilter
	_ = c.ShouldBindQuery(&filter)

	list, err := cc.contacts.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err, "Failed to get contacts")
		return
	}
	response.OK(c, list)
}

func (cc *ContactController) Get(c *gin.Context) {
	contact, err := cc.contacts.Get(c.Request.Context(), c.Param("department"), c.Param("locationId"))
	if err != nil {
		response.Fail(c, err, "Failed to get contact")
		return
	}
	response.OK(c, contact)
}

func (cc *ContactController) Upsert(c *gin.Context) {
	var req services.ContactRequest
	if !bind(c, &req) {
		return
	}

	contact, err := cc.contacts.Upsert(c.Request.Context(), c.Param("department"), c.Param("locationId"), req)
	if err != nil {
		response.Fail(c, err, "Failed to update contact")
		return
	}
	response.OKWithMessage(c, contact, "Contact updated successfully")
}

func (cc *ContactController) Delete(c *gin.Context) {
	if err := cc.contacts.Delete(c.Request.Context(), c.Param("department"), c.Param("locationId")); err != nil {
		response.Fail(c, err, "Failed to delete contact")
		return
	}
	response.Message(c, "Contact deleted successfully")
}
