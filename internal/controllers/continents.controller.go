package controllers

import (
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

type ContinentController struct {
	continents *services.ContinentService
}

func NewContinentController(continents *services.ContinentService) *ContinentController {
	return &ContinentController{continents: continents}
}

func (cc *ContinentController) List(c *gin.Context) {
	list, err := cc.continents.List(c.Request.Context(), boolQuery(c, "isActive"))
	if err != nil {
		response.Fail(c, err, "Failed to get continents")
		return
	}
	response.OK(c, list)
}

func (cc *ContinentController) Get(c *gin.Context) {
	continent, err := cc.continents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err, "Failed to get continent")
		return
	}
	response.OK(c, continent)
}

func (cc *ContinentController) Create(c *gin.Context) {
	var req services.CreateContinentRequest
	if !bind(c, &req) {
		return
	}

	continent, err := cc.continents.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err, "Failed to create continent")
		return
	}
	response.Created(c, continent, "Continent created successfully")
}

func (cc *ContinentController) Update(c *gin.Context) {
	var patch services.ContinentPatch
	if !bind(c, &patch) {
		return
	}

	continent, err := cc.continents.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update continent")
		return
	}
	response.OKWithMessage(c, continent, "Continent updated successfully")
}

func (cc *ContinentController) Delete(c *gin.Context) {
	if err := cc.continents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err, "Failed to delete continent")
		return
	}
	response.Message(c, "Continent deleted successfully")
}
