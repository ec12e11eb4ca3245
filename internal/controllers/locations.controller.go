package controllers

import (
	"ixadmin/internal/models"
	"ixadmin/internal/response"
	"ixadmin/internal/services"

	"github.com/gin-gonic/gin"
)

type LocationController struct {
	locations *services.LocationService
}

func NewLocationController(locations *services.LocationService) *LocationController {
	return &LocationController{locations: locations}
}

func (lc *LocationController) List(c *gin.Context) {
	var filter services.LocationFilter
	_ = c.ShouldBindQuery(&filter)

	locations, err := lc.locations.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err, "Failed to get locations")
		return
	}
	response.OK(c, locations)
}

func (lc *LocationController) Get(c *gin.Context) {
	loc, err := lc.locations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err, "Failed to get location")
		return
	}
	response.OK(c, loc)
}

func (lc *LocationController) Create(c *gin.Context) {
	var loc models.Location
	if !bind(c, &loc) {
		return
	}

	created, err := lc.locations.Create(c.Request.Context(), &loc)
	if err != nil {
		response.Fail(c, err, "Failed to create location")
		return
	}
	response.Created(c, created, "Location created successfully")
}

// Update applies only the fields named in LocationPatch; anything else in
// the body is ignored.
func (lc *LocationController) Update(c *gin.Context) {
	var patch services.LocationPatch
	if !bind(c, &patch) {
		return
	}

	loc, err := lc.locations.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update location")
		return
	}
	response.OKWithMessage(c, loc, "Location updated successfully")
}

func (lc *LocationController) Delete(c *gin.Context) {
	if err := lc.locations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err, "Failed to delete location")
		return
	}
	response.Message(c, "Location deleted successfully")
}

func (lc *LocationController) ListASNs(c *gin.Context) {
	loc, err := lc.locations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err, "Failed to get ASNs")
		return
	}
	response.OK(c, loc.ASNList)
}

func (lc *LocationController) AddASN(c *gin.Context) {
	var asn models.ASN
	if !bind(c, &asn) {
		return
	}

	list, err := lc.locations.AddASN(c.Request.Context(), c.Param("id"), asn)
	if err != nil {
		response.Fail(c, err, "Failed to add ASN")
		return
	}
	response.Created(c, list, "ASN added successfully")
}

func (lc *LocationController) UpdateASN(c *gin.Context) {
	asnNumber, ok := intParam(c, "asnNumber")
	if !ok {
		response.NotFound(c, "ASN not found in this location")
		return
	}
	var patch services.ASNPatch
	if !bind(c, &patch) {
		return
	}

	list, err := lc.locations.UpdateASN(c.Request.Context(), c.Param("id"), asnNumber, patch)
	if err != nil {
		response.Fail(c, err, "Failed to update ASN")
		return
	}
	response.OKWithMessage(c, list, "ASN updated successfully")
}

func (lc *LocationController) DeleteASN(c *gin.Context) {
	asnNumber, ok := intParam(c, "asnNumber")
	if !ok {
		response.NotFound(c, "ASN not found in this location")
		return
	}

	list, err := lc.locations.DeleteASN(c.Request.Context(), c.Param("id"), asnNumber)
	if err != nil {
		response.Fail(c, err, "Failed to delete ASN")
		return
	}
	response.OKWithMessage(c, list, "ASN deleted successfully")
}

func (lc *LocationController) ListSites(c *gin.Context) {
	loc, err := lc.locations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err, "Failed to get sites")
		return
	}
	response.OK(c, loc.EnabledSites)
}

func (lc *LocationController) AddSite(c *gin.Context) {
	var site models.EnabledSite
	if !bind(c, &site) {
		return
	}

	list, err := lc.locations.AddSite(c.Request.Context(), c.Param("id"), site)
	if err != nil {
		response.Fail(c, err, "Failed to add site")
		return
	}
	response.Created(c, list, "Site added successfully")
}

func (lc *LocationController) UpdateSite(c *gin.Context) {
	var patch services.SitePatch
	if !bind(c, &patch) {
		return
	}

	list, err := lc.locations.UpdateSite(c.Request.Context(), c.Param("id"), c.Param("siteId"), patch)
	if err != nil {
		response.Fail(c, err, "Failed to update site")
		return
	}
	response.OKWithMessage(c, list, "Site updated successfully")
}

func (lc *LocationController) DeleteSite(c *gin.Context) {
	list, err := lc.locations.DeleteSite(c.Request.Context(), c.Param("id"), c.Param("siteId"))
	if err != nil {
		response.Fail(c, err, "Failed to delete site")
		return
	}
	response.OKWithMessage(c, list, "Site deleted successfully")
}
