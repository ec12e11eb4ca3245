package controllers

import (
	"ixadmin/internal/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// bind decodes the JSON body into dst and answers 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, err, "Invalid request body")
		return false
	}
	return true
}

// intParam parses a numeric path segment; ok is false for anything else.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	return n, err == nil
}

// boolQuery reads "true"/"false"; anything else is nil.
func boolQuery(c *gin.Context, name string) *bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}
