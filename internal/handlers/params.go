package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID parses the :id path parameter; 0 means absent or malformed and
// lets the lookup fail with a not-found.
func paramID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
