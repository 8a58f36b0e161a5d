package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
)

const contextKeyPathID = "path_id"

// RequireIDParam parses the :id path parameter
func RequireIDParam(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+resource+" ID")
			return
		}
		c.Set(contextKeyPathID, id)
		c.Next()
	}
}

// GetPathID returns the ID parsed by RequireIDParam
func GetPathID(c *gin.Context) uint64 {
	v, _ := c.Get(contextKeyPathID)
	id, _ := v.(uint64)
	return id
}
