package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/course-scheduler-api/pkg/middleware/requestid"
)

// requestMeta builds the response meta block for the current request.
func requestMeta(c *gin.Context) map[string]interface{} {
	meta := map[string]interface{}{}
	if id := requestid.Value(c); id != "" {
		meta["request_id"] = id
	}
	return meta
}
