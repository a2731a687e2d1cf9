package response

import "github.com/gin-gonic/gin"

// The public endpoints speak the shapes the bundled web client expects:
// successes carry their own fields, failures are always {"error": msg}.

func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

func OK(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(200, payload)
}
