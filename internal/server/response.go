// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ok sends a 200 response with the given payload.
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// created sends a 201 response with the given payload.
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// badRequest sends a 400 error envelope.
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": 0, "code": http.StatusBadRequest, "message": message})
}

// notFound sends a 404 error envelope.
func notFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": 0, "code": http.StatusNotFound, "message": message})
}

// upstreamError sends a 502 error envelope for failures talking to the
// paper sources.
func upstreamError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"ok": 0, "code": http.StatusBadGateway, "message": err.Error()})
}

// internalError sends a 500 error envelope.
func internalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": 0, "code": http.StatusInternalServerError, "message": err.Error()})
}
