package router

import "github.com/gin-gonic/gin"

// Module is a feature that mounts its routes on the versioned API group.
// Modules get their collaborators at construction so they can be registered
// on a bare engine in tests.
type Module interface {
	Register(rg *gin.RouterGroup)
}
