package server

import (
	"github.com/gin-gonic/gin"

	"github.com/AbbyGrylls/impetus9-backend/internal/util"
)

func (s *Server) getVersionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version": util.Version,
			"commit":  util.Commit,
		})
	}
}
