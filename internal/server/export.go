package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.store.Export()
	if err != nil {
		s.writeError(c, err)
		return
	}
	name := filepath.Base(s.store.Path())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, constants.XLSXMimeType, data)
	s.logger.Info("export.xlsx.ok", "bytes", len(data), "file", name)
}
