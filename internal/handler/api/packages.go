package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vinsight/vinsight/internal/service"
)

// PackagesHandler serves the public price list.
type PackagesHandler struct{}

// NewPackagesHandler creates the price list handler.
func NewPackagesHandler() *PackagesHandler {
	return &PackagesHandler{}
}

// List handles GET /api/packages?currency=EUR. Unknown currencies are
// served in USD.
func (h *PackagesHandler) List(c echo.Context) error {
	currency := strings.ToUpper(c.QueryParam("currency"))
	return c.JSON(http.StatusOK, service.Packages(currency))
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
