package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// link is one entry of an index's _links object.
type link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type route struct {
	name   string
	path   string
	method string
}

var (
	rootRoutes = []route{
		{"history", "/api/v1/history", http.MethodGet},
		{"manual", "/api/v1/manual", http.MethodGet},
		{"loglevel", "/api/v1/loglevel", http.MethodPut},
		{"logmessages", "/api/v1/logmessages", http.MethodGet},
		{"state", "/api/v1/state", http.MethodPut},
		{"states", "/api/v1/states", http.MethodGet},
		{"status", "/api/v1/status", http.MethodGet},
		{"system", "/api/v1/system", http.MethodGet},
		{"realtime", "/ws/status", http.MethodGet},
	}

	manualRoutes = []route{
		{"forward", "/api/v1/manual/forward", http.MethodPut},
		{"backward", "/api/v1/manual/backward", http.MethodPut},
		{"stop", "/api/v1/manual/stop", http.MethodPut},
		{"cutter_on", "/api/v1/manual/cutter_on", http.MethodPut},
		{"cutter_off", "/api/v1/manual/cutter_off", http.MethodPut},
	}

	historyRoutes = []route{
		{"battery", "/api/v1/history/battery", http.MethodGet},
		{"telemetry", "/api/v1/history/telemetry", http.MethodGet},
	}
)

// links renders routes as absolute hrefs on the host the client used.
func links(c echo.Context, routes []route) map[string]interface{} {
	host := c.Scheme() + "://" + c.Request().Host

	out := make(map[string]link, len(routes))
	for _, r := range routes {
		out[r.name] = link{Href: host + r.path, Method: r.method}
	}
	return map[string]interface{}{"_links": out}
}

// GetIndex lists the top level resources.
func (h *Handler) GetIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, links(c, rootRoutes))
}

// GetManualIndex lists the manual commands.
func (h *Handler) GetManualIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, links(c, manualRoutes))
}

// GetHistoryIndex lists the history resources.
func (h *Handler) GetHistoryIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, links(c, historyRoutes))
}

// noStore keeps clients and proxies from caching live GET responses.
func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Method == http.MethodGet {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-store, must-revalidate")
		}
		return next(c)
	}
}
