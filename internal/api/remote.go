package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"formspec-backend/internal/remote"
)

// RemoteHandler proxies the upstream ready-made schema document.
type RemoteHandler struct {
	client *remote.Client
}

func NewRemoteHandler(client *remote.Client) *RemoteHandler {
	return &RemoteHandler{client: client}
}

// GetSchema handles GET /api/remote/schema. Serves the cached document while
// fresh; falls back to a stale copy when the upstream is down.
func (h *RemoteHandler) GetSchema(c *fiber.Ctx) error {
	doc, err := h.client.FetchStale(c.Context())
	if err != nil {
		return NewAppError("UPSTREAM_UNAVAILABLE", 502,
			fmt.Sprintf("Remote schema unavailable: %v", err))
	}
	return c.JSON(fiber.Map{"data": doc})
}

// Refresh handles POST /api/remote/schema/refresh — drops the cache so the
// next fetch hits the upstream.
func (h *RemoteHandler) Refresh(c *fiber.Ctx) error {
	h.client.Invalidate()
	doc, err := h.client.Fetch(c.Context())
	if err != nil {
		return NewAppError("UPSTREAM_UNAVAILABLE", 502,
			fmt.Sprintf("Remote schema unavailable: %v", err))
	}
	return c.JSON(fiber.Map{"data": doc})
}
