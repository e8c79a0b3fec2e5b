package api

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the schema, submission, upload, and remote endpoints.
// Reads are public; everything that mutates goes through the auth middleware.
func RegisterRoutes(app *fiber.App, h *Handler, uploads *UploadHandler, remote *RemoteHandler, authRequired fiber.Handler) {
	grp := app.Group("/api")

	grp.Get("/schemas", h.ListSchemas)
	grp.Get("/schemas/:id", h.GetSchema)
	grp.Get("/schemas/:id/form", h.GetForm)
	grp.Post("/schemas", authRequired, h.CreateSchema)
	grp.Put("/schemas/:id", authRequired, h.UpdateSchema)
	grp.Delete("/schemas/:id", authRequired, h.DeleteSchema)

	grp.Post("/schemas/:id/submissions", h.CreateSubmission)
	grp.Get("/schemas/:id/submissions", authRequired, h.ListSubmissions)
	grp.Get("/schemas/:id/submissions/:subID", authRequired, h.GetSubmission)

	if uploads != nil {
		grp.Post("/uploads", uploads.Upload)
		grp.Get("/uploads/:id", uploads.Download)
		grp.Delete("/uploads/:id", authRequired, uploads.Delete)
	}

	if remote != nil {
		grp.Get("/remote/schema", remote.GetSchema)
		grp.Post("/remote/schema/refresh", authRequired, remote.Refresh)
	}
}
