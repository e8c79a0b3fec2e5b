package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formspec-backend/internal/compiler"
	"formspec-backend/internal/schema"
	"formspec-backend/internal/schemastore"
	"formspec-backend/internal/store"
)

// Handler serves schema documents and the derived form-rendering contract.
type Handler struct {
	schemas schemastore.Store
	db      *store.Store
}

func NewHandler(schemas schemastore.Store, db *store.Store) *Handler {
	return &Handler{schemas: schemas, db: db}
}

// ListSchemas handles GET /api/schemas
func (h *Handler) ListSchemas(c *fiber.Ctx) error {
	docs, err := h.schemas.List(c.Context())
	if err != nil {
		return fmt.Errorf("list schemas: %w", err)
	}
	if docs == nil {
		docs = []*schema.Document{}
	}
	return c.JSON(fiber.Map{"data": docs})
}

// GetSchema handles GET /api/schemas/:id
func (h *Handler) GetSchema(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.schemas.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("get schema %s: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": doc})
}

// CreateSchema handles POST /api/schemas. Missing schema and field ids are
// assigned here; ids are opaque, stable, and never reused.
func (h *Handler) CreateSchema(c *fiber.Ctx) error {
	var doc schema.Document
	if err := c.BodyParser(&doc); err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	assignFieldIDs(&doc)

	if err := doc.Validate(); err != nil {
		return NewAppError("VALIDATION_FAILED", 422, err.Error())
	}

	if existing, err := h.schemas.Get(c.Context(), doc.ID); err == nil && existing != nil {
		return ConflictError("Schema already exists: " + doc.ID)
	}

	if err := h.schemas.Put(c.Context(), &doc); err != nil {
		return fmt.Errorf("put schema: %w", err)
	}
	return c.Status(201).JSON(fiber.Map{"data": doc})
}

// UpdateSchema handles PUT /api/schemas/:id — whole-document replacement.
func (h *Handler) UpdateSchema(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.schemas.Get(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("get schema %s: %w", id, err)
	}

	var doc schema.Document
	if err := c.BodyParser(&doc); err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}
	doc.ID = id // the URL wins
	assignFieldIDs(&doc)

	if err := doc.Validate(); err != nil {
		return NewAppError("VALIDATION_FAILED", 422, err.Error())
	}

	if err := h.schemas.Put(c.Context(), &doc); err != nil {
		return fmt.Errorf("put schema: %w", err)
	}
	return c.JSON(fiber.Map{"data": doc})
}

// DeleteSchema handles DELETE /api/schemas/:id
func (h *Handler) DeleteSchema(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.schemas.Delete(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("delete schema %s: %w", id, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id}})
}

// formField is one entry of the rendering contract: the descriptor, the
// type's capabilities, whether to offer the validation editor, and the
// field's initial value.
type formField struct {
	Field             schema.FieldDescriptor `json:"field"`
	Config            schema.TypeConfig      `json:"config"`
	ValidationSection bool                   `json:"validationSection"`
	Default           any                    `json:"default"`
}

// GetForm handles GET /api/schemas/:id/form — the compiled contract a
// renderer needs: per-field defaults plus the type configuration.
func (h *Handler) GetForm(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.schemas.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("get schema %s: %w", id, err)
	}

	compiled := compiler.Compile(doc)
	defaults := compiled.Defaults()

	fields := make([]formField, len(doc.Fields))
	for i, f := range doc.Fields {
		fields[i] = formField{
			Field:             f,
			Config:            schema.ConfigFor(f.Type),
			ValidationSection: schema.NeedsValidationSection(&doc.Fields[i]),
			Default:           defaults[f.ID],
		}
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":          doc.ID,
		"name":        doc.Name,
		"description": doc.Description,
		"fields":      fields,
	}})
}

// assignFieldIDs gives ids to fields that arrive without one (a builder
// creating new fields in one save).
func assignFieldIDs(doc *schema.Document) {
	for i := range doc.Fields {
		if doc.Fields[i].ID == "" {
			doc.Fields[i].ID = uuid.New().String()
		}
	}
}
