package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formspec-backend/internal/compiler"
	"formspec-backend/internal/session"
	"formspec-backend/internal/store"
)

type submissionRequest struct {
	Values map[string]any `json:"values"`
}

// CreateSubmission handles POST /api/schemas/:id/submissions. The request
// values are bound into a fresh session, validated in one pass, and the
// finalized payload is persisted on success.
func (h *Handler) CreateSubmission(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.schemas.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("get schema %s: %w", id, err)
	}

	var req submissionRequest
	if err := c.BodyParser(&req); err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}

	sess := session.New()
	sess.Bind(doc)
	defer sess.Close()

	if err := sess.SetValues(req.Values); err != nil {
		return fmt.Errorf("set values: %w", err)
	}

	payload, fieldErrs, err := sess.ValidateAndSubmit()
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if fieldErrs != nil {
		return ValidationError(fieldErrorDetails(fieldErrs))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	d := h.db.Dialect
	subID := uuid.New().String()
	sqlStr := fmt.Sprintf("INSERT INTO _submissions (id, schema_id, payload) VALUES (%s)",
		store.Placeholders(d, 3))
	if _, err := store.Exec(c.Context(), h.db.DB, sqlStr, subID, doc.ID, string(raw)); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{
		"id":      subID,
		"payload": payload,
	}})
}

// ListSubmissions handles GET /api/schemas/:id/submissions
func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.schemas.Get(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("schema", id)
		}
		return fmt.Errorf("get schema %s: %w", id, err)
	}

	d := h.db.Dialect
	sqlStr := fmt.Sprintf(
		"SELECT id, payload, created_at FROM _submissions WHERE schema_id = %s ORDER BY created_at",
		d.Placeholder(1))
	rows, err := store.QueryRows(c.Context(), h.db.DB, sqlStr, id)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		out = append(out, fiber.Map{
			"id":        row["id"],
			"payload":   decodePayload(row["payload"]),
			"createdAt": row["created_at"],
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetSubmission handles GET /api/schemas/:id/submissions/:subID
func (h *Handler) GetSubmission(c *fiber.Ctx) error {
	schemaID := c.Params("id")
	subID := c.Params("subID")

	d := h.db.Dialect
	sqlStr := fmt.Sprintf(
		"SELECT id, payload, created_at FROM _submissions WHERE id = %s AND schema_id = %s",
		d.Placeholder(1), d.Placeholder(2))
	row, err := store.QueryRow(c.Context(), h.db.DB, sqlStr, subID, schemaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("submission", subID)
		}
		return fmt.Errorf("get submission %s: %w", subID, err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":        row["id"],
		"payload":   decodePayload(row["payload"]),
		"createdAt": row["created_at"],
	}})
}

// fieldErrorDetails turns the session's per-field messages into the error
// detail list the API returns. Sorted so the response is deterministic.
func fieldErrorDetails(errs map[string]string) []compiler.FieldError {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]compiler.FieldError, 0, len(keys))
	for _, k := range keys {
		details = append(details, compiler.FieldError{Field: k, Message: errs[k]})
	}
	return details
}

// decodePayload unmarshals a stored JSON payload column back to a map.
func decodePayload(v any) any {
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return v
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}
