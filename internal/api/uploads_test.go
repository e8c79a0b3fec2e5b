package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"formspec-backend/internal/config"
	"formspec-backend/internal/schemastore"
	"formspec-backend/internal/storage"
	"formspec-backend/internal/store"
)

func uploadApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := store.New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "uploads",
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
			}
			return c.Status(500).JSON(ErrorResponse{
				Error: &AppError{Code: "INTERNAL_ERROR", Message: err.Error()},
			})
		},
	})
	noAuth := func(c *fiber.Ctx) error { return c.Next() }
	h := NewHandler(schemastore.NewMemoryStore(), db)
	uploads := NewUploadHandler(db, storage.NewLocalStorage(t.TempDir()), 1024)
	RegisterRoutes(app, h, uploads, nil, noAuth)
	return app
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(part, strings.NewReader(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestUpload_StageAndDownload(t *testing.T) {
	app := uploadApp(t)

	body, contentType := multipartUpload(t, "notes.txt", "staged bytes")
	req, _ := http.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	if resp.StatusCode != 201 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}
	_, data := parseData(t, resp)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatal("upload should return an id")
	}
	if data["name"] != "notes.txt" || data["size"] != float64(len("staged bytes")) {
		t.Fatalf("unexpected upload descriptor: %v", data)
	}

	// Download streams the same bytes back with the stored metadata
	dlReq, _ := http.NewRequest("GET", "/api/uploads/"+id, nil)
	dlResp, err := app.Test(dlReq, -1)
	if err != nil {
		t.Fatalf("download request: %v", err)
	}
	if dlResp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", dlResp.StatusCode)
	}
	got, _ := io.ReadAll(dlResp.Body)
	if string(got) != "staged bytes" {
		t.Fatalf("download mismatch: %q", got)
	}
	if !strings.Contains(dlResp.Header.Get("Content-Disposition"), "notes.txt") {
		t.Fatalf("missing filename in disposition: %s", dlResp.Header.Get("Content-Disposition"))
	}
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	app := uploadApp(t)

	// Handler cap is 1024 bytes
	body, contentType := multipartUpload(t, "big.bin", strings.Repeat("x", 2048))
	req, _ := http.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	if resp.StatusCode != 413 {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestUpload_DeleteReleasesStagedFile(t *testing.T) {
	app := uploadApp(t)

	body, contentType := multipartUpload(t, "gone.txt", "x")
	req, _ := http.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, _ := app.Test(req, -1)
	_, data := parseData(t, resp)
	id, _ := data["id"].(string)

	delReq, _ := http.NewRequest("DELETE", "/api/uploads/"+id, nil)
	delResp, err := app.Test(delReq, -1)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if delResp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", delResp.StatusCode)
	}

	dlReq, _ := http.NewRequest("GET", "/api/uploads/"+id, nil)
	dlResp, _ := app.Test(dlReq, -1)
	if dlResp.StatusCode != 404 {
		t.Fatalf("deleted upload should 404, got %d", dlResp.StatusCode)
	}
}

func parseData(t *testing.T, resp *http.Response) (map[string]any, map[string]any) {
	t.Helper()
	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("parse response %s: %v", raw, err)
	}
	data, _ := decoded["data"].(map[string]any)
	return decoded, data
}
