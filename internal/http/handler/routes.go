package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"standardsapi/internal/audit"
	"standardsapi/internal/http/middleware"
	"standardsapi/internal/resolver"
	"standardsapi/internal/service"
)

// Services bundles the collaborators the HTTP layer needs.
type Services struct {
	Folders   service.FolderService
	Documents service.DocumentService
	Standards service.StandardService
	Reports   service.ReportService
	Resolver  *resolver.Resolver
	Audit     *audit.Recorder
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic; everything interesting
// lives in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, reg *prometheus.Registry, svcs Services) {
	// Health: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	registerFolderRoutes(app, svcs)
	registerDocumentRoutes(app, svcs)
	registerStandardRoutes(app, svcs)

	// Audit history for one entity, ordered by ledger id; page forward by
	// feeding the last returned id back as since.
	app.Get("/audit", func(c *fiber.Ctx) error {
		entity := c.Query("entity")
		if entity == "" {
			return writeError(c, fiber.StatusBadRequest, "ENTITY_REQUIRED", "entity query parameter is required")
		}
		since, err := strconv.ParseInt(c.Query("since", "0"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SINCE", "invalid since")
		}
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		events, err := svcs.Audit.History(c.UserContext(), entity, since, limit)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": events})
	})
}

func registerFolderRoutes(app *fiber.App, svcs Services) {
	app.Post("/folders", middleware.RequireRole(middleware.RoleSteward), func(c *fiber.Ctx) error {
		var body struct {
			Name     string  `json:"name"`
			ParentID *string `json:"parent_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		folder, err := svcs.Folders.Create(c.UserContext(), body.Name, body.ParentID, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "folder")
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	})

	app.Get("/folders/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		tree, err := svcs.Folders.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err, "folder")
		}
		return c.JSON(tree)
	})

	app.Post("/folders/:id/assign", middleware.RequireRole(middleware.RoleSteward), func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body struct {
			StandardID string `json:"standard_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.StandardID == "" {
			return writeError(c, fiber.StatusBadRequest, "STANDARD_ID_REQUIRED", "standard_id is required")
		}

		res, err := svcs.Folders.Assign(c.UserContext(), id, body.StandardID, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "folder")
		}
		return c.JSON(res)
	})

	app.Post("/folders/:id/move", middleware.RequireRole(middleware.RoleSteward), func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body struct {
			ParentID *string `json:"parent_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svcs.Folders.Move(c.UserContext(), id, body.ParentID, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "folder")
		}
		return c.JSON(res)
	})
}

func registerDocumentRoutes(app *fiber.App, svcs Services) {
	// Upload document endpoint (multipart/form-data, fields: file, folder_id)
	app.Post("/documents", middleware.RequireRole(middleware.RoleAuthor), func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		folderID := c.FormValue("folder_id")
		if folderID == "" {
			return writeError(c, fiber.StatusBadRequest, "FOLDER_ID_REQUIRED", "folder_id is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := svcs.Documents.Upload(c.UserContext(), f, folderID, fh.Filename, ct, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	// List documents endpoint with limit & offset
	app.Get("/documents", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svcs.Documents.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	})

	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svcs.Documents.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(doc)
	})

	app.Get("/documents/:id/download", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svcs.Documents.DownloadURL(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(fiber.Map{"url": u})
	})

	app.Post("/documents/:id/override", middleware.RequireRole(middleware.RoleAuthor), func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body struct {
			StandardID *string `json:"standard_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		job, err := svcs.Documents.SetOverride(c.UserContext(), id, body.StandardID, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(fiber.Map{"job": job})
	})

	app.Post("/documents/:id/move", middleware.RequireRole(middleware.RoleAuthor), func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body struct {
			FolderID string `json:"folder_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.FolderID == "" {
			return writeError(c, fiber.StatusBadRequest, "FOLDER_ID_REQUIRED", "folder_id is required")
		}

		job, err := svcs.Documents.Move(c.UserContext(), id, body.FolderID, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(fiber.Map{"job": job})
	})

	// Latest validation outcome: 200 with a status word even before any
	// report exists.
	app.Get("/documents/:id/report", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		status, err := svcs.Reports.Status(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(status)
	})

	app.Get("/documents/:id/reports", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svcs.Reports.History(c.UserContext(), id, limit, offset)
		if err != nil {
			return mapServiceError(c, err, "document")
		}
		return c.JSON(res)
	})

	// Diagnostic read: which standard would govern this document right now.
	app.Get("/documents/:id/resolution", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		std, err := svcs.Resolver.Resolve(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, resolver.ErrNoStandard) {
				return c.JSON(fiber.Map{"exempt": true})
			}
			if errors.Is(err, sql.ErrNoRows) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"exempt": false, "standard": std})
	})
}

func registerStandardRoutes(app *fiber.App, svcs Services) {
	app.Post("/standards/promote", middleware.RequireRole(middleware.RoleSteward), func(c *fiber.Ctx) error {
		var body struct {
			DocumentID string `json:"document_id"`
			Name       string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil || body.DocumentID == "" {
			return writeError(c, fiber.StatusBadRequest, "DOCUMENT_ID_REQUIRED", "document_id is required")
		}

		std, err := svcs.Standards.Promote(c.UserContext(), body.DocumentID, body.Name, middleware.Subject(c))
		if err != nil {
			return mapServiceError(c, err, "standard")
		}
		return c.Status(fiber.StatusCreated).JSON(std)
	})

	app.Get("/standards", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svcs.Standards.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	})

	app.Get("/standards/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		std, err := svcs.Standards.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err, "standard")
		}
		return c.JSON(std)
	})
}

// mapServiceError translates service sentinels into the standard envelope.
func mapServiceError(c *fiber.Ctx, err error, entity string) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", entity+" not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrCycleRejected):
		return writeError(c, fiber.StatusConflict, "CYCLE_REJECTED", "move would create a cycle")
	case errors.Is(err, service.ErrInvalidSourceDocument):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_SOURCE_DOCUMENT", "source document is not structurally valid")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
