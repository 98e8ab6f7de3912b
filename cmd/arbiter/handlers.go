package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/civicsignal/arbiter/moderation"
	"github.com/civicsignal/arbiter/oracle"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
)

// hard cap on the attached media payload, before base64 or multipart overhead
const maxMediaBytes = 10 * 1024 * 1024

type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthStatus struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	OracleConfigured bool   `json:"oracle_configured"`
}

// GET /_health
func (srv *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:           "ok",
		Version:          versioninfo.Short(),
		OracleConfigured: srv.engine.Signer != nil,
	})
}

// POST /moderate
//
// multipart form: required "text" field, optional single "file" (image or
// video, routed on file extension).
func (srv *Server) handleModerate(c echo.Context) error {
	// derive from the request context so a disconnected client cancels
	// in-flight capability calls
	ctx, cancel := context.WithTimeout(c.Request().Context(), srv.requestTimeout)
	defer cancel()

	text := c.FormValue("text")
	if strings.TrimSpace(text) == "" {
		return c.JSON(http.StatusBadRequest, GenericError{
			Error:   "BadRequest",
			Message: "form field missing or empty: text",
		})
	}

	req := moderation.Request{Text: text}

	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxMediaBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, GenericError{
				Error:   "PayloadTooLarge",
				Message: "media file exceeds 10MB limit",
			})
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("opening uploaded file: %w", err)
		}
		defer f.Close()
		content, err := io.ReadAll(io.LimitReader(f, maxMediaBytes+1))
		if err != nil {
			return fmt.Errorf("reading uploaded file: %w", err)
		}
		if len(content) > maxMediaBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, GenericError{
				Error:   "PayloadTooLarge",
				Message: "media file exceeds 10MB limit",
			})
		}
		req.Media = content
		req.Modality = modalityFromFilename(fh.Filename)
		srv.logger.Info("processing uploaded file", "filename", fh.Filename, "size", len(content), "modality", req.Modality)
	}

	result, err := srv.engine.ProcessReport(ctx, &req)
	if errors.Is(err, oracle.ErrNotConfigured) {
		return c.JSON(http.StatusInternalServerError, GenericError{
			Error:   "OracleNotConfigured",
			Message: "oracle signing failed - service configuration error",
		})
	} else if err != nil {
		srv.logger.Error("moderation request failed", "err", err)
		return c.JSON(http.StatusInternalServerError, GenericError{
			Error:   "InternalServerError",
			Message: "internal error during content moderation",
		})
	}
	return c.JSON(http.StatusOK, result)
}

// the declared modality is inferred from the file name only; the evaluators
// treat the tag as trusted and reject undecodable payloads themselves
func modalityFromFilename(name string) moderation.Modality {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".avi":
		return moderation.ModalityVideo
	default:
		return moderation.ModalityImage
	}
}

func (srv *Server) errorHandler(err error, ctx echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	srv.logger.Warn("HTTP request error", "statusCode", code, "path", ctx.Path(), "err", err)
	if !ctx.Response().Committed {
		if err := ctx.JSON(code, GenericError{Error: http.StatusText(code), Message: msg}); err != nil {
			srv.logger.Error("failed to write error response", "err", err)
		}
	}
}
