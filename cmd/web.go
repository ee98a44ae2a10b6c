/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/urfave/cli/v3"

	"github.com/tamsinw/baseline/db"
	"github.com/tamsinw/baseline/routes"
	"github.com/tamsinw/baseline/static"
	"github.com/tamsinw/baseline/templates"
	"github.com/tamsinw/baseline/tracker"
)

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web dashboard",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   "127.0.0.1:8077",
			Sources: cli.EnvVars("BASELINE_ADDR"),
			Usage:   "the address to listen on",
		},
		dataDirFlag(),
	},
	Action: start,
}

func start(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error("Failed to close store", "error", err)
		}
	}()

	appLogger.Info("Database ready", "path", store.Path())

	service := tracker.NewService(store)

	uploadDir := filepath.Join(cmd.String("data-dir"), "uploads")
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(routes.RequestLogger)
	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
	}))
	f.Use(session.Sessioner(session.Options{
		Initer: db.SessionIniter(store),
	}))
	f.Use(csrf.Csrfer())
	f.Use(template.Templater(template.Options{
		FileSystem: fs,
		FuncMaps:   []htmltemplate.FuncMap{templateFuncs()},
	}))
	f.Use(routes.NoCacheHeaders())
	f.Use(routes.CSRFInjector())
	f.Use(routes.FlashInjector())

	f.Map(service)
	f.Map(routes.UploadDir(uploadDir))

	configureEmptyNotFoundHandler(f)

	f.Get("/", routes.Dashboard)
	f.Get("/biomarkers/{id}", routes.ViewBiomarker)
	f.Post("/biomarkers/{id}/readings", routes.CreateReading)
	f.Post("/readings/{id}/update", routes.UpdateReading)
	f.Post("/readings/{id}/delete", routes.DeleteReading)

	f.Get("/settings", routes.Settings)
	f.Post("/settings/biomarkers", routes.CreateBiomarker)
	f.Post("/settings/biomarkers/{id}", routes.UpdateBiomarker)
	f.Post("/settings/biomarkers/{id}/delete", routes.DeleteBiomarker)
	f.Post("/settings/biomarkers/{id}/range", routes.SetReferenceRange)
	f.Post("/settings/biomarkers/{id}/range/delete", routes.DeleteReferenceRange)

	f.Post("/settings/import", routes.UploadImportCSV)
	f.Get("/settings/import/preview", routes.ImportPreview)
	f.Post("/settings/import/confirm", routes.ConfirmImport)
	f.Post("/settings/import/cancel", routes.CancelImport)
	f.Get("/settings/export", routes.ExportReadingsCSV)
	f.Get("/settings/backup", routes.DownloadBackup)
	f.Post("/settings/restore", routes.RestoreBackup)

	addr := cmd.String("addr")
	appLogger.Info("Starting web server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      f,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     requestStdLogger,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("web server failed: %w", err)
	}

	return nil
}

// configureEmptyNotFoundHandler makes unknown paths answer with a bare
// 404 instead of flamego's default body.
func configureEmptyNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
	})
}

// templateFuncs are the helpers available inside page templates.
func templateFuncs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"isTrue":      isTrue,
		"floatString": floatString,
		"join":        strings.Join,
	}
}

// isTrue dereferences an optional bool, treating absent as false.
// Templates cannot compare through pointers on their own.
func isTrue(p *bool) bool {
	return p != nil && *p
}

// floatString renders an optional bound for a form input, with the
// empty string standing in for an absent bound.
func floatString(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
