// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command toolshed runs the Toolshed web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"toolshed/internal/auth"
	"toolshed/internal/config"
	"toolshed/internal/handler"
	"toolshed/internal/logging"
	"toolshed/internal/mailer"
	"toolshed/internal/media"
	"toolshed/internal/middleware"
	"toolshed/internal/render"
	"toolshed/internal/session"
	"toolshed/internal/store"
	"toolshed/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Structured logging to stdout, with WARN and above mirrored into the
	// events table for the admin event log.
	logLevel := parseLogLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))

	ctx := context.Background()
	if err := store.EnsureAdmin(ctx, db, store.AdminBootstrap{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("locating templates: %w", err)
	}
	renderer, err := render.New(templatesFS)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	uploads, err := media.NewLocalStore(cfg.UploadsDir, "/uploads")
	if err != nil {
		return err
	}

	// Gallery files live outside the uploads tree so the public /uploads file
	// server never reaches them; delivery goes through the authenticated
	// gallery route only.
	galleryFiles, err := media.NewLocalStore(cfg.GalleryDir, "/gallery/file")
	if err != nil {
		return err
	}

	var mail mailer.Mailer
	if cfg.MailEnabled() {
		mail = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Sender:   cfg.SMTPSender,
			Timeout:  cfg.MailTimeout,
		})
	} else {
		slog.Info("SMTP not configured, logging outgoing mail instead")
		mail = mailer.LogMailer{}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	tokens := auth.NewTokenService([]byte(cfg.Secret))
	csrfMiddleware := middleware.CSRF([]byte(cfg.Secret), cfg.IsDevelopment())

	frontendHandler := handler.NewFrontendHandler(db, uploads, galleryFiles, renderer, sessionManager)
	authHandler := handler.NewAuthHandler(db, tokens, mail, renderer, sessionManager, strings.TrimRight(cfg.BaseURL, "/"))
	contactHandler := handler.NewContactHandler(mail, renderer, sessionManager, cfg.ContactAddr)
	toolsAdmin := handler.NewToolsAdminHandler(db, renderer, sessionManager)
	postsAdmin := handler.NewPostsAdminHandler(db, uploads, renderer, sessionManager)
	newsAdmin := handler.NewNewsAdminHandler(db, renderer, sessionManager)
	galleryAdmin := handler.NewGalleryAdminHandler(db, galleryFiles, renderer, sessionManager)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(cfg.UploadTimeout))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	// Public pages.
	r.Get("/", frontendHandler.Home)
	r.Get("/tools", frontendHandler.Tools)
	r.Get("/blog", frontendHandler.Blog)
	r.Get("/blog/{slug}", frontendHandler.BlogPost)
	r.Get("/news", frontendHandler.News)
	r.Get("/news/{slug}", frontendHandler.NewsItem)
	r.Get("/gallery", frontendHandler.Gallery)

	// Public forms.
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Get("/contact", contactHandler.Form)
		r.Post("/contact", contactHandler.Submit)

		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/forgot-password", authHandler.ForgotPasswordForm)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Get("/reset-password/{token}", authHandler.ResetPasswordForm)
		r.Post("/reset-password/{token}", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/account/password", authHandler.ChangePasswordForm)
			r.Post("/account/password", authHandler.ChangePassword)
		})
	})

	// The gallery listing is public like the other content kinds; only the
	// raw-file bytes are members-only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/gallery/file/{id}", frontendHandler.GalleryFile)
	})

	// Admin area.
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAdmin)

		r.Get("/tools", toolsAdmin.List)
		r.Get("/tools/new", toolsAdmin.New)
		r.Post("/tools", toolsAdmin.Create)
		r.Get("/tools/{id}", toolsAdmin.Edit)
		r.Post("/tools/{id}", toolsAdmin.Update)
		r.Post("/tools/{id}/delete", toolsAdmin.Delete)

		r.Get("/blog", postsAdmin.List)
		r.Get("/blog/new", postsAdmin.New)
		r.Post("/blog", postsAdmin.Create)
		r.Get("/blog/{id}", postsAdmin.Edit)
		r.Post("/blog/{id}", postsAdmin.Update)
		r.Post("/blog/{id}/delete", postsAdmin.Delete)
		r.Post("/blog/upload-image", postsAdmin.UploadInlineImage)

		r.Get("/news", newsAdmin.List)
		r.Get("/news/new", newsAdmin.New)
		r.Post("/news", newsAdmin.Create)
		r.Get("/news/{id}", newsAdmin.Edit)
		r.Post("/news/{id}", newsAdmin.Update)
		r.Post("/news/{id}/delete", newsAdmin.Delete)

		r.Get("/gallery", galleryAdmin.List)
		r.Get("/gallery/upload", galleryAdmin.UploadForm)
		r.Post("/gallery/upload", galleryAdmin.Upload)
		r.Get("/gallery/{id}", galleryAdmin.Edit)
		r.Post("/gallery/{id}", galleryAdmin.Update)
		r.Post("/gallery/{id}/delete", galleryAdmin.Delete)
	})

	// Blog and news media, referenced from rendered markdown.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadsDir))))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
