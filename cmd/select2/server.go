package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-select2/components/timezones"
	"github.com/goliatone/go-select2/pkg/render"
	"github.com/goliatone/go-select2/pkg/render/template/gotemplate"
	"github.com/goliatone/go-select2/pkg/select2"
)

//go:embed templates/*.tpl
var pageTemplates embed.FS

const (
	tokenField = "_token"
	pageTitle  = "Multi-choice fields"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo form with multi-choice widgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(v)
			logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return srv.listen(ctx, cfg.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("base-path", "", "path prefix for the timezone query endpoint")
	return cmd
}

type server struct {
	logger logrus.FieldLogger
	fields []formField
	markup *select2.MarkupRenderer
	pages  *gotemplate.Engine
	token  string
	router *mux.Router
}

func newServer(ctx context.Context, cfg config, logger logrus.FieldLogger) (*server, error) {
	set, err := buildFields(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	markup, err := select2.NewMarkupRenderer(select2.WithCSSClass("select2-offscreen"))
	if err != nil {
		return nil, err
	}
	pages, err := gotemplate.New(
		gotemplate.WithFS(pageTemplates),
		gotemplate.WithExtension(".tpl"),
		gotemplate.WithGlobalData(map[string]any{"title": pageTitle}),
	)
	if err != nil {
		return nil, err
	}

	s := &server{
		logger: logger,
		fields: set.fields,
		markup: markup,
		pages:  pages,
		token:  uuid.NewString(),
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.showForm).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.submitForm).Methods(http.MethodPost)
	for _, f := range set.defined {
		if handler := f.QueryHandler(select2.WithQueryLogger(logger)); handler != nil {
			s.router.Handle(f.QueryURL(), handler).Methods(http.MethodGet, http.MethodHead)
			logger.WithField("path", f.QueryURL()).Debug("mounted query endpoint")
		}
	}
	pattern, err := set.timezones.RegisterRoutes(timezones.MuxFunc(func(pattern string, h http.Handler) {
		s.router.Handle(pattern, h).Methods(http.MethodGet, http.MethodHead)
	}), cfg.BasePath)
	if err != nil {
		return nil, err
	}
	logger.WithField("path", pattern).Debug("mounted timezone endpoint")
	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) listen(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *server) showForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, nil, http.StatusOK, false, nil)
}

func (s *server) submitForm(w http.ResponseWriter, r *http.Request) {
	req := select2.NewFormRequest(r)
	if err := req.Err(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if token, _ := req.Param(tokenField); token != s.token {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	var problems []string
	for _, f := range s.fields {
		if err := f.Submit(r.Context(), req); err != nil {
			s.logger.WithError(err).WithField("field", f.Key()).Warn("submission rejected")
			problems = append(problems, fmt.Sprintf("%s: %v", f.Label(), err))
		}
	}
	if len(problems) > 0 {
		s.renderPage(w, r, req, http.StatusUnprocessableEntity, false, problems)
		return
	}
	s.renderPage(w, r, req, http.StatusOK, true, nil)
}

func (s *server) renderPage(w http.ResponseWriter, r *http.Request, req select2.Request, status int, saved bool, problems []string) {
	head := render.NewHead()
	fields := make([]any, 0, len(s.fields))
	for i, f := range s.fields {
		var hidden []render.HiddenField
		if i == 0 {
			hidden = append(hidden, render.CSRFToken(tokenField, s.token))
		}
		html, err := f.Render(r.Context(), req, head, s.markup, hidden...)
		if err != nil && req != nil {
			// A rejected submission cannot be shown again, fall back to the model.
			html, err = f.Render(r.Context(), nil, head, s.markup, hidden...)
		}
		if err != nil {
			s.logger.WithError(err).WithField("field", f.Key()).Error("render field")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		fields = append(fields, map[string]any{
			"id":    f.MarkupID(),
			"label": f.Label(),
			"html":  html,
		})
	}

	var scripts strings.Builder
	if _, err := head.WriteTo(&scripts); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page, err := s.pages.RenderTemplate("templates/page", map[string]any{
		"action": r.URL.Path,
		"head":   scripts.String(),
		"saved":  saved,
		"errors": problems,
		"fields": fields,
	})
	if err != nil {
		s.logger.WithError(err).Error("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
