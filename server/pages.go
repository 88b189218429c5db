package server

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mood_recipe_server/render"
	"mood_recipe_server/store"
)

// pages holds one template set per page, each joined with the shared layout.
type pages map[string]*template.Template

var pageNames = []string{"index", "my_recipes", "feedback", "recipe"}

func loadPages(fsys fs.FS) (pages, error) {
	pg := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(fsys, "web/templates/layout.html", "web/templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pg[name] = t
	}
	return pg, nil
}

type pageData struct {
	Title  string
	Active string
	Recipe *recipeView
}

type recipeView struct {
	store.Recipe
	Visitor          string
	InstructionsHTML template.HTML
}

func (s *Server) renderPage(w http.ResponseWriter, name string, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("[server] render page failed", zap.String("page", name), zap.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "index", http.StatusOK, pageData{Title: "Mood Recipes", Active: "home"})
}

func (s *Server) handleMyRecipesPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "my_recipes", http.StatusOK, pageData{Title: "My Recipes", Active: "my-recipes"})
}

func (s *Server) handleFeedbackPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "feedback", http.StatusOK, pageData{Title: "Feedback", Active: "feedback"})
}

func (s *Server) handleRecipePage(w http.ResponseWriter, r *http.Request) {
	visitor := store.Key(chi.URLParam(r, "visitor"))
	rec, err := s.store.Recipe(r.Context(), visitor, chi.URLParam(r, "mood"), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("[store] get recipe failed", zap.Error(err))
		http.Error(w, "failed to load recipe", http.StatusInternalServerError)
		return
	}
	steps, err := render.Instructions(rec.Instructions)
	if err != nil {
		s.logger.Error("[server] render instructions failed", zap.String("id", rec.ID), zap.Error(err))
		http.Error(w, "failed to render recipe", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "recipe", http.StatusOK, pageData{
		Title:  rec.Name,
		Active: "my-recipes",
		Recipe: &recipeView{Recipe: rec, Visitor: visitor, InstructionsHTML: steps},
	})
}
