package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mood_recipe_server/generator"
	"mood_recipe_server/store"
)

// --- Handlers ---

// Age and rating arrive as numbers or as strings from form fields.
type recipeCreateReq struct {
	Mood string      `json:"mood"`
	Age  json.Number `json:"age"`
	City string      `json:"city"`
}

type feedbackReq struct {
	Rating   json.Number `json:"rating"`
	Comment  string      `json:"comment"`
	ClientIP string      `json:"clientIP"`
}

type feedbackInput struct {
	Rating  int    `validate:"gte=1,lte=5"`
	Comment string `validate:"max=2000"`
}

type feedbackResp struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type hitCountResp struct {
	HitCount int64 `json:"hit_count"`
}

func (s *Server) handleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var body recipeCreateReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	age, err := body.Age.Int64()
	if err != nil {
		writeError(w, http.StatusBadRequest, "age must be a whole number")
		return
	}
	// Mood is kept verbatim; it still has to be more than whitespace.
	if strings.TrimSpace(body.Mood) == "" {
		writeError(w, http.StatusBadRequest, "mood is invalid (required)")
		return
	}
	req := generator.Request{
		Mood: body.Mood,
		Age:  int(age),
		City: strings.TrimSpace(body.City),
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ip := clientIP(r)
	s.logger.Info("[server] generating recipe",
		zap.String("ip", ip), zap.String("mood", req.Mood), zap.Int("age", req.Age), zap.String("city", req.City))

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	draft, err := s.gen.Generate(ctx, req)
	if err != nil {
		var ferr *generator.FormatError
		if errors.As(err, &ferr) {
			s.metrics.generation(outcomeFormatError)
			writeError(w, http.StatusBadGateway, "failed to generate valid recipe format")
			return
		}
		s.metrics.generation(outcomeUpstreamError)
		s.logger.Error("[server] generation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rec := store.Recipe{
		ID:           store.NewRecipeID(),
		Name:         draft.Name,
		PrepTime:     draft.PrepTime,
		Ingredients:  draft.Ingredients,
		Instructions: draft.Instructions,
		Mood:         draft.Mood,
		Age:          req.Age,
		City:         req.City,
		CreatedAt:    s.now().In(ist).Format(createdAtLayout),
	}
	if err := s.store.SaveRecipe(r.Context(), ip, rec); err != nil {
		s.metrics.generation(outcomeStoreError)
		s.logger.Error("[store] save recipe failed", zap.String("id", rec.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}
	s.metrics.generation(outcomeOK)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMyRecipes(w http.ResponseWriter, r *http.Request) {
	visitor := store.Key(chi.URLParam(r, "visitor"))
	if visitor == "" {
		writeError(w, http.StatusBadRequest, "visitor is required")
		return
	}
	h, err := s.store.History(r.Context(), visitor)
	if err != nil {
		s.logger.Error("[store] history failed", zap.String("visitor", visitor), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load recipes")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleGetIP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	loc, err := s.geo.Lookup(r.Context(), ip)
	if err != nil {
		s.logger.Warn("[geo] lookup failed", zap.String("ip", ip), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch IP info")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleHitCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.IncrementHits(r.Context())
	if err != nil {
		s.logger.Error("[store] hit count failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update hit count")
		return
	}
	s.metrics.hits.Inc()
	writeJSON(w, http.StatusOK, hitCountResp{HitCount: n})
}

func (s *Server) handleSaveFeedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, feedbackResp{Error: "invalid JSON body"})
		return
	}
	rating, err := body.Rating.Int64()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, feedbackResp{Error: "rating must be a whole number"})
		return
	}
	in := feedbackInput{Rating: int(rating), Comment: strings.TrimSpace(body.Comment)}
	if err := s.validate.Struct(in); err != nil {
		writeJSON(w, http.StatusBadRequest, feedbackResp{Error: validationMessage(err)})
		return
	}

	visitor := strings.TrimSpace(body.ClientIP)
	if visitor == "" {
		visitor = clientIP(r)
	}
	id, err := s.store.SaveFeedback(r.Context(), visitor, store.Feedback{
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().In(ist).Format(createdAtLayout),
	})
	if err != nil {
		s.logger.Error("[store] save feedback failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, feedbackResp{Error: "failed to save feedback"})
		return
	}
	writeJSON(w, http.StatusOK, feedbackResp{Success: true, ID: id})
}

// --- Helpers ---

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
