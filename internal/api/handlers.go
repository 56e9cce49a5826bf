package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/orchestrator"
	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/skill"
)

const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into dst, writing a 400 and
// returning false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", logger)
		return false
	}
	return true
}

// contentHandler serves the orchestration endpoints.
type contentHandler struct {
	logger       *slog.Logger
	personalizer *orchestrator.Personalizer
	translator   *orchestrator.Translator
	quizzes      *orchestrator.QuizGenerator
	ask          skill.Skill
	validate     skill.Skill
	summary      skill.Skill
	catalog      *content.Catalog
	profiles     ProfileStore
}

type personalizeRequest struct {
	Content   string           `json:"content"`
	ChapterID string           `json:"chapter_id,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
	Profile   *profile.Profile `json:"profile,omitempty"`
	Context   map[string]any   `json:"context,omitempty"`
}

func (h *contentHandler) personalize(w http.ResponseWriter, r *http.Request) {
	var req personalizeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Content == "" {
		WriteError(w, http.StatusBadRequest, "empty_content", "content is required", h.logger)
		return
	}

	prof, ok := h.resolveProfile(w, r, req.Profile, req.UserID)
	if !ok {
		return
	}

	contextMap := req.Context
	if contextMap == nil {
		contextMap = map[string]any{}
	}
	if req.ChapterID != "" {
		contextMap["chapter_id"] = req.ChapterID
	}

	result := h.personalizer.Personalize(r.Context(), req.Content, prof, contextMap)
	WriteJSON(w, http.StatusOK, result)
}

// resolveProfile picks the inline profile, the stored profile, or the
// zero profile, in that order. An inline profile with bad enum values
// is a 400; a store read failure degrades to the default strategy.
func (h *contentHandler) resolveProfile(w http.ResponseWriter, r *http.Request, inline *profile.Profile, userID string) (profile.Profile, bool) {
	if inline != nil {
		if err := inline.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_profile", err.Error(), h.logger)
			return profile.Profile{}, false
		}
		return *inline, true
	}
	if userID != "" && h.profiles != nil {
		prof, err := h.profiles.Get(r.Context(), userID)
		if err != nil {
			h.logger.Warn("profile lookup failed, using default strategy",
				"user_id", userID, "error", err)
			return profile.Profile{UserID: userID}, true
		}
		return prof, true
	}
	return profile.Profile{}, true
}

type translateRequest struct {
	Content   string `json:"content"`
	ChapterID string `json:"chapter_id,omitempty"`
}

func (h *contentHandler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Content == "" {
		WriteError(w, http.StatusBadRequest, "empty_content", "content is required", h.logger)
		return
	}

	result := h.translator.Translate(r.Context(), req.Content, req.ChapterID)
	WriteJSON(w, http.StatusOK, result)
}

type quizRequest struct {
	ChapterID     string             `json:"chapter_id,omitempty"`
	Content       string             `json:"content,omitempty"`
	NumQuestions  int                `json:"num_questions,omitempty"`
	DifficultyMix map[string]float64 `json:"difficulty_mix,omitempty"`
	TypeMix       map[string]float64 `json:"type_mix,omitempty"`
}

func (h *contentHandler) quiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	text := req.Content
	if text == "" && req.ChapterID != "" && h.catalog != nil {
		ch, ok := h.catalog.Get(req.ChapterID)
		if !ok {
			WriteError(w, http.StatusBadRequest, "unknown_chapter", "chapter not found", h.logger)
			return
		}
		text = ch.Body
	}
	if text == "" {
		WriteError(w, http.StatusBadRequest, "empty_content", "content or chapter_id is required", h.logger)
		return
	}

	if req.NumQuestions < 0 || req.NumQuestions > 20 {
		WriteError(w, http.StatusBadRequest, "invalid_num_questions", "num_questions must be in [1, 20]", h.logger)
		return
	}
	if req.DifficultyMix != nil {
		var sum float64
		for _, share := range req.DifficultyMix {
			sum += share
		}
		if math.Abs(sum-1.0) > 1e-6 {
			WriteError(w, http.StatusBadRequest, "invalid_difficulty_mix", "difficulty_mix must sum to 1.0", h.logger)
			return
		}
	}

	params := map[string]any{}
	if req.NumQuestions > 0 {
		params["num_questions"] = req.NumQuestions
	}
	if req.DifficultyMix != nil {
		params["difficulty_mix"] = req.DifficultyMix
	}
	if req.TypeMix != nil {
		params["type_mix"] = req.TypeMix
	}

	doc, err := h.quizzes.Generate(r.Context(), req.ChapterID, text, params)
	if err != nil {
		h.logger.Error("quiz generation failed", "chapter", req.ChapterID, "error", err)
		WriteError(w, http.StatusBadGateway, "generation_failed", "quiz generation failed, please try again", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

type askRequest struct {
	Question      string `json:"question"`
	SelectedText  string `json:"selected_text"`
	ChapterID     string `json:"chapter_id,omitempty"`
	ExpandContext bool   `json:"expand_context,omitempty"`
}

type askResponse struct {
	Answer  string `json:"answer"`
	Sources any    `json:"sources,omitempty"`
}

func (h *contentHandler) askQuestion(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "empty_question", "question is required", h.logger)
		return
	}
	if req.SelectedText == "" {
		WriteError(w, http.StatusBadRequest, "empty_selection", "selected_text is required", h.logger)
		return
	}

	// A span claiming to come from a known chapter must actually be in
	// it; otherwise arbitrary client text could be answered as if it
	// were chapter content.
	if req.ChapterID != "" && h.catalog != nil {
		if ch, ok := h.catalog.Get(req.ChapterID); ok && !ch.ContainsSpan(req.SelectedText) {
			WriteError(w, http.StatusBadRequest, "span_not_in_chapter", "selected_text is not part of the chapter", h.logger)
			return
		}
	}

	res := h.ask.Invoke(r.Context(), skill.Request{
		SelectedText: req.SelectedText,
		ChapterID:    req.ChapterID,
		Params: map[string]any{
			"question":       req.Question,
			"expand_context": req.ExpandContext,
		},
	})
	if !res.Success {
		h.logger.Error("question answering failed", "chapter", req.ChapterID, "error", res.Err)
		WriteError(w, http.StatusBadGateway, "answer_failed", "could not answer the question, please try again", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, askResponse{
		Answer:  res.Content,
		Sources: res.Artifacts["sources"],
	})
}

type summarizeRequest struct {
	Content   string `json:"content,omitempty"`
	ChapterID string `json:"chapter_id,omitempty"`
	MaxPoints int    `json:"max_points,omitempty"`
}

type summarizeResponse struct {
	ChapterID string `json:"chapter_id,omitempty"`
	KeyPoints any    `json:"key_points"`
	Short     any    `json:"short"`
	Medium    any    `json:"medium"`
	Long      any    `json:"long"`
	Glossary  any    `json:"glossary"`
}

func (h *contentHandler) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	text := req.Content
	if text == "" && req.ChapterID != "" && h.catalog != nil {
		ch, ok := h.catalog.Get(req.ChapterID)
		if !ok {
			WriteError(w, http.StatusBadRequest, "unknown_chapter", "chapter not found", h.logger)
			return
		}
		text = ch.Body
	}
	if text == "" {
		WriteError(w, http.StatusBadRequest, "empty_content", "content or chapter_id is required", h.logger)
		return
	}
	if req.MaxPoints < 0 {
		WriteError(w, http.StatusBadRequest, "invalid_max_points", "max_points must be positive", h.logger)
		return
	}

	params := map[string]any{}
	if req.MaxPoints > 0 {
		params["max_points"] = req.MaxPoints
	}

	res := h.summary.Invoke(r.Context(), skill.Request{
		Content:   text,
		ChapterID: req.ChapterID,
		Params:    params,
	})
	if !res.Success {
		h.logger.Error("summarization failed", "chapter", req.ChapterID, "error", res.Err)
		WriteError(w, http.StatusBadGateway, "summary_failed", "summarization failed, please try again", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, summarizeResponse{
		ChapterID: req.ChapterID,
		KeyPoints: res.Artifacts["key_points"],
		Short:     res.Artifacts["short"],
		Medium:    res.Artifacts["medium"],
		Long:      res.Artifacts["long"],
		Glossary:  res.Artifacts["glossary"],
	})
}

type validateRequest struct {
	Content   string `json:"content"`
	ChapterID string `json:"chapter_id,omitempty"`
}

type validateResponse struct {
	ChapterID         string `json:"chapter_id,omitempty"`
	ValidationStatus  any    `json:"validation_status"`
	Scores            any    `json:"scores"`
	Issues            any    `json:"issues"`
	TerminologyReport any    `json:"terminology_report"`
	CodeQualityReport any    `json:"code_quality_report"`
}

func (h *contentHandler) validateContent(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Content == "" {
		WriteError(w, http.StatusBadRequest, "empty_content", "content is required", h.logger)
		return
	}

	params := map[string]any{}
	if req.ChapterID != "" && h.catalog != nil {
		if ch, ok := h.catalog.Get(req.ChapterID); ok && len(ch.Glossary) > 0 {
			glossary := make(map[string]string, len(ch.Glossary))
			for _, entry := range ch.Glossary {
				glossary[entry.Term] = entry.Urdu
			}
			params["glossary"] = glossary
		}
	}

	res := h.validate.Invoke(r.Context(), skill.Request{
		Content:   req.Content,
		ChapterID: req.ChapterID,
		Params:    params,
	})
	if !res.Success {
		h.logger.Error("validation failed", "chapter", req.ChapterID, "error", res.Err)
		WriteError(w, http.StatusBadGateway, "validation_failed", "validation failed, please try again", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, validateResponse{
		ChapterID:         req.ChapterID,
		ValidationStatus:  res.Artifacts["validation_status"],
		Scores:            res.Artifacts["scores"],
		Issues:            res.Artifacts["issues"],
		TerminologyReport: res.Artifacts["terminology_report"],
		CodeQualityReport: res.Artifacts["code_quality_report"],
	})
}
