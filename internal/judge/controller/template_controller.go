package controller

import (
	"sync"

	"codearena/internal/judge/model"
	"codearena/internal/judge/problemstore"
	"codearena/internal/judge/template"
	"codearena/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// TemplateController serves generated solution scaffolds. Generation is pure,
// so responses are cached in process keyed by (spec fingerprint, language).
type TemplateController struct {
	problems  problemstore.Store
	generator *template.Generator

	mu    sync.RWMutex
	cache map[templateKey]string
}

type templateKey struct {
	fingerprint string
	language    string
}

// NewTemplateController creates a new controller.
func NewTemplateController(problems problemstore.Store, generator *template.Generator) *TemplateController {
	return &TemplateController{
		problems:  problems,
		generator: generator,
		cache:     make(map[templateKey]string),
	}
}

// RegisterRoutes mounts the controller on a router group.
func (h *TemplateController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/problems/:id/template", h.GetTemplate)
	rg.GET("/languages", h.GetLanguages)
}

// GetTemplate returns the scaffold for one problem and language.
func (h *TemplateController) GetTemplate(c *gin.Context) {
	problemID, err := parseProblemID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	language := c.Query("language")
	if language == "" {
		response.BadRequest(c, "language is required")
		return
	}

	spec, err := h.problems.GetFunctionSpec(c.Request.Context(), problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	code, err := h.generate(spec, language)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"problem_id": problemID,
		"language":   language,
		"function":   spec.Name,
		"code":       code,
	})
}

// GetLanguages lists the languages templates can be generated for.
func (h *TemplateController) GetLanguages(c *gin.Context) {
	response.Success(c, gin.H{"languages": h.generator.Languages()})
}

func (h *TemplateController) generate(spec model.FunctionSpec, language string) (string, error) {
	key := templateKey{fingerprint: spec.Fingerprint(), language: language}

	h.mu.RLock()
	code, ok := h.cache[key]
	h.mu.RUnlock()
	if ok {
		return code, nil
	}

	code, err := h.generator.Generate(spec, language)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	h.cache[key] = code
	h.mu.Unlock()
	return code, nil
}
