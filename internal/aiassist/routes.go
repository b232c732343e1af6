package aiassist

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/aiassist", func(r chi.Router) {
		r.Post("/process_prompt", h.HandleProcessPrompt)
		r.Get("/prompts", h.HandlePrompts)
		r.Get("/test", h.HandleTestConnection)
	})
}
