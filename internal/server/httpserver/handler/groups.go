package handler

import "net/http"

// handleJoin handles POST /groups/join.
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinGroupRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	info, err := h.groups.Join(r.Context(), SessionToken(r.Context()), req.GroupIdentifier)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, JoinResponse{
		Success:     true,
		Message:     "Successfully joined",
		ID:          info.ID,
		Title:       info.Title,
		Username:    info.Username,
		Description: info.Description,
		PhotoURL:    info.PhotoURL,
	})
}
