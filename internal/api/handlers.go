package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// ErrorReply is the standard error payload, carrying a human-readable
// message alongside the HTTP status class.
type ErrorReply struct {
	Message string `json:"message"`
}

// CellularSignalRequest is the external "cellular connected/disconnected"
// notification.
type CellularSignalRequest struct {
	Name string `json:"name"`
	Up   bool   `json:"up"`
}

// defaultRequestBody is the PUT body for the default route. Pointer fields
// distinguish absent from empty; unknown fields are tolerated.
type defaultRequestBody struct {
	Interface *string `json:"interface"`
	Gateway   *string `json:"gateway"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRouteError maps the core error taxonomy onto status classes:
// validation failures are the caller's fault (400), everything else is an
// apply failure (404).
func writeRouteError(w http.ResponseWriter, err error) {
	if routes.IsValidation(err) {
		writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
		return
	}
	writeJSON(w, http.StatusNotFound, ErrorReply{Message: "Update default gateway failed: " + err.Error()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInterfaces returns the names of interfaces whose link is up.
// Method: GET
func (s *Server) handleInterfaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
		return
	}

	up, err := s.switcher.ActiveInterfaces()
	if err != nil {
		s.log.Warn("Failed to list interfaces", "error", err)
		up = nil
	}
	if up == nil {
		up = []string{}
	}
	writeJSON(w, http.StatusOK, up)
}

// handleDefault reads or replaces the default route.
// GET returns the reconciled view of OS-observed vs persisted default.
// PUT applies a change; an empty body or an absent "interface" field clears
// the default route.
func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.switcher.CurrentDefault())

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
			return
		}

		var req defaultRequestBody
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
				return
			}
		}

		change := routes.Request{}
		if req.Interface != nil {
			change.Interface = *req.Interface
		}
		if req.Gateway != nil {
			change.Gateway = *req.Gateway
		}

		cfg, err := s.switcher.SetDefault(change)
		if err != nil {
			writeRouteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
	}
}

// handleRouterDB reads or updates the interface gateway registry.
// PUT accepts either a single update object or an array of them; the
// variant is resolved here, before anything reaches the core.
func (s *Server) handleRouterDB(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.switcher.Registry().All())

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
			return
		}

		trimmed := bytes.TrimSpace(body)
		switch {
		case len(trimmed) > 0 && trimmed[0] == '[':
			var updates []routes.GatewayUpdate
			if err := json.Unmarshal(trimmed, &updates); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
				return
			}
			for _, u := range updates {
				if u.Name == "" {
					writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: interface name is required."})
					return
				}
			}
			writeJSON(w, http.StatusOK, s.switcher.UpdateInterfaces(updates))

		case len(trimmed) > 0 && trimmed[0] == '{':
			var update routes.GatewayUpdate
			if err := json.Unmarshal(trimmed, &update); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
				return
			}
			if update.Name == "" {
				writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: interface name is required."})
				return
			}
			s.switcher.UpdateInterface(update)
			writeJSON(w, http.StatusOK, update)

		default:
			writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Wrong type of router database."})
		}

	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
	}
}

// handleInterfaceEvent is the event form of a single gateway update. The
// triggering event is informational, so the core swallows re-apply errors
// and this endpoint never reports them.
func (s *Server) handleInterfaceEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
		return
	}

	var update routes.GatewayUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
		return
	}
	if update.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: interface name is required."})
		return
	}

	s.switcher.UpdateInterface(update)
	w.WriteHeader(http.StatusNoContent)
}

// handleCellular receives the external cellular up/down signal.
func (s *Server) handleCellular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorReply{Message: "method not allowed"})
		return
	}

	var req CellularSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: " + err.Error() + "."})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorReply{Message: "Invalid input: interface name is required."})
		return
	}

	if err := s.switcher.CellularSignal(req.Name, req.Up); err != nil {
		writeRouteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.switcher.CurrentDefault())
}
