package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"burza/internal/auth"
	"burza/internal/grid"
	"burza/internal/metrics"
	"burza/internal/models"
	"burza/internal/reservation"
	"burza/internal/store"
)

func (s *HTTPServer) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.ListTables(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *HTTPServer) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.store.GetTable(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *HTTPServer) handleSubmitReservation(w http.ResponseWriter, r *http.Request) {
	var req reservation.SubmitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.service.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNoTablesSelected),
			errors.Is(err, reservation.ErrInvalidReservation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}

	metrics.IncTransition("submit")
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := s.authenticator.Verify(r.Context(), auth.Credentials{
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": identity.Email, "role": identity.Role})
}

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := s.service.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	found, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *HTTPServer) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, "approve", s.service.Approve)
}

func (s *HTTPServer) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, "reject", s.service.Reject)
}

func (s *HTTPServer) handleDecision(
	w http.ResponseWriter, r *http.Request,
	action string,
	decide func(ctx context.Context, id string, force bool) (*models.Reservation, error),
) {
	id := r.PathValue("id")
	force := r.URL.Query().Get("force") == "true"

	decided, err := decide(r.Context(), id, force)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, reservation.ErrAlreadyDecided):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, reservation.ErrPartiallyApplied):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}

	metrics.IncTransition(action)
	writeJSON(w, http.StatusOK, decided)
}

func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, reservation.ErrPartiallyApplied):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}
	metrics.IncTransition("delete")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleDeleteAllReservations(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.DeleteAll(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	metrics.IncTransition("delete_all")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

func (s *HTTPServer) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.editor.SetStatus(r.Context(), id, req.Status); err != nil {
		s.writeEditorError(w, r, err)
		return
	}

	table, err := s.store.GetTable(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *HTTPServer) handleBulkUpdateTables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableIDs []string `json:"tableIds"`
		Status   string   `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel := grid.Selection{Kind: grid.SelectTables, TableIDs: req.TableIDs}
	if err := s.editor.ApplyBulkStatus(r.Context(), &sel, req.Status); err != nil {
		s.writeEditorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req.TableIDs)})
}

func (s *HTTPServer) handleCreateTables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coords []grid.Coord `json:"coords"`
		Status string       `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel := grid.Selection{Kind: grid.SelectEmptyCells, Coords: req.Coords}
	created, err := s.editor.ApplyBulkCreate(r.Context(), &sel, req.Status)
	if err != nil {
		s.writeEditorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tables": created})
}

func (s *HTTPServer) handleResetTables(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetTables(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *HTTPServer) handleInitGrid(w http.ResponseWriter, r *http.Request) {
	count, err := s.editor.InitializeGrid(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": count})
}

func (s *HTTPServer) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.DeleteAllTables(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

func (s *HTTPServer) handleGridDump(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.ListTables(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"width":  s.cfg.Grid.Width,
		"height": s.cfg.Grid.Height,
		"tables": tables,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	workbook, err := s.exporter.Workbook(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.xlsx"`)
	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export")
	}
}

func (s *HTTPServer) handleDeadLetters(w http.ResponseWriter, r *http.Request) {
	letters, err := s.queue.DeadLetters(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deadletters": letters})
}

func (s *HTTPServer) writeEditorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, grid.ErrInvalidStatus),
		errors.Is(err, grid.ErrEmptySelection),
		errors.Is(err, grid.ErrWrongSelection),
		errors.Is(err, grid.ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *HTTPServer) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.internalError(w, r, err)
}

func (s *HTTPServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r.Context())).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
