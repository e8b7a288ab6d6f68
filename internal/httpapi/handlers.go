package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/service"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Auth.Register(r.Context(), req.Email, req.DisplayName, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "registered; check your email for a verification link",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, user, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":          user.ID,
			"email":       user.Email,
			"displayName": user.DisplayName,
			"roomId":      user.RoomID,
		},
	})
}

func (a *API) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Auth.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset link has been sent",
	})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (a *API) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	room, token, err := a.Rooms.CreateRoom(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"room":  roomJSON(room),
		"token": token,
	})
}

func (a *API) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	room, token, err := a.Rooms.JoinRoom(r.Context(), middleware.GetUserID(r.Context()), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":  roomJSON(room),
		"token": token,
	})
}

func (a *API) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := a.Rooms.GetRoom(r.Context(), middleware.GetRoomID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": roomJSON(room)})
}

type createEntryRequest struct {
	Description string   `json:"description"`
	Amount      int64    `json:"amount"`
	Date        int64    `json:"date"`
	MemberIDs   []string `json:"memberIds"`
}

func (a *API) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := a.Entries.CreateEntry(r.Context(),
		middleware.GetRoomID(r.Context()),
		middleware.GetUserID(r.Context()),
		service.CreateEntryInput{
			Description: req.Description,
			Amount:      req.Amount,
			Date:        req.Date,
			MemberIDs:   req.MemberIDs,
		},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entryJSON(entry)})
}

func (a *API) handleListEntries(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, total, err := a.Entries.ListEntries(r.Context(), middleware.GetRoomID(r.Context()), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = entryJSON(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": out,
		"total":   total,
	})
}

func (a *API) handleSettleEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := a.Entries.SettleMember(r.Context(),
		middleware.GetRoomID(r.Context()),
		chi.URLParam(r, "entryID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryJSON(entry)})
}

func (a *API) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := a.Entries.DeleteEntry(r.Context(),
		middleware.GetRoomID(r.Context()),
		chi.URLParam(r, "entryID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func (a *API) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	led, err := a.Ledger.GetLedger(r.Context(),
		middleware.GetRoomID(r.Context()),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]map[string]any, len(led.Rows))
	for i, row := range led.Rows {
		rows[i] = map[string]any{
			"userId":     row.UserID,
			"userName":   row.UserName,
			"payable":    row.Payable,
			"receivable": row.Receivable,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roomId": led.RoomID,
		"userId": led.UserID,
		"rows":   rows,
	})
}

func roomJSON(room *models.Room) map[string]any {
	members := make([]map[string]string, len(room.Members))
	for i, m := range room.Members {
		members[i] = map[string]string{
			"userId": m.UserID,
			"name":   m.Name,
			"email":  m.Email,
		}
	}
	return map[string]any{
		"id":        room.ID,
		"name":      room.Name,
		"code":      room.Code,
		"createdBy": room.CreatedBy,
		"createdAt": room.CreatedAt,
		"members":   members,
	}
}

func entryJSON(entry *models.Entry) map[string]any {
	members := make([]map[string]any, len(entry.Members))
	for i, m := range entry.Members {
		members[i] = map[string]any{
			"userId":     m.UserID,
			"userName":   m.UserName,
			"paidStatus": m.PaidStatus,
		}
	}
	return map[string]any{
		"id":          entry.ID,
		"roomId":      entry.RoomID,
		"date":        entry.Date,
		"description": entry.Description,
		"amount":      entry.Amount,
		"paidBy":      entry.PaidBy,
		"createdAt":   entry.CreatedAt,
		"members":     members,
	}
}
