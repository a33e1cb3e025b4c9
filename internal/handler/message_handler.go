package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/req"
	"alumnilink/internal/pkg/resp"
)

// SendMessageInput is the body of a new message.
type SendMessageInput struct {
	Text string `json:"text"`
}

// HandleListConversations lists the caller's conversations, most recent first.
func HandleListConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		resp.RespondSuccess(w, r, deps.Messaging.Conversations(r.Context(), identity.ID))
	}
}

// HandleGetConversation returns the caller's messages with one partner.
func HandleGetConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		msgs, err := deps.Messaging.Conversation(r.Context(), identity.ID, chi.URLParam(r, "partnerId"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, msgs)
	}
}

// HandleSendMessage appends a message from the caller to a partner.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Messaging.Send(r.Context(), identity.ID, chi.URLParam(r, "partnerId"), input.Text)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, msg)
	}
}
