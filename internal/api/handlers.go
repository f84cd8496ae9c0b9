package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/qnachat/qnachat/internal/auth"
	"github.com/qnachat/qnachat/internal/core"
	"github.com/qnachat/qnachat/internal/store"
)

type contextKey string

const userIDKey contextKey = "userID"

type APIHandler struct {
	authService *core.AuthService
	chatService *core.ChatService
	jwtManager  *auth.JWTManager
}

func NewAPIHandler(as *core.AuthService, cs *core.ChatService, jm *auth.JWTManager) *APIHandler {
	return &APIHandler{authService: as, chatService: cs, jwtManager: jm}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := h.jwtManager.Validate(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if _, err := h.authService.GetUser(userID); err != nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("Error creating user %s: %v", req.Email, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, store.ErrInvalidCredential) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Printf("Error authenticating user %s: %v", req.Email, err)
		http.Error(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	token, err := h.jwtManager.Generate(user.ID)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", req.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.authService.SetActiveSession(&user); err != nil {
		log.Printf("Error recording session for user %s: %v", req.Email, err)
		http.Error(w, "Failed to record session", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(LoginResponse{Token: token, User: user})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SetActiveSession(nil); err != nil {
		log.Printf("Error clearing session: %v", err)
		http.Error(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.ActiveSession()
	if err != nil {
		log.Printf("Error reading session: %v", err)
		http.Error(w, "Failed to read session", http.StatusInternalServerError)
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	json.NewEncoder(w).Encode(user)
}

type CreateConversationRequest struct {
	FirstMessage *string `json:"first_message,omitempty"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	// The body is optional: both an absent and an empty body mean a
	// conversation without a first message.
	var req CreateConversationRequest
	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	conversation, err := h.chatService.CreateConversation(userID, req.FirstMessage)
	if err != nil {
		log.Printf("Error creating conversation for user %s: %v", userID, err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(conversation)
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	conversations := h.chatService.ListConversations(userID)
	if conversations == nil {
		conversations = []store.Conversation{}
	}
	json.NewEncoder(w).Encode(conversations)
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	conversationID, ok := conversationIDParam(w, r)
	if !ok {
		return
	}

	conversation, found := h.chatService.GetConversation(userID, conversationID)
	if !found {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(conversation)
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

type PostMessageResponse struct {
	UserMessage store.Message `json:"user_message"`
	AIMessage   store.Message `json:"ai_message"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	conversationID, ok := conversationIDParam(w, r)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Message text cannot be empty", http.StatusBadRequest)
		return
	}

	userMessage, aiMessage, err := h.chatService.PostMessage(userID, conversationID, req.Text)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Error posting message for user %s, conversation %d: %v", userID, conversationID, err)
		http.Error(w, "Failed to post message", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(PostMessageResponse{UserMessage: userMessage, AIMessage: aiMessage})
}

type RenameConversationRequest struct {
	Title string `json:"title"`
}

func (h *APIHandler) RenameConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	conversationID, ok := conversationIDParam(w, r)
	if !ok {
		return
	}

	var req RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.chatService.RenameConversation(userID, conversationID, req.Title); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Error renaming conversation %d for user %s: %v", conversationID, userID, err)
		http.Error(w, "Failed to rename conversation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	conversationID, ok := conversationIDParam(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteConversation(userID, conversationID); err != nil {
		log.Printf("Error deleting conversation %d for user %s: %v", conversationID, userID, err)
		http.Error(w, "Failed to delete conversation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	if err := h.chatService.ClearAll(userID); err != nil {
		log.Printf("Error clearing conversations for user %s: %v", userID, err)
		http.Error(w, "Failed to clear conversations", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ExportConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	conversationID, ok := conversationIDParam(w, r)
	if !ok {
		return
	}

	export, err := h.chatService.ExportConversation(userID, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Error exporting conversation %d for user %s: %v", conversationID, userID, err)
		http.Error(w, "Failed to export conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(export))
}

func (h *APIHandler) ExportAllHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	export, err := h.chatService.ExportAll(userID)
	if err != nil {
		log.Printf("Error exporting conversations for user %s: %v", userID, err)
		http.Error(w, "Failed to export conversations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(export))
}

func conversationIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "conversationID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
