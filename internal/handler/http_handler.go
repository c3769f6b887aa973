package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/middleware"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/internal/service"
	"github.com/wizzchat/wizzchat/pkg/jwt"
	"github.com/wizzchat/wizzchat/pkg/log"
	"github.com/wizzchat/wizzchat/pkg/response"
)

// Handler handles REST requests.
type Handler struct {
	auth   service.AuthService
	chat   service.ChatService
	tokens *jwt.Manager
}

// NewHandler creates the REST handler.
func NewHandler(auth service.AuthService, chat service.ChatService, tokens *jwt.Manager) *Handler {
	return &Handler{
		auth:   auth,
		chat:   chat,
		tokens: tokens,
	}
}

// RegisterRoutes registers all REST routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", middleware.RequireAuth(h.tokens), h.Logout)
			auth.GET("/profile", middleware.RequireAuth(h.tokens), h.Profile)
			auth.PATCH("/profile", middleware.RequireAuth(h.tokens), h.UpdateProfile)
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth(h.tokens))
		{
			users.GET("", h.ListUsers)
		}

		chat := api.Group("/chat")
		chat.Use(middleware.RequireAuth(h.tokens))
		{
			chat.GET("", h.ListConversations)
			chat.POST("", h.CreateConversation)
			chat.GET("/:conversationId", h.GetConversation)
			chat.POST("/:conversationId/messages", h.SendMessage)
			chat.POST("/:conversationId/messages/:messageId/reactions", h.AddReaction)
			chat.DELETE("/:conversationId/messages/:messageId/reactions", h.RemoveReaction)
			chat.POST("/:conversationId/wizz", h.SendWizz)
		}
	}
}

// Register handles user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			response.Conflict(c, "email already exists")
			return
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			response.Conflict(c, "username already exists")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// Logout handles user logout.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if err := h.auth.Logout(ctx, userID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("logout failed")
		response.InternalError(c, "failed to logout")
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// Profile returns the authenticated user.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	user, err := h.auth.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get profile failed")
		response.InternalError(c, "failed to get profile")
		return
	}

	response.Success(c, user)
}

// UpdateProfile updates the authenticated user's username or message color.
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid profile update request")
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	user, err := h.auth.UpdateProfile(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			response.Conflict(c, "username already exists")
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("profile update failed")
		response.InternalError(c, "failed to update profile")
		return
	}

	response.Success(c, user)
}

// ListUsers returns all users, for starting new conversations.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	users, err := h.auth.ListUsers(ctx)
	if err != nil {
		l.Error().Err(err).Msg("list users failed")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, users)
}

// ListConversations returns the authenticated user's conversations.
func (h *Handler) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conversations, err := h.chat.ListConversations(ctx, middleware.GetUserID(c))
	if err != nil {
		l.Error().Err(err).Msg("list conversations failed")
		response.InternalError(c, "failed to list conversations")
		return
	}

	response.Success(c, conversations)
}

// CreateConversation starts a conversation with another user.
func (h *Handler) CreateConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create conversation request")
		response.BadRequest(c, err.Error())
		return
	}

	conversationID, err := h.chat.CreateConversation(ctx, middleware.GetUserID(c), req.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "recipient not found")
			return
		}
		l.Error().Err(err).Msg("create conversation failed")
		response.InternalError(c, "failed to create conversation")
		return
	}

	response.Created(c, domain.CreateConversationResponse{ConversationID: conversationID})
}

// GetConversation returns a conversation with its full message history.
func (h *Handler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conversationID := c.Param("conversationId")
	conversation, err := h.chat.GetConversation(ctx, middleware.GetUserID(c), conversationID)
	if err != nil {
		if h.respondChatError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("get conversation failed")
		response.InternalError(c, "failed to get conversation")
		return
	}

	response.Success(c, conversation)
}

// SendMessage posts a message into a conversation.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	conversationID := c.Param("conversationId")
	if err := h.chat.SendMessage(ctx, middleware.GetUserID(c), conversationID, req.Content); err != nil {
		if h.respondChatError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("send message failed")
		response.InternalError(c, "failed to send message")
		return
	}

	response.Success(c, gin.H{"message": "message sent"})
}

// AddReaction adds an emoji reaction to a message.
func (h *Handler) AddReaction(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid reaction request")
		response.BadRequest(c, err.Error())
		return
	}

	messageID := c.Param("messageId")
	if err := h.chat.AddReaction(ctx, middleware.GetUserID(c), messageID, req.Emoji); err != nil {
		if errors.Is(err, repository.ErrReactionExists) {
			response.Conflict(c, "reaction already added")
			return
		}
		if h.respondChatError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("add reaction failed")
		response.InternalError(c, "failed to add reaction")
		return
	}

	response.Success(c, gin.H{"message": "reaction added"})
}

// RemoveReaction removes an emoji reaction from a message.
func (h *Handler) RemoveReaction(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid reaction request")
		response.BadRequest(c, err.Error())
		return
	}

	messageID := c.Param("messageId")
	if err := h.chat.RemoveReaction(ctx, middleware.GetUserID(c), messageID, req.Emoji); err != nil {
		if errors.Is(err, repository.ErrReactionNotFound) {
			response.NotFound(c, "reaction not found")
			return
		}
		if h.respondChatError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("remove reaction failed")
		response.InternalError(c, "failed to remove reaction")
		return
	}

	response.Success(c, gin.H{"message": "reaction removed"})
}

// SendWizz pushes an attention ping into a conversation.
func (h *Handler) SendWizz(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conversationID := c.Param("conversationId")
	if err := h.chat.SendWizz(ctx, middleware.GetUserID(c), conversationID); err != nil {
		if h.respondChatError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("send wizz failed")
		response.InternalError(c, "failed to send wizz")
		return
	}

	response.Success(c, gin.H{"message": "wizz sent"})
}

// respondChatError maps shared chat error cases; returns true when handled.
func (h *Handler) respondChatError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, repository.ErrConversationNotFound):
		response.NotFound(c, "conversation not found")
	case errors.Is(err, repository.ErrMessageNotFound):
		response.NotFound(c, "message not found")
	case errors.Is(err, service.ErrNotParticipant):
		response.Forbidden(c, "not a participant of this conversation")
	default:
		return false
	}
	return true
}
