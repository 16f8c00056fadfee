package conversations

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/rendering"
	"github.com/nfrund/neuralfeed/internal/view"
	"github.com/nfrund/neuralfeed/internal/view/pages"
)

// CreateConversationRequest is the body of POST /api/conversations.
type CreateConversationRequest struct {
	UserID string `json:"userId" form:"userId" validate:"required"`
}

// MessageRequest is the body of POST /api/messages.
type MessageRequest struct {
	Message        string `json:"message" form:"message"`
	ConversationID string `json:"conversationId" form:"conversationId" validate:"required"`
}

// Handler serves the conversation API and pages. Every route runs behind
// an auth middleware that puts the user in the context.
type Handler struct {
	svc      *Service
	renderer rendering.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service, renderer rendering.Renderer) *Handler {
	return &Handler{svc: svc, renderer: renderer}
}

func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return user, nil
}

// httpError maps service errors to HTTP errors.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
	case errors.Is(err, domain.ErrNotMember):
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this conversation")
	case errors.Is(err, domain.ErrEmptyMessage):
		return echo.NewHTTPError(http.StatusBadRequest, "Message is empty")
	case errors.Is(err, domain.ErrMissingFields), errors.Is(err, ErrSelfConversation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		middleware.FromContext(c.Request().Context()).Error("Conversation request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.svc.Users(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListConversations handles GET /api/conversations.
func (h *Handler) ListConversations(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.List(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateConversation handles POST /api/conversations.
func (h *Handler) CreateConversation(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	conv, err := h.svc.StartDirect(c.Request().Context(), user.ID, req.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// ListMessages handles GET /api/conversations/:id/messages.
func (h *Handler) ListMessages(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	msgs, err := h.svc.Messages(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// CreateMessage handles POST /api/messages.
func (h *Handler) CreateMessage(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "conversationId is required")
	}

	msg, err := h.svc.Send(c.Request().Context(), user.ID, req.ConversationID, req.Message)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Index renders the conversation list (GET /conversations).
func (h *Handler) Index(c echo.Context) error {
	return h.renderLayout(c, "")
}

// Show renders one conversation (GET /conversations/:id).
func (h *Handler) Show(c echo.Context) error {
	return h.renderLayout(c, c.Param("id"))
}

// StartPost handles the "people" buttons (POST /conversations).
func (h *Handler) StartPost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.StartDirect(c.Request().Context(), user.ID, c.FormValue("userId"))
	if err != nil {
		view.SetFlashError(c, "Could not start the conversation")
		return c.Redirect(http.StatusSeeOther, "/conversations")
	}
	return c.Redirect(http.StatusSeeOther, "/conversations/"+conv.ID)
}

// MessagePost handles the message form (POST /conversations/:id/messages).
// htmx requests get the rendered message back; plain posts are redirected.
func (h *Handler) MessagePost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	htmx := c.Request().Header.Get("HX-Request") == "true"

	msg, err := h.svc.Send(c.Request().Context(), user.ID, id, c.FormValue("message"))
	if err != nil {
		if htmx {
			return httpError(c, err)
		}
		view.SetFlashError(c, "Could not send the message")
		return c.Redirect(http.StatusSeeOther, "/conversations/"+id)
	}

	if !htmx {
		return c.Redirect(http.StatusSeeOther, "/conversations/"+id)
	}
	item := pages.MessageItem{ID: msg.ID, Sender: user.Name, Body: msg.Body, Mine: true}
	return h.renderer.RenderPage(c, http.StatusOK, pages.Message(item))
}

func (h *Handler) renderLayout(c echo.Context, activeID string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	list, err := h.svc.List(ctx, user.ID)
	if err != nil {
		return httpError(c, err)
	}
	users, err := h.svc.Users(ctx, user.ID)
	if err != nil {
		return httpError(c, err)
	}

	data := pages.ConversationsData{CurrentUser: user, Users: users}
	for _, s := range list {
		data.Conversations = append(data.Conversations, pages.ConversationItem{ID: s.ID, Title: s.Title})
	}

	if activeID != "" {
		active, err := h.svc.Get(ctx, user.ID, activeID)
		if err != nil {
			return httpError(c, err)
		}
		msgs, err := h.svc.Messages(ctx, user.ID, activeID)
		if err != nil {
			return httpError(c, err)
		}
		names := h.svc.SenderNames(ctx, msgs)
		data.Active = &pages.ConversationItem{ID: active.ID, Title: active.Title}
		for _, m := range msgs {
			data.Messages = append(data.Messages, pages.MessageItem{
				ID:     m.ID,
				Sender: names[m.SenderID],
				Body:   m.Body,
				Mine:   m.SenderID == user.ID,
			})
		}
	}

	page := pages.Page("Conversations", view.GetFlashData(c), pages.Conversations(data))
	return h.renderer.RenderPage(c, http.StatusOK, view.AdaptGomponentToTempl(page))
}
