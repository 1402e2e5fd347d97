package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// defaultChannels: everyone gets public and their own channel, admins also
// get crm.
func defaultChannels(rd *ctxutil.RequestData) []string {
	chans := []string{realtime.ChannelPublic, realtime.UserChannel(rd.UserID.String())}
	if rd.IsAdmin() {
		chans = append(chans, realtime.ChannelCRM)
	}
	return chans
}

// canJoin reports whether rd may listen on channel.
func canJoin(rd *ctxutil.RequestData, channel string) bool {
	switch {
	case channel == realtime.ChannelPublic:
		return true
	case rd.IsAdmin():
		return true
	case channel == realtime.UserChannel(rd.UserID.String()):
		return true
	default:
		return false
	}
}

// GET /api/realtime/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondErr(c, apierr.Unauthorized("Not authenticated"))
		return
	}
	client := h.Hub.NewClient(rd.UserID)
	for _, ch := range defaultChannels(rd) {
		h.Hub.AddChannel(client, ch)
	}
	h.Log.Info("SSEStream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())

	h.Hub.ServeHTTP(c.Writer, c.Request, client)
	h.Hub.CloseClient(client)
}

// GET /api/public/stream
func (h *RealtimeHandler) PublicStream(c *gin.Context) {
	client := h.Hub.NewClient(uuid.Nil)
	h.Hub.AddChannel(client, realtime.ChannelPublic)
	h.Hub.ServeHTTP(c.Writer, c.Request, client)
	h.Hub.CloseClient(client)
}

func errNoActiveStream() error {
	return apierr.Coded(http.StatusConflict, "no_active_stream", "no active SSE connection for this client", apierr.ErrConflict)
}

type channelRequest struct {
	ClientID string `json:"client_id"`
	Channel  string `json:"channel"`
}

// resolve returns the caller's connected client and the requested channel.
func (h *RealtimeHandler) resolve(c *gin.Context) (*realtime.Client, string, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, "", apierr.Unauthorized("Not authenticated")
	}
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
		return nil, "", apierr.Invalid("invalid channel")
	}
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		return nil, "", apierr.Invalid("invalid client_id")
	}
	client, ok := h.Hub.Client(clientID)
	if !ok || !client.OwnedBy(rd.UserID) {
		return nil, "", errNoActiveStream()
	}
	channel := strings.TrimSpace(req.Channel)
	if !canJoin(rd, channel) {
		return nil, "", apierr.Forbidden("Acesso negado")
	}
	return client, channel, nil
}

// POST /api/realtime/subscribe
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, channel, err := h.resolve(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	// The stream may have dropped since resolve looked the client up.
	if !h.Hub.AddChannel(client, channel) {
		response.RespondErr(c, errNoActiveStream())
		return
	}
	response.RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
}

// POST /api/realtime/unsubscribe
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, channel, err := h.resolve(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.Hub.RemoveChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}
