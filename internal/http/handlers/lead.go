package handlers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type LeadHandler struct {
	leadService services.LeadService
}

func NewLeadHandler(leadService services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// POST /api/leads (public)
func (lh *LeadHandler) Create(c *gin.Context) {
	var req services.CreateLeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	lead, err := lh.leadService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, lead)
}

// GET /api/leads?skip=&limit=&status=
func (lh *LeadHandler) List(c *gin.Context) {
	skip, err := intQuery(c, "skip", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	leads, err := lh.leadService.List(c.Request.Context(), services.ListLeadsInput{
		Skip:   skip,
		Limit:  limit,
		Status: c.Query("status"),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, leads)
}

// GET /api/leads/board
func (lh *LeadHandler) Board(c *gin.Context) {
	board, err := lh.leadService.Board(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, board)
}

// PATCH /api/leads/:id
func (lh *LeadHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do lead")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	in, err := parseLeadUpdate(raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	lead, err := lh.leadService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lead)
}

// parseLeadUpdate tells an absent usuario_id apart from an explicit null,
// which unassigns the lead.
func parseLeadUpdate(raw []byte) (services.UpdateLeadInput, error) {
	var in services.UpdateLeadInput
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return in, apierr.Invalid("Requisição inválida")
	}
	if v, ok := body["status"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return in, apierr.Invalid("Status inválido")
		}
		in.Status = &s
	}
	if v, ok := body["anotacoes"]; ok {
		var s string
		if !isNull(v) {
			if err := json.Unmarshal(v, &s); err != nil {
				return in, apierr.Invalid("Anotações inválidas")
			}
		}
		in.Notes = &s
	}
	if v, ok := body["usuario_id"]; ok {
		if isNull(v) {
			in.ClearAssignment = true
			return in, nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return in, apierr.Invalid("ID de usuário inválido")
		}
		if strings.TrimSpace(s) == "" {
			in.ClearAssignment = true
			return in, nil
		}
		uid, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return in, apierr.Invalid("ID de usuário inválido")
		}
		in.AssignedUserID = &uid
	}
	return in, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// DELETE /api/leads/:id
func (lh *LeadHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do lead")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := lh.leadService.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/leads/:id/whatsapp
func (lh *LeadHandler) WhatsAppLink(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do lead")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	link, err := lh.leadService.WhatsAppLink(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": link})
}
