package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

// memberPayload is one team member in the registration request.
type memberPayload struct {
	Name  string `json:"name"`
	Roll  string `json:"roll"`
	Phone string `json:"phone"`
}

// createRegistrationRequest is the JSON body for POST /api/v1/registrations.
type createRegistrationRequest struct {
	EventName       string          `json:"eventName" binding:"required"`
	TeamName        string          `json:"teamName" binding:"required"`
	CapName         string          `json:"capName" binding:"required"`
	CapPhone        string          `json:"capPhone" binding:"required"`
	CapRoll         string          `json:"capRoll"`
	ParticipantType string          `json:"participantType" binding:"required"`
	Members         []memberPayload `json:"members"`
}

// createRegistrationHandler returns a gin.HandlerFunc that records a team
// registration for an event.
// POST /api/v1/registrations
func (s *Server) createRegistrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			jsonError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		participantType, err := model.ValidateParticipantType(req.ParticipantType)
		if err != nil {
			jsonError(c, http.StatusBadRequest, err.Error())
			return
		}
		if participantType == model.ParticipantTypeInternal && strings.TrimSpace(req.CapRoll) == "" {
			jsonError(c, http.StatusBadRequest, "capRoll is required for INTERNAL registrations")
			return
		}

		reg := model.Registration{
			ID:              model.NewRegistrationID(),
			EventName:       req.EventName,
			TeamName:        req.TeamName,
			CapName:         req.CapName,
			CapPhone:        req.CapPhone,
			CapRoll:         req.CapRoll,
			ParticipantType: participantType,
			CreatedAt:       time.Now().UTC(),
		}
		for _, m := range req.Members {
			reg.Members = append(reg.Members, model.TeamMember(m))
		}

		if err := s.Store.CreateRegistration(c.Request.Context(), &reg); err != nil {
			log.Error().Err(err).Str("event_name", req.EventName).Msg("registration: failed to create")
			jsonError(c, http.StatusInternalServerError, "failed to create registration")
			return
		}

		// A new registration changes the export layout; drop any cached sheet.
		s.exports.Delete(reg.EventName)

		log.Info().
			Str("registration_id", reg.ID).
			Str("event_name", reg.EventName).
			Str("team_name", reg.TeamName).
			Msg("registration: created")
		c.JSON(http.StatusCreated, reg)
	}
}

// listRegistrationsHandler returns the registrations for an event, newest
// first. The caller authenticates with the X-Passkey header (master passkey or
// the event's coordinator passkey).
// GET /api/v1/events/:event/registrations
func (s *Server) listRegistrationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventName := c.Param("event")

		if _, err := s.Auth.Authorize(eventName, c.GetHeader("X-Passkey")); err != nil {
			jsonError(c, http.StatusUnauthorized, "invalid passkey")
			return
		}

		regs, err := s.Store.RegistrationsByEvent(c.Request.Context(), eventName)
		if err != nil {
			log.Error().Err(err).Str("event_name", eventName).Msg("registration: failed to list")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"eventName":     eventName,
			"count":         len(regs),
			"registrations": regs,
		})
	}
}
