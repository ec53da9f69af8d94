package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AbbyGrylls/impetus9-backend/internal/auth"
	"github.com/AbbyGrylls/impetus9-backend/internal/export"
	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

const downloadTimeFormat = "02 Jan 2006 15:04:05 MST"

// downloadRequest is the JSON body for POST /api/v1/downloads.
type downloadRequest struct {
	EventName       string `json:"eventName" binding:"required"`
	CoordsValue     string `json:"coordsValue"`     // selects the per-event passkey
	CoordinatorName string `json:"coordinatorName"` // recorded as claimant identity
	Passkey         string `json:"passkey"`
}

// downloadResponse is the success payload. VCF is null unless the caller was
// granted full access (admin, or the coordinator that won the first download).
type downloadResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	ExcelBase64 string  `json:"excelBase64"`
	VCF         *string `json:"vcf"`
}

// downloadHandler returns the registration-export download handler.
// POST /api/v1/downloads
//
// Flow: authorize → fetch registrations → ensure lock row → resolve claim
// (admin reads, coordinator attempts the one-time transition) → spreadsheet →
// contact cards for full-access callers → response.
//
// Returns:
//   - 200 {success:true, message, excelBase64, vcf} on success
//   - 200 {success:false, message} when the event has no registrations yet
//   - 401 {error} when the passkey matches neither the master nor the event secret
//   - 500 {error} on storage or generation failure
func (s *Server) downloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req downloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			jsonError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		role, err := s.Auth.Authorize(req.CoordsValue, req.Passkey)
		if err != nil {
			jsonError(c, http.StatusUnauthorized, "invalid passkey")
			return
		}

		regs, err := s.Store.RegistrationsByEvent(c.Request.Context(), req.EventName)
		if err != nil {
			log.Error().Err(err).Str("event_name", req.EventName).Msg("download: failed to fetch registrations")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if len(regs) == 0 {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": fmt.Sprintf("No registrations yet for %s.", req.EventName),
			})
			return
		}

		lock, err := s.Store.EnsureLock(c.Request.Context(), req.EventName)
		if err != nil {
			log.Error().Err(err).Str("event_name", req.EventName).Msg("download: failed to ensure lock")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}

		grantedFullAccess, message, err := s.resolveLock(c, role, &req, lock)
		if err != nil {
			log.Error().Err(err).Str("event_name", req.EventName).Msg("download: failed to resolve lock")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}

		workbook, err := s.exportWorkbook(req.EventName, regs)
		if err != nil {
			log.Error().Err(err).Str("event_name", req.EventName).Msg("download: failed to build spreadsheet")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}

		resp := downloadResponse{
			Success:     true,
			Message:     message,
			ExcelBase64: export.EncodeBase64(workbook),
		}
		if grantedFullAccess {
			vcf := export.BuildVCards(req.EventName, regs)
			resp.VCF = &vcf
		}

		log.Info().
			Str("event_name", req.EventName).
			Str("role", string(role)).
			Bool("full_access", grantedFullAccess).
			Int("registrations", len(regs)).
			Msg("download: export served")
		c.JSON(http.StatusOK, resp)
	}
}

// resolveLock applies the first-download rule. Admins never mutate the record
// and always report its current state; coordinators attempt the atomic
// claim-if-still-unclaimed transition and learn whether they were first.
func (s *Server) resolveLock(c *gin.Context, role auth.Role, req *downloadRequest, lock *model.DownloadLock) (bool, string, error) {
	if role == auth.RoleAdmin {
		if lock.VCardsDownloaded {
			return true, fmt.Sprintf("Contact cards were downloaded by %s at %s.",
				claimantName(lock), claimTime(lock)), nil
		}
		return true, "No coordinator has downloaded the contact cards yet.", nil
	}

	now := time.Now().UTC()
	won, err := s.Store.TryClaimLock(c.Request.Context(), req.EventName, req.CoordinatorName, now)
	if err != nil {
		return false, "", err
	}
	if won {
		s.Hub.BroadcastClaim(req.EventName, req.CoordinatorName, now)
		return true, "You are the first to download. Full access granted.", nil
	}

	// Lost or late — re-read for the claimant identity to report.
	claimed, err := s.Store.GetLock(c.Request.Context(), req.EventName)
	if err != nil {
		return false, "", err
	}
	return false, fmt.Sprintf("Contact cards already downloaded by %s at %s.",
		claimantName(claimed), claimTime(claimed)), nil
}

// exportWorkbook builds the xlsx for the event, reusing a cached copy when the
// export cache is enabled and a fresh registration has not invalidated it.
func (s *Server) exportWorkbook(eventName string, regs []model.Registration) ([]byte, error) {
	ttl := s.Options.ExportCacheTTL
	if ttl > 0 {
		if v, found := s.exports.Get(eventName); found {
			return v.([]byte), nil
		}
	}
	workbook, err := export.BuildWorkbook(regs)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		s.exports.Set(eventName, workbook, ttl)
	}
	return workbook, nil
}

func claimantName(lock *model.DownloadLock) string {
	if lock.FirstDownloaderName == nil {
		return "unknown"
	}
	return *lock.FirstDownloaderName
}

func claimTime(lock *model.DownloadLock) string {
	if lock.DownloadTime == nil {
		return "unknown time"
	}
	return lock.DownloadTime.UTC().Format(downloadTimeFormat)
}
