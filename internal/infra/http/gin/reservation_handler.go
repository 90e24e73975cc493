package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	reservationapp "bookstay/internal/app/services/reservation"
)

type ReservationHandler struct {
	Service *reservationapp.Service
}

func (h ReservationHandler) List(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	reservations, err := h.Service.ListForGuest(c.Request.Context(), logged)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h ReservationHandler) Create(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var draft reservationapp.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	created, err := h.Service.Create(c.Request.Context(), logged, c.Param("id"), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h ReservationHandler) ListForAccommodation(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	reservations, err := h.Service.ListForAccommodation(c.Request.Context(), logged, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Service.Confirm(c.Request.Context(), logged, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Service.Cancel(c.Request.Context(), logged, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type accommodationReviewRequest struct {
	Username        string `json:"username"`
	AccommodationID string `json:"accommodationId"`
}

// ReviewAccommodation answers whether the guest completed a stay in the
// accommodation. Called service-to-service by the reviews service, so no
// forwarded identity is expected.
func (h ReservationHandler) ReviewAccommodation(c *gin.Context) {
	var req accommodationReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	stayed, err := h.Service.StayedInAccommodation(c.Request.Context(), req.Username, req.AccommodationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stayed)
}

type hostReviewRequest struct {
	Username     string `json:"username"`
	HostUsername string `json:"hostUsername"`
}

func (h ReservationHandler) ReviewHost(c *gin.Context) {
	var req hostReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	stayed, err := h.Service.StayedInHost(c.Request.Context(), req.Username, req.HostUsername)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stayed)
}

// CheckUserDeletable gates account deletion and triggers the user-deleted
// fan-out when the caller has no upcoming confirmed reservations.
func (h ReservationHandler) CheckUserDeletable(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Service.CheckUserDeletable(c.Request.Context(), logged); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, true)
}

var _ ReservationHTTP = ReservationHandler{}
