package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "bookstay/internal/app/services/availability"
)

type AvailabilityHandler struct {
	Service *availabilityapp.Service
}

func (h AvailabilityHandler) Create(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var draft availabilityapp.IntervalDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	created, err := h.Service.Create(c.Request.Context(), logged, c.Param("accommodationId"), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h AvailabilityHandler) UpdateDate(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var update availabilityapp.DateUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := h.Service.UpdateDate(c.Request.Context(), logged, c.Param("id"), c.Param("accommodationId"), update); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AvailabilityHandler) UpdatePrice(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var update availabilityapp.PriceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	replacement, err := h.Service.UpdatePrice(c.Request.Context(), logged, c.Param("id"), c.Param("accommodationId"), update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, replacement)
}

func (h AvailabilityHandler) Slots(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	slots, err := h.Service.Slots(c.Request.Context(), logged, c.Param("accommodationId"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h AvailabilityHandler) Intervals(c *gin.Context) {
	logged, err := loggedUser(c)
	if err != nil {
		writeError(c, err)
		return
	}
	intervals, err := h.Service.IntervalsFor(c.Request.Context(), logged, c.Param("accommodationId"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, intervals)
}

// Search is public: no identity is required to browse accommodations.
func (h AvailabilityHandler) Search(c *gin.Context) {
	ids, err := h.Service.Search(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
