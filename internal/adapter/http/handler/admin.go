package handler

import (
	"context"
	"net/http"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
)

type AdminService interface {
	GetOverview(ctx context.Context) (*models.AdminOverview, error)
}

type Admin struct {
	service AdminService
	l       logger.Logger
}

func NewAdmin(service AdminService, l logger.Logger) *Admin {
	return &Admin{
		service: service,
		l:       l,
	}
}

// GetOverview godoc
// @Summary      System overview
// @Description  Active caregivers and booking counts by status and tier
// @Tags         Admin
// @Produce      json
// @Success      200 {object} models.AdminOverview
// @Router       /admin/overview [get]
func (h *Admin) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "admin_overview")

	overview, err := h.service.GetOverview(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to build overview", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"overview": overview}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
