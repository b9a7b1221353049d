package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// Administration is the admin surface of the engines.
type Administration interface {
	ListMachines(ctx context.Context) ([]model.Machine, error)
	SetMachineStatus(ctx context.Context, id uint8, status model.MachineStatus) (model.Machine, error)
	ToggleMachine(ctx context.Context, id uint8) (model.Machine, error)
	ActiveLaundry(ctx context.Context) ([]model.LaundryBooking, error)
	ActiveRestroom(ctx context.Context) ([]model.RestroomBooking, error)
	CancelBooking(ctx context.Context, r model.Resource, id uint64) error
	Stats(ctx context.Context, r model.Resource) (model.UsageStats, error)
	Settings(ctx context.Context) ([]model.Setting, error)
	GetSetting(ctx context.Context, name string) (model.Setting, error)
	SetSetting(ctx context.Context, name, value string) (model.Setting, error)
	ResetSettings(ctx context.Context) error
	ResetSchedule(ctx context.Context) error
}

// AdminHandler serves /v1/admin.
type AdminHandler struct {
	svc Administration
}

func NewAdminHandler(svc Administration) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type machineResponse struct {
	ID     uint8  `json:"id"`
	Status string `json:"status"`
}

func toMachineResponse(m model.Machine) machineResponse {
	return machineResponse{ID: m.ID, Status: string(m.Status)}
}

// Machines handles GET /v1/admin/machines.
func (h *AdminHandler) Machines(c echo.Context) error {
	ms, err := h.svc.ListMachines(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]machineResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMachineResponse(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"machines": out})
}

// SetMachine handles PUT /v1/admin/machines/:id.
func (h *AdminHandler) SetMachine(c echo.Context) error {
	id, err := machineParam(c.Param("id"))
	if err != nil {
		return err
	}
	var req machineStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.svc.SetMachineStatus(c.Request().Context(), id, model.MachineStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMachineResponse(m))
}

// ToggleMachine handles POST /v1/admin/machines/:id/toggle.
func (h *AdminHandler) ToggleMachine(c echo.Context) error {
	id, err := machineParam(c.Param("id"))
	if err != nil {
		return err
	}
	m, err := h.svc.ToggleMachine(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMachineResponse(m))
}

// Bookings handles GET /v1/admin/bookings?type=laundry|restroom. Without
// a type both lists are returned.
func (h *AdminHandler) Bookings(c echo.Context) error {
	ctx := c.Request().Context()
	typ := c.QueryParam("type")
	out := echo.Map{}
	if typ != "" {
		if _, err := resourceParam(typ); err != nil {
			return err
		}
	}
	if typ == "" || typ == string(model.ResourceLaundry) {
		bs, err := h.svc.ActiveLaundry(ctx)
		if err != nil {
			return err
		}
		out["laundry"] = laundryResponses(bs)
	}
	if typ == "" || typ == string(model.ResourceRestroom) {
		bs, err := h.svc.ActiveRestroom(ctx)
		if err != nil {
			return err
		}
		out["restroom"] = restroomResponses(bs)
	}
	return c.JSON(http.StatusOK, out)
}

// CancelBooking handles DELETE /v1/admin/bookings/:type/:id.
func (h *AdminHandler) CancelBooking(c echo.Context) error {
	r, err := resourceParam(c.Param("type"))
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.CancelBooking(c.Request().Context(), r, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /v1/admin/stats?type=; the type defaults to restroom.
func (h *AdminHandler) Stats(c echo.Context) error {
	typ := c.QueryParam("type")
	if typ == "" {
		typ = string(model.ResourceRestroom)
	}
	r, err := resourceParam(typ)
	if err != nil {
		return err
	}
	stats, err := h.svc.Stats(c.Request().Context(), r)
	if err != nil {
		return err
	}
	if stats.TopUsers == nil {
		stats.TopUsers = []model.UserUsage{}
	}
	return c.JSON(http.StatusOK, stats)
}

type settingResponse struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func toSettingResponse(s model.Setting) settingResponse {
	return settingResponse{Name: s.Name, Value: s.Value, Description: s.Description}
}

// Settings handles GET /v1/admin/settings.
func (h *AdminHandler) Settings(c echo.Context) error {
	ss, err := h.svc.Settings(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]settingResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, toSettingResponse(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": out})
}

// GetSetting handles GET /v1/admin/settings/:name.
func (h *AdminHandler) GetSetting(c echo.Context) error {
	s, err := h.svc.GetSetting(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSettingResponse(s))
}

// PutSetting handles PUT /v1/admin/settings/:name. An empty value clears
// optional break settings.
func (h *AdminHandler) PutSetting(c echo.Context) error {
	var req settingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.svc.SetSetting(c.Request().Context(), c.Param("name"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSettingResponse(s))
}

// ResetSettings handles POST /v1/admin/settings/reset. Scope "schedule"
// restores only opening hours and breaks; "all" (the default) restores
// every known setting.
func (h *AdminHandler) ResetSettings(c echo.Context) error {
	var req resetRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	ctx := c.Request().Context()
	var err error
	if req.Scope == "schedule" {
		err = h.svc.ResetSchedule(ctx)
	} else {
		err = h.svc.ResetSettings(ctx)
	}
	if err != nil {
		return err
	}
	return h.Settings(c)
}
