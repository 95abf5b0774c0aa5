package handler

import (
	"net/http"
	"strings"

	_ "github.com/Astemirdum/library-lending/library/docs"
	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/auth"
	md "github.com/Astemirdum/library-lending/pkg/middleware"
	"github.com/Astemirdum/library-lending/pkg/validate"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	lendingSvc LendingService
	clock      clockwork.Clock
	log        *zap.Logger
}

func New(lendingSvc LendingService, clock clockwork.Clock, log *zap.Logger) *Handler {
	return &Handler{
		lendingSvc: lendingSvc,
		clock:      clock,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.AuthContext,
	)
	staff := api.Group("", md.RequireStaff)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.ListReservations)
	api.GET("/reservations/:reservationUid", h.GetReservation)
	staff.POST("/reservations/:reservationUid/approve", h.ApproveReservation)
	staff.POST("/reservations/:reservationUid/decline", h.DeclineReservation)
	staff.POST("/reservations/:reservationUid/convert", h.ConvertReservation)

	staff.POST("/loans", h.IssueLoan)
	api.GET("/loans", h.ListLoans)
	api.GET("/loans/:loanUid", h.GetLoan)
	api.GET("/loans/:loanUid/fee", h.GetLoanFee)
	staff.POST("/loans/:loanUid/extend", h.ExtendLoan)
	staff.POST("/loans/:loanUid/return", h.ReturnLoan)

	api.GET("/titles/:titleUid", h.GetTitle)
	staff.PUT("/titles/:titleUid", h.UpsertTitle)

	staff.POST("/maintenance/sweep", h.RunSweep)

	return e
}

// Health
// @Summary     Liveness probe
// @Tags        manage
// @Success     200 {string} string "OK"
// @Router      /manage/health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// CreateReservation
// @Summary     Reserve a title for the calling patron
// @Tags        reservations
// @Accept      json
// @Produce     json
// @Param       X-User-Name header string true "user name"
// @Param       X-User-Role header string true "user role"
// @Param       input body model.CreateReservationRequest true "reservation"
// @Success     201 {object} model.Reservation
// @Failure     400,404 {object} echo.HTTPError
// @Router      /api/v1/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.CreateReservationRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rsv, err := h.lendingSvc.RequestReservation(c.Request().Context(), actor, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rsv)
}

// ListReservations
// @Summary     List reservations; patrons only see their own
// @Tags        reservations
// @Produce     json
// @Param       status query string false "comma separated statuses"
// @Param       titleUid query string false "title uid"
// @Param       patron query string false "patron, staff only"
// @Success     200 {array} model.Reservation
// @Router      /api/v1/reservations [get]
func (h *Handler) ListReservations(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	filter := model.ReservationFilter{
		Patron:   c.QueryParam("patron"),
		TitleUid: c.QueryParam("titleUid"),
	}
	for _, st := range splitParam(c.QueryParam("status")) {
		filter.Statuses = append(filter.Statuses, model.ReservationStatus(st))
	}
	items, err := h.lendingSvc.ListReservations(c.Request().Context(), actor, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	rsv, err := h.lendingSvc.GetReservation(c.Request().Context(), actor, c.Param("reservationUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rsv)
}

// ApproveReservation
// @Summary     Approve a pending reservation and hold a copy
// @Tags        reservations
// @Produce     json
// @Param       reservationUid path string true "reservation uid"
// @Success     200 {object} model.Reservation
// @Failure     404,409 {object} echo.HTTPError
// @Router      /api/v1/reservations/{reservationUid}/approve [post]
func (h *Handler) ApproveReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	rsv, err := h.lendingSvc.ApproveReservation(c.Request().Context(), actor, c.Param("reservationUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rsv)
}

// DeclineReservation
// @Summary     Decline a pending or approved reservation
// @Tags        reservations
// @Accept      json
// @Produce     json
// @Param       reservationUid path string true "reservation uid"
// @Param       input body model.DeclineReservationRequest false "reason"
// @Success     200 {object} model.Reservation
// @Failure     404,409 {object} echo.HTTPError
// @Router      /api/v1/reservations/{reservationUid}/decline [post]
func (h *Handler) DeclineReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.DeclineReservationRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rsv, err := h.lendingSvc.DeclineReservation(c.Request().Context(), actor, c.Param("reservationUid"), req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rsv)
}

// ConvertReservation
// @Summary     Turn an approved reservation into a loan
// @Tags        reservations
// @Produce     json
// @Param       reservationUid path string true "reservation uid"
// @Success     201 {object} model.Loan
// @Failure     404,409 {object} echo.HTTPError
// @Router      /api/v1/reservations/{reservationUid}/convert [post]
func (h *Handler) ConvertReservation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	loan, err := h.lendingSvc.ConvertApprovedReservation(c.Request().Context(), actor, c.Param("reservationUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

// IssueLoan
// @Summary     Lend a copy over the counter
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       input body model.IssueLoanRequest true "loan"
// @Success     201 {object} model.Loan
// @Failure     400,404,409 {object} echo.HTTPError
// @Router      /api/v1/loans [post]
func (h *Handler) IssueLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.IssueLoanRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.lendingSvc.IssueDirectLoan(c.Request().Context(), actor, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) ListLoans(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	filter := model.LoanFilter{
		Patron:   c.QueryParam("patron"),
		TitleUid: c.QueryParam("titleUid"),
	}
	for _, st := range splitParam(c.QueryParam("status")) {
		filter.Statuses = append(filter.Statuses, model.LoanStatus(st))
	}
	items, err := h.lendingSvc.ListLoans(c.Request().Context(), actor, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	loan, err := h.lendingSvc.GetLoan(c.Request().Context(), actor, c.Param("loanUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) GetLoanFee(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	loanUid := c.Param("loanUid")
	fee, err := h.lendingSvc.AccruedFee(c.Request().Context(), actor, loanUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"loanUid": loanUid,
		"fee":     fee.StringFixed(2),
	})
}

// ExtendLoan
// @Summary     Push a loan's due date out
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       loanUid path string true "loan uid"
// @Param       input body model.ExtendLoanRequest false "extra days, 0 means policy default"
// @Success     200 {object} model.Loan
// @Failure     404,409 {object} echo.HTTPError
// @Router      /api/v1/loans/{loanUid}/extend [post]
func (h *Handler) ExtendLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.ExtendLoanRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.lendingSvc.ExtendLoan(c.Request().Context(), actor, c.Param("loanUid"), req.ExtraDays)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// ReturnLoan
// @Summary     Return a borrowed copy and charge the late fee
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       loanUid path string true "loan uid"
// @Param       input body model.ReturnLoanRequest false "return time, defaults to now"
// @Success     200 {object} model.Loan
// @Failure     404,409 {object} echo.HTTPError
// @Router      /api/v1/loans/{loanUid}/return [post]
func (h *Handler) ReturnLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.ReturnLoanRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.lendingSvc.ReturnLoan(c.Request().Context(), actor, c.Param("loanUid"), req.ReturnedAt)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) GetTitle(c echo.Context) error {
	title, err := h.lendingSvc.GetTitle(c.Request().Context(), c.Param("titleUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, title)
}

// UpsertTitle
// @Summary     Create a title or change its number of copies
// @Tags        titles
// @Accept      json
// @Produce     json
// @Param       titleUid path string true "title uid"
// @Param       input body model.UpsertTitleRequest true "title"
// @Success     200 {object} model.Title
// @Failure     400 {object} echo.HTTPError
// @Router      /api/v1/titles/{titleUid} [put]
func (h *Handler) UpsertTitle(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req model.UpsertTitleRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	title, err := h.lendingSvc.UpsertTitle(c.Request().Context(), actor, model.Title{
		TitleUid:    c.Param("titleUid"),
		Name:        req.Name,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, title)
}

// RunSweep
// @Summary     Run one maintenance sweep now
// @Tags        maintenance
// @Produce     json
// @Success     200 {object} model.SweepReport
// @Router      /api/v1/maintenance/sweep [post]
func (h *Handler) RunSweep(c echo.Context) error {
	report, err := h.lendingSvc.RunMaintenanceSweep(c.Request().Context(), h.clock.Now())
	if err != nil {
		h.log.Error("RunSweep", zap.Error(err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func actorFrom(c echo.Context) (model.Actor, error) {
	ctx := c.Request().Context()
	name, err := auth.GetUserName(ctx)
	if err != nil {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	role, err := auth.GetUserRole(ctx)
	if err != nil {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return model.Actor{Name: name, Role: model.Role(role)}, nil
}

func httpError(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return echo.NewHTTPError(e.HTTPStatus(), e.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	out := make([]string, 0, 4)
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
