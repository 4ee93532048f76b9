package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/admin"
	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/clock"
	"rollcall/internal/member"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
)

// TokenConfig carries what the handler needs to issue admin tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	TTL        time.Duration
}

// TallyReader exposes the worker-maintained daily check-in counters.
type TallyReader interface {
	DailyTally(ctx context.Context, ownerID, day string) (int64, error)
}

// Handler exposes the HTTP surface over the services.
type Handler struct {
	marking   *attendance.MarkingService
	reporting *attendance.ReportingService
	members   *member.Service
	admins    *admin.Service
	q         queue.Queue
	tally     TallyReader
	clk       clock.Clock
	tokens    TokenConfig
}

// New creates a handler. tally may be nil when no counter store is wired.
func New(
	marking *attendance.MarkingService,
	reporting *attendance.ReportingService,
	members *member.Service,
	admins *admin.Service,
	q queue.Queue,
	tally TallyReader,
	clk clock.Clock,
	tokens TokenConfig,
) *Handler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Handler{
		marking:   marking,
		reporting: reporting,
		members:   members,
		admins:    admins,
		q:         q,
		tally:     tally,
		clk:       clk,
		tokens:    tokens,
	}
}

func ok(c *gin.Context, status int, data any, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// serverError logs the storage fault and hides the detail from the caller.
func serverError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	fail(c, http.StatusInternalServerError, "server error")
}

// ---------- Attendance ----------

// MarkAttendance handles POST /api/attendance. The endpoint is open: the
// code itself is the credential.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveCheckin(metrics.OutcomeInvalidInput)
		fail(c, http.StatusBadRequest, attendance.ErrCodeRequired.Error())
		return
	}

	evt, err := h.marking.Mark(c.Request.Context(), req.Code)
	if err != nil {
		metrics.ObserveCheckin(markOutcome(err))
		switch {
		case errors.Is(err, attendance.ErrCodeRequired),
			errors.Is(err, attendance.ErrWeekend),
			errors.Is(err, attendance.ErrOutsideWindow),
			errors.Is(err, attendance.ErrUnknownCode),
			errors.Is(err, attendance.ErrAlreadyMarked):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			serverError(c, err)
		}
		return
	}

	metrics.ObserveCheckin(metrics.OutcomeOK)
	h.publishCheckin(c, evt)
	ok(c, http.StatusOK, nil, "Attendance marked successfully")
}

func markOutcome(err error) string {
	switch {
	case errors.Is(err, attendance.ErrCodeRequired):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, attendance.ErrWeekend):
		return metrics.OutcomeWeekend
	case errors.Is(err, attendance.ErrOutsideWindow):
		return metrics.OutcomeOutsideWindow
	case errors.Is(err, attendance.ErrUnknownCode):
		return metrics.OutcomeUnknownCode
	case errors.Is(err, attendance.ErrAlreadyMarked):
		return metrics.OutcomeAlreadyMarked
	default:
		return metrics.OutcomeStorageFault
	}
}

func (h *Handler) publishCheckin(c *gin.Context, evt attendance.Event) {
	if h.q == nil {
		return
	}
	body, err := json.Marshal(struct {
		EventID string `json:"event_id"`
	}{EventID: evt.ID})
	if err != nil {
		return
	}
	if err := h.q.Publish(c.Request.Context(), queue.Message{Type: "checkin", Body: body}); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

// MembersWithStatus handles GET /api/users?date=YYYY-MM-DD.
func (h *Handler) MembersWithStatus(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)

	var date time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	statuses, err := h.reporting.ListMembersWithStatus(c.Request.Context(), ownerID, date)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, statuses, "")
}

// AttendanceByMonth handles GET /api/attendance/month?year=&month=.
func (h *Handler) AttendanceByMonth(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)

	year, yerr := strconv.Atoi(c.Query("year"))
	month, merr := strconv.Atoi(c.Query("month"))
	if yerr != nil || merr != nil {
		fail(c, http.StatusBadRequest, attendance.ErrBadPeriod.Error())
		return
	}

	grouped, err := h.reporting.MonthlyReport(c.Request.Context(), ownerID, year, month)
	if err != nil {
		if errors.Is(err, attendance.ErrBadPeriod) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, grouped, "")
}

// DailyTally handles GET /api/attendance/tally?date=YYYY-MM-DD, serving the
// counter the worker keeps in Redis. Defaults to today.
func (h *Handler) DailyTally(c *gin.Context) {
	if h.tally == nil {
		fail(c, http.StatusServiceUnavailable, "tally store not configured")
		return
	}
	ownerID := c.GetString(auth.AdminKey)

	day := c.Query("date")
	if day == "" {
		day = h.clk.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		fail(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	count, err := h.tally.DailyTally(c.Request.Context(), ownerID, day)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"date": day, "count": count}, "")
}

// ---------- Members ----------

// CreateMember handles POST /api/admin/users.
func (h *Handler) CreateMember(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)

	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, member.ErrMissingFields.Error())
		return
	}

	m, err := h.members.Create(c.Request.Context(), ownerID, req.Name, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrMissingFields), errors.Is(err, member.ErrCodeTaken), errors.Is(err, member.ErrNameTaken):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			serverError(c, err)
		}
		return
	}
	ok(c, http.StatusCreated, m, "")
}

// ListMembers handles GET /api/admin/users.
func (h *Handler) ListMembers(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)
	members, err := h.members.List(c.Request.Context(), ownerID)
	if err != nil {
		serverError(c, err)
		return
	}
	if members == nil {
		members = []member.Member{}
	}
	ok(c, http.StatusOK, members, "")
}

// UpdateMember handles PUT /api/admin/users/:id.
func (h *Handler) UpdateMember(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)

	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.members.Update(c.Request.Context(), ownerID, c.Param("id"), req.Name, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrNotFound):
			fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, member.ErrCodeTaken), errors.Is(err, member.ErrNameTaken):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			serverError(c, err)
		}
		return
	}
	ok(c, http.StatusOK, m, "")
}

// DeleteMember handles DELETE /api/admin/users/:id. Deleting a member also
// removes their attendance history.
func (h *Handler) DeleteMember(c *gin.Context) {
	ownerID := c.GetString(auth.AdminKey)

	if err := h.members.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, nil, "User and associated attendance records deleted")
}

// ValidateCode handles POST /api/user/validate for the kiosk client.
func (h *Handler) ValidateCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		fail(c, http.StatusBadRequest, attendance.ErrCodeRequired.Error())
		return
	}

	m, err := h.members.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		serverError(c, err)
		return
	}
	if m == nil {
		fail(c, http.StatusBadRequest, attendance.ErrUnknownCode.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"name": m.Name}, "")
}

// ---------- Admin accounts ----------

// RegisterAdmin handles POST /api/admin/register.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		CompanyName string `json:"company_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, admin.ErrMissingFields.Error())
		return
	}

	a, err := h.admins.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.CompanyName)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrMissingFields), errors.Is(err, admin.ErrExists):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			serverError(c, err)
		}
		return
	}

	token, _, err := auth.Issue(a.ID, a.CompanyName, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"token": token, "company_name": a.CompanyName},
		"Company "+a.CompanyName+" registered successfully")
}

// LoginAdmin handles POST /api/admin/login.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, admin.ErrMissingFields.Error())
		return
	}

	a, err := h.admins.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrMissingFields):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, admin.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, err.Error())
		default:
			serverError(c, err)
		}
		return
	}

	token, _, err := auth.Issue(a.ID, a.CompanyName, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"token": token, "company_name": a.CompanyName}, "")
}
