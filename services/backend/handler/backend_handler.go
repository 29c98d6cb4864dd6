package handler

import (
	"fmt"
	"net/http"
	"strconv"

	model "delivery-marketplace/internal/models"
	"delivery-marketplace/services/backend/helpers"
	"delivery-marketplace/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=backend_handler.go -destination=mock_backend_handler.go -package=handler

// MarketService is the mock backend as seen by one authenticated request
type MarketService interface {
	Login(username, password string) (model.LoginResult, error)
	Register(in model.RegisterInput) (model.User, error)
	GetProfile() (model.User, error)
	UpdateProfile(patch model.ProfilePatch) (model.User, error)
	GetJobs(ownerID int64) ([]model.Job, error)
	CreateJob(in model.JobInput) (model.Job, error)
	GetJob(id int64) (model.Job, error)
	GetBids(jobID int64) ([]model.Bid, error)
	CreateBid(in model.BidInput) (model.Bid, error)
	GetMessages(jobID int64) ([]model.Message, error)
	CreateMessage(in model.MessageInput) (model.Message, error)
}

type BackendHandler struct {
	session func(token string) MarketService
}

// NewBackendHandler creates the handler. session returns the service bound
// to the caller identified by the bearer token.
func NewBackendHandler(session func(token string) MarketService) *BackendHandler {
	return &BackendHandler{session: session}
}

func (h *BackendHandler) service(c *gin.Context) MarketService {
	return h.session(helpers.BearerToken(c))
}

// fail writes the error response for a service failure and logs it
func fail(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message, nil)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": failed", fields)
		return
	}
	utils.Warn(handlerName+": rejected", fields)
}

// idParam reads a positive id from the path. Anything else is an unknown route.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// jobQuery reads the optional ?job= filter; 0 means no filter
func jobQuery(c *gin.Context) (int64, bool) {
	raw := c.Query("job")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid job filter %q", raw),
			"invalid request payload", map[string]string{"job": "A valid integer is required."})
		return 0, false
	}
	return id, true
}

// LoginHandler handles POST /api/accounts/token/ and /api/token/
func (h *BackendHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	res, err := h.service(c).Login(req.Username, req.Password)
	if err != nil {
		fail(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.LoginResponse{Access: res.Access, Token: res.Token, User: res.User})
	helpers.LogSuccess("LoginHandler", "user signed in", map[string]any{"user_id": res.User.ID})
}

// RegisterHandler handles POST /api/accounts/register/
func (h *BackendHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service(c).Register(req.Input())
	if err != nil {
		fail(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user)
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{"user_id": user.ID, "role": string(user.Role)})
}

// ProfileHandler handles GET /api/accounts/profile/
func (h *BackendHandler) ProfileHandler(c *gin.Context) {
	user, err := h.service(c).GetProfile()
	if err != nil {
		fail(c, "ProfileHandler", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, user)
}

// UpdateProfileHandler handles PUT and PATCH /api/accounts/profile/
func (h *BackendHandler) UpdateProfileHandler(c *gin.Context) {
	var patch model.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		helpers.HandleBindError(c, "UpdateProfileHandler", err)
		return
	}

	user, err := h.service(c).UpdateProfile(patch)
	if err != nil {
		fail(c, "UpdateProfileHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, user)
	helpers.LogSuccess("UpdateProfileHandler", "profile updated", map[string]any{"user_id": user.ID})
}

// ListJobsHandler handles GET /api/jobs/
func (h *BackendHandler) ListJobsHandler(c *gin.Context) {
	jobs, err := h.service(c).GetJobs(0)
	if err != nil {
		fail(c, "ListJobsHandler", err, nil)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	utils.JSONResponse(c, http.StatusOK, jobs)
}

// CreateJobHandler handles POST /api/jobs/
func (h *BackendHandler) CreateJobHandler(c *gin.Context) {
	var req helpers.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateJobHandler", err)
		return
	}

	job, err := h.service(c).CreateJob(model.JobInput{
		GoodsName:      req.GoodsName,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		DeliveryTime:   req.DeliveryTime,
	})
	if err != nil {
		fail(c, "CreateJobHandler", err, map[string]any{"goods_name": req.GoodsName})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, job)
	helpers.LogSuccess("CreateJobHandler", "job posted", map[string]any{"job_id": job.ID, "sender": job.Sender})
}

// GetJobHandler handles GET /api/jobs/:id/
func (h *BackendHandler) GetJobHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	job, err := h.service(c).GetJob(id)
	if err != nil {
		fail(c, "GetJobHandler", err, map[string]any{"job_id": id})
		return
	}
	utils.JSONResponse(c, http.StatusOK, job)
}

// ListBidsHandler handles GET /api/bids/?job=
func (h *BackendHandler) ListBidsHandler(c *gin.Context) {
	jobID, ok := jobQuery(c)
	if !ok {
		return
	}

	bids, err := h.service(c).GetBids(jobID)
	if err != nil {
		fail(c, "ListBidsHandler", err, map[string]any{"job_id": jobID})
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	utils.JSONResponse(c, http.StatusOK, bids)
}

// CreateBidHandler handles POST /api/bids/
func (h *BackendHandler) CreateBidHandler(c *gin.Context) {
	var req helpers.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateBidHandler", err)
		return
	}

	bid, err := h.service(c).CreateBid(model.BidInput{Job: req.Job, Amount: req.Amount, Message: req.Message})
	if err != nil {
		fail(c, "CreateBidHandler", err, map[string]any{"job_id": req.Job})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, bid)
	helpers.LogSuccess("CreateBidHandler", "bid placed", map[string]any{
		"bid_id": bid.ID,
		"job_id": bid.Job,
		"amount": bid.Amount,
	})
}

// ListMessagesHandler handles GET /api/messages/?job=
func (h *BackendHandler) ListMessagesHandler(c *gin.Context) {
	jobID, ok := jobQuery(c)
	if !ok {
		return
	}

	msgs, err := h.service(c).GetMessages(jobID)
	if err != nil {
		fail(c, "ListMessagesHandler", err, map[string]any{"job_id": jobID})
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	utils.JSONResponse(c, http.StatusOK, msgs)
}

// CreateMessageHandler handles POST /api/messages/
func (h *BackendHandler) CreateMessageHandler(c *gin.Context) {
	var req helpers.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateMessageHandler", err)
		return
	}

	msg, err := h.service(c).CreateMessage(model.MessageInput{Job: req.Job, Text: req.Text})
	if err != nil {
		fail(c, "CreateMessageHandler", err, map[string]any{"job_id": req.Job})
		return
	}
	utils.JSONResponse(c, http.StatusCreated, msg)
}

// HealthHandler handles GET /api/healthz
func (h *BackendHandler) HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, helpers.HealthResponse{Status: "ok"})
}
