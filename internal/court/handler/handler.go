// Package handler exposes the court service over JSON/HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"courthouse/internal/court/models"
	"courthouse/internal/court/service"
	"courthouse/internal/registry"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/platform/httputil"
	request "courthouse/pkg/platform/middleware/request"
)

// Service defines the court operations the HTTP surface needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateEntity(ctx context.Context, cmd service.CreateEntityCommand) (*models.Citizen, error)
	LookupEntity(ctx context.Context, entityID id.EntityID) (registry.Entity, error)
	Authenticate(ctx context.Context, citizenID id.EntityID, secret string) (*models.Citizen, error)
	RemoveEntity(ctx context.Context, entityID id.EntityID) error
	CitizenLawsuits(ctx context.Context, citizenID id.EntityID) (*service.CitizenLawsuits, error)

	FileLawsuit(ctx context.Context, cmd service.FileLawsuitCommand) (*models.Lawsuit, error)
	PublishLawsuit(ctx context.Context, officialID id.EntityID, cmd service.FileLawsuitCommand, judgeID id.EntityID) (*models.Lawsuit, error)
	PendingLawsuits(ctx context.Context) []*models.Lawsuit
	AssignJudge(ctx context.Context, lawsuitID, judgeID id.EntityID) error
	RescheduleLawsuit(ctx context.Context, lawsuitID, newJudgeID id.EntityID) error
	RecordVerdict(ctx context.Context, lawsuitID id.EntityID, outcome models.LawsuitStatus) error
	AddCourtRecord(ctx context.Context, lawsuitID id.EntityID, note string) (*models.CourtRecord, error)
	AssignLawyer(ctx context.Context, lawsuitID id.EntityID, side models.Side, lawyerID id.EntityID) error
	AssignStateAttorney(ctx context.Context, lawsuitID id.EntityID, side models.Side) (id.EntityID, error)

	Judges(ctx context.Context) []*models.Citizen
	NextCaseForJudge(ctx context.Context, judgeID id.EntityID) (id.EntityID, error)
	JudgeDocket(ctx context.Context, judgeID id.EntityID) ([]*models.Lawsuit, error)
	AcceptingLawyers(ctx context.Context) []*models.Citizen

	StateAttorneys(ctx context.Context) []id.EntityID
	EnrollStateAttorney(ctx context.Context, lawyerID id.EntityID) error
	SubmitStateAttorneyApplication(ctx context.Context, lawyerID id.EntityID) error
	Applicants(ctx context.Context) []id.EntityID
	PeekApplicant(ctx context.Context) (id.EntityID, error)
	ApproveApplicant(ctx context.Context) (id.EntityID, error)
	RejectApplicant(ctx context.Context) (id.EntityID, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes open to citizens and lawyers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/people", h.HandleCreatePerson)
	r.Post("/people/{id}/authenticate", h.HandleAuthenticate)
	r.Get("/people/{id}/lawsuits", h.HandleCitizenLawsuits)
	r.Get("/entities/{id}", h.HandleLookupEntity)

	r.Post("/lawsuits", h.HandleFileLawsuit)
	r.Get("/lawsuits/pending", h.HandlePendingLawsuits)
	r.Post("/lawsuits/{id}/records", h.HandleAddCourtRecord)
	r.Post("/lawsuits/{id}/lawyer", h.HandleAssignLawyer)
	r.Post("/lawsuits/{id}/state-attorney", h.HandleAssignStateAttorney)

	r.Get("/judges", h.HandleJudges)
	r.Get("/judges/{id}/docket", h.HandleJudgeDocket)
	r.Post("/judges/{id}/next-case", h.HandleNextCase)
	r.Post("/lawsuits/{id}/verdict", h.HandleRecordVerdict)

	r.Get("/lawyers/accepting", h.HandleAcceptingLawyers)
	r.Get("/state-attorneys", h.HandleStateAttorneys)
	r.Post("/state-attorneys/applications", h.HandleSubmitApplication)
}

// RegisterClerk mounts court-clerk routes. The parent router must guard them.
func (h *Handler) RegisterClerk(r chi.Router) {
	r.Delete("/entities/{id}", h.HandleRemoveEntity)
	r.Post("/lawsuits/publish", h.HandlePublishLawsuit)
	r.Post("/lawsuits/{id}/judge", h.HandleAssignJudge)
	r.Post("/lawsuits/{id}/reschedule", h.HandleReschedule)
	r.Post("/state-attorneys", h.HandleEnrollStateAttorney)
	r.Get("/state-attorneys/applications", h.HandleApplicants)
	r.Get("/state-attorneys/applications/next", h.HandlePeekApplicant)
	r.Post("/state-attorneys/applications/approve", h.HandleApproveApplicant)
	r.Post("/state-attorneys/applications/reject", h.HandleRejectApplicant)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.EntityID, bool) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return entityID, true
}

// fail logs at warn for expected outcomes and at error otherwise.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", request.GetRequestID(ctx))
	if dErrors.IsExpected(err) {
		h.logger.WarnContext(ctx, msg, attrs...)
	} else {
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// HandleCreatePerson registers a citizen, lawyer, judge or official.
func (h *Handler) HandleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.CreateEntity(ctx, req.ToCommand())
	if err != nil {
		h.fail(ctx, w, "create person failed", err, "role", req.Role)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPersonResponse(c))
}

func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	citizenID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AuthenticateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Authenticate(ctx, citizenID, req.Secret)
	if err != nil {
		h.fail(ctx, w, "authenticate failed", err, "citizen_id", citizenID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPersonResponse(c))
}

func (h *Handler) HandleCitizenLawsuits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	citizenID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	res, err := h.service.CitizenLawsuits(ctx, citizenID)
	if err != nil {
		h.fail(ctx, w, "list citizen lawsuits failed", err, "citizen_id", citizenID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCitizenLawsuitsResponse(res))
}

func (h *Handler) HandleLookupEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	e, err := h.service.LookupEntity(ctx, entityID)
	if err != nil {
		h.fail(ctx, w, "lookup entity failed", err, "entity_id", entityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEntityResponse(e))
}

func (h *Handler) HandleRemoveEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveEntity(ctx, entityID); err != nil {
		h.fail(ctx, w, "remove entity failed", err, "entity_id", entityID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFileLawsuit files a lawsuit on hold between two registered citizens.
func (h *Handler) HandleFileLawsuit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FileLawsuitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.FileLawsuit(ctx, req.ToCommand())
	if err != nil {
		h.fail(ctx, w, "file lawsuit failed", err, "suing_id", req.SuingID, "sued_id", req.SuedID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLawsuitResponse(l))
}

func (h *Handler) HandlePublishLawsuit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PublishLawsuitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.PublishLawsuit(ctx, req.OfficialID, req.ToCommand(), req.JudgeID)
	if err != nil {
		h.fail(ctx, w, "publish lawsuit failed", err, "official_id", req.OfficialID, "judge_id", req.JudgeID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLawsuitResponse(l))
}

func (h *Handler) HandlePendingLawsuits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toLawsuitsResponse(h.service.PendingLawsuits(r.Context())))
}

func (h *Handler) HandleAssignJudge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[JudgeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AssignJudge(ctx, lawsuitID, req.JudgeID); err != nil {
		h.fail(ctx, w, "assign judge failed", err, "lawsuit_id", lawsuitID, "judge_id", req.JudgeID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[JudgeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.RescheduleLawsuit(ctx, lawsuitID, req.JudgeID); err != nil {
		h.fail(ctx, w, "reschedule failed", err, "lawsuit_id", lawsuitID, "judge_id", req.JudgeID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRecordVerdict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerdictRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.RecordVerdict(ctx, lawsuitID, models.LawsuitStatus(req.Outcome)); err != nil {
		h.fail(ctx, w, "record verdict failed", err, "lawsuit_id", lawsuitID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAddCourtRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CourtRecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	record, err := h.service.AddCourtRecord(ctx, lawsuitID, req.Note)
	if err != nil {
		h.fail(ctx, w, "add court record failed", err, "lawsuit_id", lawsuitID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CourtRecordResponse{At: record.At, Note: record.Note})
}

func (h *Handler) HandleAssignLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignLawyerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AssignLawyer(ctx, lawsuitID, models.Side(req.Side), req.LawyerID); err != nil {
		h.fail(ctx, w, "assign lawyer failed", err, "lawsuit_id", lawsuitID, "lawyer_id", req.LawyerID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LawyerIDResponse{LawyerID: req.LawyerID})
}

// HandleAssignStateAttorney requests a lawyer from the state for one side.
func (h *Handler) HandleAssignStateAttorney(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	lawsuitID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	lawyerID, err := h.service.AssignStateAttorney(ctx, lawsuitID, models.Side(req.Side))
	if err != nil {
		h.fail(ctx, w, "assign state attorney failed", err, "lawsuit_id", lawsuitID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LawyerIDResponse{LawyerID: lawyerID})
}

func (h *Handler) HandleJudges(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toPeopleResponse(h.service.Judges(r.Context())))
}

func (h *Handler) HandleJudgeDocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	judgeID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	docket, err := h.service.JudgeDocket(ctx, judgeID)
	if err != nil {
		h.fail(ctx, w, "judge docket failed", err, "judge_id", judgeID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLawsuitsResponse(docket))
}

// HandleNextCase takes the earliest filed lawsuit from the judge's lane.
func (h *Handler) HandleNextCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	judgeID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	lawsuitID, err := h.service.NextCaseForJudge(ctx, judgeID)
	if err != nil {
		h.fail(ctx, w, "next case failed", err, "judge_id", judgeID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NextCaseResponse{LawsuitID: lawsuitID})
}

func (h *Handler) HandleAcceptingLawyers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toPeopleResponse(h.service.AcceptingLawyers(r.Context())))
}

func (h *Handler) HandleStateAttorneys(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LawyerIDsResponse{LawyerIDs: h.service.StateAttorneys(r.Context())})
}

func (h *Handler) HandleEnrollStateAttorney(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[LawyerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.EnrollStateAttorney(ctx, req.LawyerID); err != nil {
		h.fail(ctx, w, "enroll state attorney failed", err, "lawyer_id", req.LawyerID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[LawyerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SubmitStateAttorneyApplication(ctx, req.LawyerID); err != nil {
		h.fail(ctx, w, "submit application failed", err, "lawyer_id", req.LawyerID)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) HandleApplicants(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LawyerIDsResponse{LawyerIDs: h.service.Applicants(r.Context())})
}

func (h *Handler) HandlePeekApplicant(w http.ResponseWriter, r *http.Request) {
	h.reviewApplicant(w, r, "peek applicant failed", h.service.PeekApplicant)
}

func (h *Handler) HandleApproveApplicant(w http.ResponseWriter, r *http.Request) {
	h.reviewApplicant(w, r, "approve applicant failed", h.service.ApproveApplicant)
}

func (h *Handler) HandleRejectApplicant(w http.ResponseWriter, r *http.Request) {
	h.reviewApplicant(w, r, "reject applicant failed", h.service.RejectApplicant)
}

func (h *Handler) reviewApplicant(w http.ResponseWriter, r *http.Request, msg string, op func(context.Context) (id.EntityID, error)) {
	ctx := r.Context()
	lawyerID, err := op(ctx)
	if err != nil {
		h.fail(ctx, w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LawyerIDResponse{LawyerID: lawyerID})
}
