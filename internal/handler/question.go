package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/serializer"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/bertomartin/ashoka-survey-web/internal/storage"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// QuestionHandler is the JSON API used by the survey builder.
type QuestionHandler struct {
	questions *service.QuestionService
}

func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

type ImageUploadResponse struct {
	ImageURL string `json:"image_url"`
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeQuestionInput(w, r)
	if !ok {
		return
	}

	question, err := h.questions.Create(r.Context(), currentUser(r), *input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeQuestion(w, r, http.StatusOK, question)
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	input, ok := decodeQuestionInput(w, r)
	if !ok {
		return
	}

	question, err := h.questions.Update(r.Context(), currentUser(r), id, *input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeQuestion(w, r, http.StatusOK, question)
}

// Destroy answers 200 on success and 400 when the question is unknown.
func (h *QuestionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	if err := h.questions.Destroy(r.Context(), currentUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

// ImageUpload stores the multipart "image" file and returns its thumbnail URL.
func (h *QuestionHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: []string{"Image can't be blank"}})
		return
	}
	defer file.Close()

	url, err := h.questions.UploadImage(r.Context(), currentUser(r), id, header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ImageUploadResponse{ImageURL: url})
}

func (h *QuestionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: verr.Messages})
	case errors.Is(err, domain.ErrQuestionNotFound):
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: []string{"Question does not exist"}})
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(w, http.StatusForbidden, "Not authorized")
	default:
		slog.ErrorContext(r.Context(), "question request failed", "error", err, "requestID", chimw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeQuestionInput(w http.ResponseWriter, r *http.Request) (*service.QuestionInput, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	input := &service.QuestionInput{}
	if err := serializer.Decode(input, body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}
	return input, true
}

func writeQuestion(w http.ResponseWriter, r *http.Request, code int, q *model.Question) {
	var buf bytes.Buffer
	if err := serializer.Encode(q, &buf); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode question", "error", err, "requestID", chimw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	buf.WriteTo(w)
}
