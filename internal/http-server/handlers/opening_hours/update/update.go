package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
	"shop-schedule/pkg/validate"
)

type OpeningHoursUpdater interface {
	UpdateOpeningHours(ctx context.Context, weekday int, req *api.OpeningHoursRequest) (*api.OpeningHoursResponse, error)
}

type Request struct {
	api.OpeningHoursRequest
}

type Response struct {
	response.Response
	OpeningHours *api.OpeningHoursResponse `json:"opening_hours,omitempty"`
}

func New(log *slog.Logger, updater OpeningHoursUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.opening_hours.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
		if err != nil {
			log.Error("weekday is not a number", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{"weekday": "must be an integer"}))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validate.Struct(req.OpeningHoursRequest); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		hours, err := updater.UpdateOpeningHours(r.Context(), weekday, &req.OpeningHoursRequest)

		var fieldErr *response.FieldError
		if errors.As(err, &fieldErr) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{fieldErr.Field: fieldErr.Message}))
			return
		}

		if err != nil {
			log.Error("Failed to update opening hours", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to update opening hours"))
			return
		}

		log.Info("Opening hours updated", slog.Int("weekday", weekday))

		render.JSON(w, r, Response{
			Response:     response.OK(),
			OpeningHours: hours,
		})
	}
}
