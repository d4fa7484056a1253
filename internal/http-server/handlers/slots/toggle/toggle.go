package toggle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
	"shop-schedule/pkg/validate"
)

type SlotToggler interface {
	ToggleSlot(ctx context.Context, req *api.ToggleRequest) error
}

type Request struct {
	api.ToggleRequest
}

func New(log *slog.Logger, toggler SlotToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.toggle.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.BAD_REQUEST, "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validate.Struct(req.ToggleRequest); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		err := toggler.ToggleSlot(r.Context(), &req.ToggleRequest)

		var fieldErr *response.FieldError
		if errors.As(err, &fieldErr) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{fieldErr.Field: fieldErr.Message}))
			return
		}

		if err != nil {
			log.Error("Failed to toggle slot", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to toggle slot"))
			return
		}

		log.Info("Slot toggled", slog.String("start", req.Start), slog.Bool("make_available", *req.MakeAvailable))

		render.JSON(w, r, response.OK())
	}
}
