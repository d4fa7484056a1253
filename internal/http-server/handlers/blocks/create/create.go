package create

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

type BlockCreator interface {
	CreateBlock(ctx context.Context, req *api.BlockRequest) (*api.BlockResponse, error)
}

type Request struct {
	api.BlockRequest
}

type Response struct {
	response.Response
	Block *api.BlockResponse `json:"block,omitempty"`
}

func New(log *slog.Logger, creator BlockCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blocks.create.New"

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

		if err := validate.Struct(req.BlockRequest); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		block, err := creator.CreateBlock(r.Context(), &req.BlockRequest)

		var fieldErr *response.FieldError
		if errors.As(err, &fieldErr) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{fieldErr.Field: fieldErr.Message}))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("block conflicts with an existing one", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(response.CONFLICT, "block already exists"))
			return
		}

		if err != nil {
			log.Error("Failed to create block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to create block"))
			return
		}

		log.Info("Block created", slog.Int64("id", block.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			Block:    block,
		})
	}
}
