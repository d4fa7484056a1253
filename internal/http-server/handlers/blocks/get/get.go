package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
)

type BlockGetter interface {
	GetBlock(ctx context.Context, id int64) (*api.BlockResponse, error)
	ListBlocks(ctx context.Context, from, to *time.Time) ([]*api.BlockResponse, error)
}

type Response struct {
	response.Response
	Blocks []*api.BlockResponse `json:"blocks,omitempty"`
	Block  *api.BlockResponse   `json:"block,omitempty"`
}

func New(log *slog.Logger, getter BlockGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blocks.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if idStr := chi.URLParam(r, "id"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				log.Error("id is not a number", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrors(map[string]string{"id": "must be an integer"}))
				return
			}

			block, err := getter.GetBlock(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(response.NOT_FOUND, "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get block", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get block"))
				return
			}

			render.JSON(w, r, Response{Response: response.OK(), Block: block})
			return
		}

		fields := make(map[string]string)
		from := parseTime(r, "from", fields)
		to := parseTime(r, "to", fields)

		if len(fields) > 0 {
			log.Error("invalid query parameters", slog.Any("fields", fields))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(fields))
			return
		}

		blocks, err := getter.ListBlocks(r.Context(), from, to)

		var fieldErr *response.FieldError
		if errors.As(err, &fieldErr) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{fieldErr.Field: fieldErr.Message}))
			return
		}

		if err != nil {
			log.Error("Failed to list blocks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list blocks"))
			return
		}

		log.Info("Blocks retrieved", slog.Int("count", len(blocks)))

		if blocks == nil {
			blocks = []*api.BlockResponse{}
		}

		render.JSON(w, r, Response{Response: response.OK(), Blocks: blocks})
	}
}

func parseTime(r *http.Request, name string, fields map[string]string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		fields[name] = "must be an RFC3339 datetime"
		return nil
	}

	return &t
}
