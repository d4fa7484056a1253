package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
)

type OpeningHoursGetter interface {
	ListOpeningHours(ctx context.Context) ([]*api.OpeningHoursResponse, error)
}

type Response struct {
	response.Response
	OpeningHours []*api.OpeningHoursResponse `json:"opening_hours"`
}

func New(log *slog.Logger, getter OpeningHoursGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.opening_hours.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		hours, err := getter.ListOpeningHours(r.Context())
		if err != nil {
			log.Error("Failed to list opening hours", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to list opening hours"))
			return
		}

		log.Info("Opening hours retrieved", slog.Int("count", len(hours)))

		render.JSON(w, r, Response{
			Response:     response.OK(),
			OpeningHours: hours,
		})
	}
}
