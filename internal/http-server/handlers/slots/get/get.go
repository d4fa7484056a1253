package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
	"shop-schedule/pkg/validate"
)

type SlotGetter interface {
	GetSlots(ctx context.Context, q *api.SlotsQuery) ([]api.DaySlots, error)
}

type Response struct {
	response.Response
	Data []api.DaySlots `json:"data"`
}

func New(log *slog.Logger, getter SlotGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q, fields := parseQuery(r)
		if len(fields) > 0 {
			log.Error("invalid query parameters", slog.Any("fields", fields))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(fields))
			return
		}

		if err := validate.Struct(q); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		days, err := getter.GetSlots(r.Context(), q)

		var fieldErr *response.FieldError
		if errors.As(err, &fieldErr) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(map[string]string{fieldErr.Field: fieldErr.Message}))
			return
		}

		if err != nil {
			log.Error("Failed to get slots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(response.FAILED_REQUEST, "failed to get slots"))
			return
		}

		log.Info("Slots retrieved", slog.String("start", q.Start), slog.Int("days", len(days)))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Data:     days,
		})
	}
}

// parseQuery reads the integer parameters; anything that is not an integer
// is reported per field.
func parseQuery(r *http.Request) (*api.SlotsQuery, map[string]string) {
	values := r.URL.Query()
	fields := make(map[string]string)

	q := &api.SlotsQuery{Start: values.Get("start")}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"days", &q.Days},
		{"duration_min", &q.DurationMin},
		{"lead_min", &q.LeadMin},
	} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			fields[p.name] = "must be an integer"
			continue
		}
		*p.dst = &v
	}

	return q, fields
}
