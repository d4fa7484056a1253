package get

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
)

type fakeGetter struct {
	from, to *time.Time
	listed   bool
	blocks   map[int64]*api.BlockResponse
	err      error
}

func (f *fakeGetter) GetBlock(ctx context.Context, id int64) (*api.BlockResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.blocks[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return b, nil
}

func (f *fakeGetter) ListBlocks(ctx context.Context, from, to *time.Time) ([]*api.BlockResponse, error) {
	f.listed = true
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}

	var out []*api.BlockResponse
	for _, b := range f.blocks {
		out = append(out, b)
	}
	return out, nil
}

func serve(t *testing.T, getter BlockGetter, target string) (int, Response) {
	t.Helper()

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), getter)
	router := chi.NewRouter()
	router.Get("/schedule/blocks", h)
	router.Get("/schedule/blocks/{id}", h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var b Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return rec.Code, b
}

func TestGetBlock(t *testing.T) {
	getter := &fakeGetter{blocks: map[int64]*api.BlockResponse{
		3: {ID: 3, Type: "closed", Kind: "slot_toggle", Toggleable: true},
	}}

	t.Run("found", func(t *testing.T) {
		code, b := serve(t, getter, "/schedule/blocks/3")

		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, b.Block)
		assert.True(t, b.Block.Toggleable)
	})

	t.Run("not found", func(t *testing.T) {
		code, b := serve(t, getter, "/schedule/blocks/4")

		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, string(response.NOT_FOUND), b.Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		code, b := serve(t, getter, "/schedule/blocks/abc")

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, b.Error.Fields, "id")
	})
}

func TestListBlocks(t *testing.T) {
	t.Run("window", func(t *testing.T) {
		getter := &fakeGetter{blocks: map[int64]*api.BlockResponse{1: {ID: 1}}}

		code, b := serve(t, getter, "/schedule/blocks?from=2025-06-02T00:00:00Z&to=2025-06-09T00:00:00Z")

		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, b.Blocks, 1)
		require.NotNil(t, getter.from)
		require.NotNil(t, getter.to)
		assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), getter.to.UTC())
	})

	t.Run("defaults", func(t *testing.T) {
		getter := &fakeGetter{}

		code, _ := serve(t, getter, "/schedule/blocks")

		assert.Equal(t, http.StatusOK, code)
		assert.True(t, getter.listed)
		assert.Nil(t, getter.from)
		assert.Nil(t, getter.to)
	})

	t.Run("bad bound", func(t *testing.T) {
		getter := &fakeGetter{}

		code, b := serve(t, getter, "/schedule/blocks?from=yesterday")

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, b.Error.Fields, "from")
		assert.False(t, getter.listed)
	})

	t.Run("failure", func(t *testing.T) {
		code, _ := serve(t, &fakeGetter{err: errors.New("db down")}, "/schedule/blocks")

		assert.Equal(t, http.StatusInternalServerError, code)
	})
}
