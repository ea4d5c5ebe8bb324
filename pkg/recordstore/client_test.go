package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGetAllPaginates(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("xc-token"))
		offset := r.URL.Query().Get("offset")
		w.Header().Set("Content-Type", "application/json")
		if offset == "0" {
			fmt.Fprint(w, `{"list":[{"Id":1,"Name":"111"},{"Id":2,"Name":"222"}],"pageInfo":{"isLastPage":false,"totalRows":3}}`)
			return
		}
		fmt.Fprint(w, `{"list":[{"Id":3,"Name":"333"}],"pageInfo":{"isLastPage":true,"totalRows":3}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", testLogger())
	records, err := c.GetAll(context.Background(), "tbl1", Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "1", records[0].ID)
	require.Equal(t, "111", records[0].Fields.Str("Name"))
	require.Equal(t, []string{"secret", "secret"}, tokens)
}

func TestCreateReturnsAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body Fields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Ivanov Ivan", body.Str("FIO"))
		fmt.Fprint(w, `{"Id":42,"FIO":"Ivanov Ivan"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", testLogger())
	rec, err := c.Create(context.Background(), "tbl1", Fields{"FIO": "Ivanov Ivan"})
	require.NoError(t, err)
	require.Equal(t, "42", rec.ID)
}

func TestUpdateSendsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var body Fields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "42", body.Str("Id"))
		require.Equal(t, "employee", body.Str("Role"))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", testLogger())
	require.NoError(t, c.Update(context.Background(), "tbl1", "42", Fields{"Role": "employee"}))
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "table not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", testLogger())
	_, err := c.GetAll(context.Background(), "missing", Query{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return fmt.Errorf("still broken")
	})
	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, 10, 50*time.Millisecond, func() error {
		calls++
		return fmt.Errorf("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields{
		"S":    "v",
		"B1":   true,
		"B2":   float64(1),
		"L1":   []any{"a", "b"},
		"L2":   "solo",
		"Null": nil,
	}
	require.Equal(t, "v", f.Str("S"))
	require.Equal(t, "", f.Str("Missing"))
	require.True(t, f.Bool("B1"))
	require.True(t, f.Bool("B2"))
	require.False(t, f.Bool("Null"))
	require.Equal(t, []string{"a", "b"}, f.StrList("L1"))
	require.Equal(t, []string{"solo"}, f.StrList("L2"))
	require.Nil(t, f.StrList("Null"))
}
