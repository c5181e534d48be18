package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiowebux/inplace/internal/loop"
	"github.com/studiowebux/inplace/internal/types"
)

const (
	defaultWait = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
)

func userName(value string) *types.UpdateRequest {
	return &types.UpdateRequest{
		Method:        "patch",
		ObjectName:    "user",
		AttributeName: "name",
		Value:         value,
		CSRFParam:     "authenticity_token",
		CSRFToken:     "a+b/c=",
	}
}

func TestEncodeBody(t *testing.T) {
	body := EncodeBody(userName("Tom & Jerry"))
	require.Equal(t, "_method=patch&user[name]=Tom%20%26%20Jerry&authenticity_token=a%2Bb%2Fc%3D", body)

	values, err := DecodeBody(body)
	require.NoError(t, err)
	require.Equal(t, "patch", values.Get("_method"))
	require.Equal(t, "Tom & Jerry", values.Get("user[name]"))
	require.Equal(t, "a+b/c=", values.Get("authenticity_token"))

	req := userName("x")
	req.CSRFToken = ""
	require.Equal(t, "_method=patch&user[name]=x", EncodeBody(req))

	req = userName("1+1 = 2")
	req.CSRFToken = ""
	req.AttributeName = "a&b"
	body = EncodeBody(req)
	require.Equal(t, "_method=patch&user[a%26b]=1%2B1%20%3D%202", body)
	values, err = DecodeBody(body)
	require.NoError(t, err)
	require.Equal(t, "1+1 = 2", values.Get("user[a&b]"))
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse("  \n")
	require.NoError(t, err)
	require.Nil(t, resp.DisplayAs)

	resp, err = DecodeResponse(`{"display_as":"Bob Smith","id":4}`)
	require.NoError(t, err)
	require.NotNil(t, resp.DisplayAs)
	require.Equal(t, "Bob Smith", *resp.DisplayAs)

	resp, err = DecodeResponse(`{"name":"Bob"}`)
	require.NoError(t, err)
	require.Nil(t, resp.DisplayAs)

	resp, err = DecodeResponse(`{"display_as":null}`)
	require.NoError(t, err)
	require.Nil(t, resp.DisplayAs)

	_, err = DecodeResponse(`<html>oops</html>`)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

type recordingJournal struct {
	mu      sync.Mutex
	results []*types.UpdateResult
}

func (j *recordingJournal) Record(_ *types.UpdateRequest, res *types.UpdateResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	return nil
}

func TestClient_Send(t *testing.T) {
	var got *http.Request
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"display_as":"Lucia"}`)
	}))
	defer srv.Close()

	journal := &recordingJournal{}
	client := NewClient(WithJournal(journal))

	req := userName("Lucia")
	req.URL = srv.URL + "/users/1"
	res, err := client.Send(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, http.MethodPatch, got.Method)
	require.Equal(t, "/users/1", got.URL.Path)
	require.Equal(t, "application/json", got.Header.Get("Accept"))
	require.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", got.Header.Get("Content-Type"))
	require.Equal(t, "XMLHttpRequest", got.Header.Get("X-Requested-With"))
	require.NotEmpty(t, req.ID)
	require.Equal(t, req.ID, got.Header.Get("X-Request-Id"))
	require.Equal(t, EncodeBody(req), gotBody)

	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, `{"display_as":"Lucia"}`, res.Body)
	require.Equal(t, req.ID, res.RequestID)
	require.Len(t, journal.results, 1)
}

func TestClient_EmulatedMethod(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	req := userName("x")
	req.URL = srv.URL
	_, err := NewClient(WithEmulatedMethod(true)).Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"errors":["name is too short"]}`)
	}))
	defer srv.Close()

	journal := &recordingJournal{}
	req := userName("x")
	req.URL = srv.URL
	res, err := NewClient(WithJournal(journal)).Send(context.Background(), req)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnprocessableEntity, statusErr.Code)
	require.Contains(t, statusErr.Body, "too short")
	require.Equal(t, http.StatusUnprocessableEntity, res.Status)
	require.NotEmpty(t, res.Error)
	require.Len(t, journal.results, 1)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req := userName("x")
	req.URL = url
	res, err := NewClient().Send(context.Background(), req)
	require.Error(t, err)

	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))
	require.Zero(t, res.Status)
}

func TestAsync_PostsCompletionOnScheduler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"display_as":"ok"}`)
	}))
	defer srv.Close()

	sched := loop.NewManual()
	async := NewAsync(context.Background(), NewClient(), sched)

	req := userName("x")
	req.URL = srv.URL

	done := make(chan struct{})
	var body string
	var gotErr error
	async.Update(req, func(b string, err error) {
		body, gotErr = b, err
		close(done)
	})

	// Completion only runs when the scheduler drains its queue.
	require.Eventually(t, func() bool { return sched.PendingTasks() == 1 }, defaultWait, pollEvery)
	sched.RunPending()
	<-done
	require.NoError(t, gotErr)
	require.Equal(t, `{"display_as":"ok"}`, body)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "250ms", FormatDuration(250))
	require.Equal(t, "1.50s", FormatDuration(1500))
}
