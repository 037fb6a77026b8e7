package errutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))

	err := goerr.New("boom", goerr.V("user_id", "u1"))
	gt.Value(t, errutil.Handle(context.Background(), err, "failed")).Equal(err)
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("identity directory unreachable"), http.StatusBadGateway)

	gt.Value(t, w.Code).Equal(http.StatusBadGateway)
	gt.String(t, w.Header().Get("Content-Type")).Contains("application/json")

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	gt.Bool(t, body.Success).False()
	gt.String(t, body.Error).Contains("identity directory unreachable")
}
