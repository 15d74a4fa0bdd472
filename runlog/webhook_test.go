package runlog

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDeliverSignsPayload(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	var gotSig string
	var gotEvent Event
	httpmock.RegisterResponder(http.MethodPost, "https://hooks.example.com/runs",
		func(req *http.Request) (*http.Response, error) {
			gotSig = req.Header.Get("X-ScraperLab-Signature")
			body, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(body, &gotEvent))

			mac := hmac.New(sha256.New, []byte("s3cret"))
			mac.Write(body)
			assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)
			return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
		})

	w := &WebhookRecorder{URL: "https://hooks.example.com/runs", Secret: "s3cret", Client: client}
	err := w.deliver(context.Background(), &Event{
		Type:      "run.failed",
		Timestamp: time.Now().Unix(),
		Data: &Record{
			URL:       "https://claro.com.co/x",
			SiteID:    "claro.com.co",
			Type:      "detail",
			ErrorCode: "NO_PRICE_EXTRACTED",
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, gotSig)
	assert.Equal(t, "run.failed", gotEvent.Type)
	assert.Equal(t, "claro.com.co", gotEvent.Data.SiteID)
}

func TestWebhookDeliverRejectsErrorStatus(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://hooks.example.com/runs",
		httpmock.NewStringResponder(http.StatusBadGateway, "nope"))

	w := &WebhookRecorder{URL: "https://hooks.example.com/runs", Client: client}
	err := w.deliver(context.Background(), &Event{Type: "run.completed", Data: &Record{}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestMultiFansOut(t *testing.T) {
	var calls int
	rec := recorderFunc(func(*Record) { calls++ })
	Multi{rec, rec, SlogRecorder{}}.Record(context.Background(), &Record{Success: true})
	assert.Equal(t, 2, calls)
}

type recorderFunc func(*Record)

func (f recorderFunc) Record(_ context.Context, rec *Record) { f(rec) }
