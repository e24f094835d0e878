package wms

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// EnvelopeOperation is the operation name envelopes are logged under.
const EnvelopeOperation = "ongoing_request"

// envelopeTransport hands the raw request and response bodies to an
// EnvelopeLogger before passing them on untouched.
type envelopeTransport struct {
	next   http.RoundTripper
	sink   EnvelopeLogger
	logger *zap.Logger
}

func newEnvelopeTransport(next http.RoundTripper, sink EnvelopeLogger, logger *zap.Logger) http.RoundTripper {
	if sink == nil {
		return next
	}
	return &envelopeTransport{next: next, sink: sink, logger: logger}
}

func (t *envelopeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		t.log(req, body)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.Body == nil {
		return resp, err
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		return nil, readErr
	}
	t.log(req, body)
	return resp, nil
}

func (t *envelopeTransport) log(req *http.Request, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("envelope logger panicked", zap.Any("panic", r))
		}
	}()
	t.sink.LogEnvelope(req.Context(), string(body), EnvelopeOperation)
}
