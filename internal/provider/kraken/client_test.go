package kraken_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"quotesnap/internal/provider"
	"quotesnap/internal/provider/kraken"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGetTicker(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/0/public/Ticker", req.URL.Path)
			require.Equal(t, "BTCUSD", req.URL.Query().Get("pair"))
			return jsonResponse(http.StatusOK, `{"error":[],"result":{"XXBTZUSD":{"a":["50000.1","1","1.000"],"b":["49999.9","1","1.000"],"c":["50000.0","0.1"]}}}`), nil
		}).
		Times(1)

	// Arrange: setup a new client
	client, err := kraken.NewAPIClient(
		kraken.WithHTTPClient(httpClient),
		kraken.WithBaseURL("https://example.test/0/public"),
	)
	require.NoError(t, err)

	// Act
	ticker, err := client.GetTicker(t.Context(), provider.BTC, provider.Fiat)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "xxbtzusd", ticker.Pair)
	require.Equal(t, "50000.1", ticker.Ask.String())
	require.Equal(t, "49999.9", ticker.Bid.String())
}

func TestGetTicker_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response *http.Response
		doErr    error
		kind     error
	}{
		{
			name:  "transport failure",
			doErr: errors.New("i/o timeout"),
			kind:  provider.ErrUnreachable,
		},
		{
			name:     "server error",
			response: jsonResponse(http.StatusServiceUnavailable, ``),
			kind:     provider.ErrUnreachable,
		},
		{
			name:     "not json",
			response: jsonResponse(http.StatusOK, `EService:Unavailable`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "api error",
			response: jsonResponse(http.StatusOK, `{"error":["EQuery:Unknown asset pair"],"result":{}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "missing result",
			response: jsonResponse(http.StatusOK, `{"error":[]}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "result not an object",
			response: jsonResponse(http.StatusOK, `{"result":[1,2]}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "empty result",
			response: jsonResponse(http.StatusOK, `{"error":[],"result":{}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "two pairs",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":["1"],"b":["1"]},"XETHZUSD":{"a":["1"],"b":["1"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "numeric ask",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":[50000.1],"b":["49999.9"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "missing bid",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":["50000.1"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "empty ask",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":[],"b":["49999.9"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "non numeric bid",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":["50000.1"],"b":["abc"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "exponent bid",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":["50000.1"],"b":["1e50000000"]}}}`),
			kind:     provider.ErrBadResponse,
		},
		{
			name:     "negative ask",
			response: jsonResponse(http.StatusOK, `{"result":{"XXBTZUSD":{"a":["-1"],"b":["49999.9"]}}}`),
			kind:     provider.ErrBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(tt.response, tt.doErr).
				Times(1)

			client, err := kraken.NewAPIClient(kraken.WithHTTPClient(httpClient))
			require.NoError(t, err)

			// Act
			_, err = client.GetTicker(t.Context(), provider.ETH, provider.Fiat)

			// Assert
			require.ErrorIs(t, err, tt.kind)
		})
	}
}
