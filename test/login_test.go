package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/otpgate/internal/auth"
	"github.com/2beens/otpgate/internal/challenge"
)

func (s *IntegrationTestSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(s.T(), err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (s *IntegrationTestSuite) TestLoginStoresSessionAndOTP() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 16)

	before := time.Now()
	sessionID := doLogin(ctx, t, s.newClient(), email, password)

	session := getLoginSession(ctx, t, s.redisClient, sessionID)
	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, email, session.Email)
	assert.Equal(t, password, session.Password)
	assert.False(t, session.CreatedAt.Before(before.Truncate(time.Second)))
	assert.Equal(t, auth.SessionTTL, session.ExpiresAt.Sub(session.CreatedAt))

	otp, found := pendingOTP(ctx, t, s.redisClient, sessionID)
	require.True(t, found)
	assert.Len(t, otp, 6)
}

func (s *IntegrationTestSuite) TestFullFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.newClient()
	email := gofakeit.Email()
	sessionID := doLogin(ctx, t, client, email, gofakeit.Password(true, true, true, false, false, 16))

	otp, found := pendingOTP(ctx, t, s.redisClient, sessionID)
	require.True(t, found)

	// otp sent as a string this time
	resp, respBytes := postJSON(ctx, t, client, "/auth/verify-otp", map[string]string{
		"loginSessionId": sessionID,
		"otp":            otp,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))

	var verifyResp auth.VerifyOTPResponse
	require.NoError(t, json.Unmarshal(respBytes, &verifyResp))
	assert.Equal(t, "OTP verified", verifyResp.Message)
	assert.Equal(t, sessionID, verifyResp.SessionID)

	// pending OTP consumed, session kept
	_, found = pendingOTP(ctx, t, s.redisClient, sessionID)
	assert.False(t, found)
	assert.Equal(t, email, getLoginSession(ctx, t, s.redisClient, sessionID).Email)

	resp, respBytes = postJSON(ctx, t, client, "/auth/token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))

	var tokenResp auth.TokenResponse
	require.NoError(t, json.Unmarshal(respBytes, &tokenResp))
	require.NotEmpty(t, tokenResp.AccessToken)

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/protected", serverEndpoint), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)

	protectedResp, err := client.Do(req)
	require.NoError(t, err)
	defer protectedResp.Body.Close()
	require.Equal(t, http.StatusOK, protectedResp.StatusCode)

	protectedBytes, err := io.ReadAll(protectedResp.Body)
	require.NoError(t, err)

	var granted challenge.ProtectedResponse
	require.NoError(t, json.Unmarshal(protectedBytes, &granted))
	assert.Equal(t, "Access granted", granted.Message)
	assert.Equal(t, challenge.SuccessFlag(email), granted.SuccessFlag)
	require.NotNil(t, granted.User)
	assert.Equal(t, email, granted.User.Email)
	assert.Equal(t, sessionID, granted.User.SessionID)
}

func (s *IntegrationTestSuite) TestVerifyOTPFailures() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.newClient()
	sessionID := doLogin(ctx, t, client, gofakeit.Email(), "pass")
	otp, found := pendingOTP(ctx, t, s.redisClient, sessionID)
	require.True(t, found)

	wrongOTP := "100000"
	if otp == wrongOTP {
		wrongOTP = "100001"
	}

	cases := map[string]struct {
		body          any
		expectedCode  int
		expectedError string
	}{
		"missing otp": {
			body:          map[string]any{"loginSessionId": sessionID},
			expectedCode:  http.StatusBadRequest,
			expectedError: "loginSessionId and otp required",
		},
		"unknown session": {
			body:          map[string]any{"loginSessionId": "unknown", "otp": otp},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid session",
		},
		"wrong otp": {
			body:          map[string]any{"loginSessionId": sessionID, "otp": wrongOTP},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid OTP",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, respBytes := postJSON(ctx, t, client, "/auth/verify-otp", tc.body)
			assert.Equal(t, tc.expectedCode, resp.StatusCode)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.expectedError), string(respBytes))
		})
	}

	// failed attempts do not consume the OTP
	_, found = pendingOTP(ctx, t, s.redisClient, sessionID)
	assert.True(t, found)

	// no session cookie on this client yet
	resp, respBytes := postJSON(ctx, t, client, "/auth/token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No session cookie found"}`, string(respBytes))
}
