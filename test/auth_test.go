package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/2beens/otpgate/internal/auth"
)

func postJSON(ctx context.Context, t *testing.T, client *http.Client, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		reqJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(reqJson)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s%s", serverEndpoint, path), reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, respBytes
}

func doLogin(ctx context.Context, t *testing.T, client *http.Client, email, password string) string {
	t.Helper()

	resp, respBytes := postJSON(ctx, t, client, "/auth/login", auth.LoginRequest{
		Email:    auth.LenientString(email),
		Password: auth.LenientString(password),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))

	var loginResp auth.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.LoginSessionID)

	return loginResp.LoginSessionID
}

// pendingOTP reads the OTP of a login session straight from redis.
func pendingOTP(ctx context.Context, t *testing.T, rdb *redis.Client, sessionID string) (string, bool) {
	t.Helper()

	otpJson, err := rdb.Get(ctx, auth.OTPsKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", false
	}
	require.NoError(t, err)

	otp, err := strconv.Atoi(otpJson)
	require.NoError(t, err)
	return strconv.Itoa(otp), true
}

func getLoginSession(ctx context.Context, t *testing.T, rdb *redis.Client, sessionID string) auth.LoginSession {
	t.Helper()

	sessionJson, err := rdb.Get(ctx, auth.SessionsKeyPrefix+sessionID).Result()
	require.NoError(t, err)

	var session auth.LoginSession
	require.NoError(t, json.Unmarshal([]byte(sessionJson), &session))
	return session
}
