package firebase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// REST calls against the Identity Toolkit API. The Admin SDK has no
// email/password sign-in, so these mirror what the mobile SDKs do, keyed by
// the project's web API key.

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1/token"
)

var restClient = &http.Client{Timeout: 10 * time.Second}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	LocalID      string `json:"localId"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type restErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuthClient) SignInWithEmailPassword(email, password string) (string, string, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var result signInResponse
	endpoint := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", identityToolkitURL, f.apiKey)
	if err := f.postJSON(endpoint, payload, &result); err != nil {
		return "", "", err
	}

	return result.IDToken, result.RefreshToken, nil
}

func (f *FirebaseAuthClient) RefreshIdToken(refreshToken string) (string, string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s?key=%s", secureTokenURL, f.apiKey)
	resp, err := restClient.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", restError(body, resp.StatusCode)
	}

	var result refreshResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", err
	}

	return result.IDToken, result.RefreshToken, nil
}

// SendPasswordResetEmail asks the provider to email a reset link. Opaque to
// the caller; the provider owns the flow from there.
func (f *FirebaseAuthClient) SendPasswordResetEmail(email string) error {
	payload := map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}

	endpoint := fmt.Sprintf("%s/accounts:sendOobCode?key=%s", identityToolkitURL, f.apiKey)
	return f.postJSON(endpoint, payload, &struct{}{})
}

func (f *FirebaseAuthClient) postJSON(endpoint string, payload interface{}, result interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := restClient.Post(endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return restError(body, resp.StatusCode)
	}

	return json.Unmarshal(body, result)
}

func restError(body []byte, statusCode int) error {
	var restErr restErrorResponse
	if err := json.Unmarshal(body, &restErr); err == nil && restErr.Error.Message != "" {
		return fmt.Errorf("identity toolkit error: %s", restErr.Error.Message)
	}
	return fmt.Errorf("identity toolkit error: status %d", statusCode)
}
